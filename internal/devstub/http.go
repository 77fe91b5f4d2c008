// Package devstub imitates the feed search and inference upstreams so the
// pipeline can run end to end without network access.
package devstub

import (
	"encoding/json"
	"encoding/xml"
	"net/http"
	"strings"
	"time"
)

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Link  string    `xml:"link"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// Server serves the stub endpoints.
type Server struct {
	cfg Config
	now func() time.Time
}

// NewServer creates a stub server from cfg.
func NewServer(cfg Config) *Server {
	return &Server{cfg: cfg, now: time.Now}
}

// Handler returns the routes:
//
//	GET  /rss/search?q=...    RSS 2.0 search results
//	POST /models/{model...}   text-classification inference
//	GET  /healthz
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rss/search", s.delayed(s.search))
	mux.HandleFunc("POST /models/", s.delayed(s.infer))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (s *Server) delayed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Latency > 0 {
			select {
			case <-time.After(s.cfg.Latency):
			case <-r.Context().Done():
				return
			}
		}
		h(w, r)
	}
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	for _, e := range s.cfg.FailEntities {
		if e != "" && strings.HasPrefix(q, e) {
			http.Error(w, "blocked", http.StatusServiceUnavailable)
			return
		}
	}

	entity := strings.TrimSpace(strings.TrimSuffix(q, "stock market"))
	doc := rssDoc{Version: "2.0", Channel: rssChannel{Title: q + " - News", Link: "http://devstub/"}}
	pub := s.now().UTC().Format(time.RFC1123Z)
	for _, h := range GenerateHeadlines(entity, s.cfg.Headlines) {
		doc.Channel.Items = append(doc.Channel.Items, rssItem{Title: h, Link: "http://devstub/article", PubDate: pub})
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(doc)
}

func (s *Server) infer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Inputs string `json:"inputs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json: " + err.Error()})
		return
	}
	if s.cfg.BrokenModelOn != "" && strings.Contains(req.Inputs, s.cfg.BrokenModelOn) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "model crashed"})
		return
	}
	writeJSON(w, http.StatusOK, [][]Label{ClassifyLexicon(req.Inputs)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
