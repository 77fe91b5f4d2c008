package feed_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/newspulse/internal/adapters/feed"
	. "github.com/smartystreets/goconvey/convey"
)

func rss(titles ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>search</title>`)
	for _, t := range titles {
		fmt.Fprintf(&b, "<item><title>%s</title><link>https://example.com/a</link></item>", t)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func TestClient_SearchURL(t *testing.T) {
	Convey("Given a client with default query shaping", t, func() {
		c := feed.NewClient(feed.WithBaseURL("https://news.example.com/"))

		Convey("Then the entity and suffix are query-escaped with locale parameters", func() {
			So(c.SearchURL("Reliance Industries"), ShouldEqual,
				"https://news.example.com/rss/search?q=Reliance+Industries+stock+market&hl=en-IN&gl=IN&ceid=IN:en")
			So(c.SearchURL("M&M"), ShouldStartWith, "https://news.example.com/rss/search?q=M%26M+stock+market&")
		})

		Convey("When the suffix is empty", func() {
			c := feed.NewClient(feed.WithBaseURL("http://x"), feed.WithQuerySuffix(""), feed.WithLocale("en-US", "US", "US:en"))

			Convey("Then only the entity is searched", func() {
				So(c.SearchURL("TCS"), ShouldEqual, "http://x/rss/search?q=TCS&hl=en-US&gl=US&ceid=US:en")
			})
		})
	})
}

func TestClient_Fetch(t *testing.T) {
	Convey("Given a feed server", t, func() {
		ctx := context.Background()
		var gotUA, gotQuery, gotPath string

		titles := []string{"h1", "h2", "h3", "h4", "h5", "h6", "h7", "h8", "h9", "h10"}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			gotQuery = r.URL.Query().Get("q")
			gotPath = r.URL.Path
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = w.Write([]byte(rss(titles...)))
		}))
		defer srv.Close()

		client := feed.NewClient(feed.WithBaseURL(srv.URL))

		Convey("When fetching headlines", func() {
			headlines, err := client.Fetch(ctx, "Nifty 50")

			Convey("Then at most eight titles are returned in feed order", func() {
				So(err, ShouldBeNil)
				So(headlines, ShouldResemble, titles[:8])
			})

			Convey("And the request carries the browser user agent and query", func() {
				So(gotUA, ShouldEqual, "Mozilla/5.0")
				So(gotQuery, ShouldEqual, "Nifty 50 stock market")
				So(gotPath, ShouldEqual, "/rss/search")
			})
		})

		Convey("When the cap is lowered", func() {
			headlines := feed.NewClient(feed.WithBaseURL(srv.URL), feed.WithMaxHeadlines(3)).Headlines(ctx, "TCS")

			Convey("Then only the first three are kept", func() {
				So(headlines, ShouldResemble, []string{"h1", "h2", "h3"})
			})
		})
	})

	Convey("Given a feed with fewer items than the cap", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(rss("TCS profit rises 10%", "TCS stock falls amid selloff")))
		}))
		defer srv.Close()

		headlines := feed.NewClient(feed.WithBaseURL(srv.URL)).Headlines(context.Background(), "TCS")

		So(headlines, ShouldResemble, []string{"TCS profit rises 10%", "TCS stock falls amid selloff"})
	})
}

func TestClient_Failures(t *testing.T) {
	Convey("Given failing upstreams", t, func() {
		ctx := context.Background()

		Convey("When the server answers 503", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "blocked", http.StatusServiceUnavailable)
			}))
			defer srv.Close()
			client := feed.NewClient(feed.WithBaseURL(srv.URL))

			_, err := client.Fetch(ctx, "TCS")
			headlines := client.Headlines(ctx, "TCS")

			Convey("Then Fetch reports a status error and Headlines is empty", func() {
				So(errors.Is(err, feed.ErrStatus), ShouldBeTrue)
				So(headlines, ShouldNotBeNil)
				So(headlines, ShouldBeEmpty)
			})
		})

		Convey("When the body is not a feed", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html><body>captcha</body></html>"))
			}))
			defer srv.Close()

			_, err := feed.NewClient(feed.WithBaseURL(srv.URL)).Fetch(ctx, "TCS")

			Convey("Then a parse error is returned", func() {
				So(errors.Is(err, feed.ErrParse), ShouldBeTrue)
			})
		})

		Convey("When the server is slower than the timeout", func() {
			release := make(chan struct{})
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-release:
				case <-r.Context().Done():
				}
			}))
			defer srv.Close()
			defer close(release)

			client := feed.NewClient(feed.WithBaseURL(srv.URL), feed.WithTimeout(50*time.Millisecond))
			_, err := client.Fetch(ctx, "Nifty 50")
			headlines := client.Headlines(ctx, "Nifty 50")

			Convey("Then the deadline error collapses to no headlines", func() {
				So(errors.Is(err, feed.ErrRequest), ShouldBeTrue)
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
				So(headlines, ShouldBeEmpty)
			})
		})

		Convey("When nothing listens at the address", func() {
			srv := httptest.NewServer(http.NotFoundHandler())
			addr := srv.URL
			srv.Close()

			headlines := feed.NewClient(feed.WithBaseURL(addr)).Headlines(ctx, "TCS")

			Convey("Then no headlines are returned", func() {
				So(headlines, ShouldBeEmpty)
			})
		})
	})
}
