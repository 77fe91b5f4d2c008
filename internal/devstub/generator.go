package devstub

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Headline templates; %s is replaced by the entity name.
var templates = []string{ //nolint:gochecknoglobals // read-only fixture data
	"%s profit rises 12%% on strong demand",
	"%s shares fall amid broad selloff",
	"%s to announce quarterly results next week",
	"%s stock gains after upgrade by brokerage",
	"%s slips as margins drop for third quarter",
	"%s board meets to review dividend policy",
	"%s hits record high as investors cheer growth",
	"%s faces loss after regulator penalty",
	"%s management comments on outlook",
	"%s surges on buyback news",
	"%s declines on weak guidance",
	"%s trades flat in choppy session",
}

// GenerateHeadlines returns n headlines for entity. The same entity always
// yields the same headlines in the same order.
func GenerateHeadlines(entity string, n int) []string {
	if n <= 0 {
		return nil
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(entity)))
	offset := int(h.Sum32() % uint32(len(templates)))

	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf(templates[(offset+i)%len(templates)], entity))
	}
	return out
}

// Lexicon words that push a headline positive or negative.
var (
	positiveWords = []string{"rise", "rises", "gain", "gains", "record", "cheer", "surge", "surges", "profit", "upgrade"}           //nolint:gochecknoglobals // read-only fixture data
	negativeWords = []string{"fall", "falls", "slip", "slips", "drop", "loss", "selloff", "penalty", "decline", "declines", "weak"} //nolint:gochecknoglobals // read-only fixture data
)

// Label is one entry of an inference response.
type Label struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ClassifyLexicon scores text by counting lexicon hits and returns the three
// FinBERT labels sorted by descending score.
func ClassifyLexicon(text string) []Label {
	var pos, neg int
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	}) {
		for _, p := range positiveWords {
			if w == p {
				pos++
			}
		}
		for _, n := range negativeWords {
			if w == n {
				neg++
			}
		}
	}

	switch {
	case pos > neg:
		return []Label{{"positive", 0.875}, {"neutral", 0.1}, {"negative", 0.025}}
	case neg > pos:
		return []Label{{"negative", 0.91}, {"neutral", 0.06}, {"positive", 0.03}}
	default:
		return []Label{{"neutral", 0.8}, {"positive", 0.1}, {"negative", 0.1}}
	}
}
