// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"time"
)

// TimestampLayout renders ScoredRow timestamps as YYYY-MM-DD HH:MM:SS.
const TimestampLayout = "2006-01-02 15:04:05"

// Columns is the header of the output table, in order.
var Columns = []string{"Stock", "Headline", "Sentiment", "Score", "Confidence", "Timestamp"} //nolint:gochecknoglobals // fixed table schema

// Entity is the display name of a company or index tracked for sentiment.
type Entity string

func (e Entity) String() string { return string(e) }

// EntitiesFromStrings converts configured names to entities, keeping order.
func EntitiesFromStrings(names []string) []Entity {
	out := make([]Entity, len(names))
	for i, n := range names {
		out[i] = Entity(n)
	}
	return out
}

// ScoredRow is one classified headline. It is built once and never mutated.
type ScoredRow struct {
	Entity     Entity
	Headline   string
	Sentiment  string  // upper-cased classifier label, e.g. "POSITIVE"
	Score      int     // -1, 0 or 1
	Confidence float64 // classifier probability rounded to 3 decimals
	Timestamp  string  // local time in TimestampLayout
}

// NewScoredRow stamps a row with at formatted in TimestampLayout.
func NewScoredRow(entity Entity, headline, sentiment string, score int, confidence float64, at time.Time) ScoredRow {
	return ScoredRow{
		Entity:     entity,
		Headline:   headline,
		Sentiment:  sentiment,
		Score:      score,
		Confidence: confidence,
		Timestamp:  at.Format(TimestampLayout),
	}
}

// Record renders the row as table cells matching Columns.
func (r ScoredRow) Record() []string {
	return []string{
		string(r.Entity),
		r.Headline,
		r.Sentiment,
		strconv.Itoa(r.Score),
		strconv.FormatFloat(r.Confidence, 'f', -1, 64),
		r.Timestamp,
	}
}
