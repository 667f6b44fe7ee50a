package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"naver-map-scraper/models"
)

// ReviewSet collects distinct review texts in the order they were first seen.
// Texts are trimmed; empty texts, texts of minLength runes or fewer, exact
// duplicates and anything beyond capacity are rejected.
type ReviewSet struct {
	minLength int
	capacity  int
	items     []string
	seen      map[string]struct{}
}

// NewReviewSet creates an empty ReviewSet.
func NewReviewSet(minLength, capacity int) *ReviewSet {
	return &ReviewSet{
		minLength: minLength,
		capacity:  capacity,
		seen:      make(map[string]struct{}),
	}
}

// Add inserts raw and reports whether it was kept.
func (s *ReviewSet) Add(raw string) bool {
	text := strings.TrimSpace(raw)
	if text == "" || utf8.RuneCountInString(text) <= s.minLength {
		return false
	}
	if s.Full() {
		return false
	}
	if _, dup := s.seen[text]; dup {
		return false
	}
	s.seen[text] = struct{}{}
	s.items = append(s.items, text)
	return true
}

// Full reports whether the capacity has been reached.
func (s *ReviewSet) Full() bool {
	return s.capacity > 0 && len(s.items) >= s.capacity
}

func (s *ReviewSet) Len() int { return len(s.items) }

// Items returns a copy of the collected texts.
func (s *ReviewSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// DistinctContents returns the non-empty review contents of rows without
// exact duplicates, in row order.
func DistinctContents(rows []models.ReviewRow) []string {
	set := NewReviewSet(0, 0)
	for _, r := range rows {
		set.Add(r.Content)
	}
	return set.Items()
}

// NormaliseText strips leading/trailing whitespace and collapses internal whitespace.
func NormaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
