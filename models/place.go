package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Place is one extracted entity from the map search results.
// It is not modified after it has been added to a result set.
type Place struct {
	Name      string            `json:"-"`
	ID        string            `json:"id,omitempty"`
	BasicInfo map[string]string `json:"basic_info"`
	Reviews   []string          `json:"reviews"`
	Keywords  []Keyword         `json:"keywords"`
}

// NewPlace returns a Place with empty, non-nil collections so that it
// serialises as {} / [] rather than null.
func NewPlace(name string) *Place {
	return &Place{
		Name:      name,
		BasicInfo: make(map[string]string),
		Reviews:   []string{},
		Keywords:  []Keyword{},
	}
}

// ReviewRow is one row of the visitor review list.
// Every field is empty when the corresponding element is absent.
type ReviewRow struct {
	Nickname string
	Content  string
	Date     string
	Revisit  string
}

// Keyword is a ranked term and its frequency in the review corpus it was
// computed from.
type Keyword struct {
	Term  string
	Count int
}

// MarshalJSON encodes a keyword as a [term, count] pair. The term is written
// without HTML escaping; an outer encoder that escapes still does so.
func (k Keyword) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]any{k.Term, k.Count}); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes a [term, count] pair.
func (k *Keyword) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("keyword: expected [term, count], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &k.Term); err != nil {
		return fmt.Errorf("keyword: term: %w", err)
	}
	if err := json.Unmarshal(pair[1], &k.Count); err != nil {
		return fmt.Errorf("keyword: count: %w", err)
	}
	return nil
}

// Summary holds the cross-place keyword ranking.
type Summary struct {
	TotalPlaces  int
	TotalReviews int
	Keywords     []Keyword
}
