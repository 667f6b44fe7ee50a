package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"naver-map-scraper/models"
	"naver-map-scraper/utils"
)

// ResultSet holds extracted places keyed by display name in insertion order.
// Each name is written once: the first successful extraction wins.
type ResultSet struct {
	order  []string
	places map[string]*models.Place
}

// NewResultSet creates an empty ResultSet.
func NewResultSet() *ResultSet {
	return &ResultSet{places: make(map[string]*models.Place)}
}

// Add inserts p and reports whether it was kept. A place whose name is
// already present is skipped, not merged.
func (rs *ResultSet) Add(p *models.Place) bool {
	if p == nil || p.Name == "" {
		return false
	}
	if _, exists := rs.places[p.Name]; exists {
		return false
	}
	rs.places[p.Name] = p
	rs.order = append(rs.order, p.Name)
	return true
}

// Has reports whether a place with this name has been recorded.
func (rs *ResultSet) Has(name string) bool {
	_, ok := rs.places[name]
	return ok
}

// Get returns the place recorded under name.
func (rs *ResultSet) Get(name string) (*models.Place, bool) {
	p, ok := rs.places[name]
	return p, ok
}

func (rs *ResultSet) Len() int { return len(rs.order) }

// Places returns the places in insertion order.
func (rs *ResultSet) Places() []*models.Place {
	out := make([]*models.Place, 0, len(rs.order))
	for _, name := range rs.order {
		out = append(out, rs.places[name])
	}
	return out
}

// AllReviews returns the union of every place's reviews in insertion order.
func (rs *ResultSet) AllReviews() []string {
	var all []string
	for _, name := range rs.order {
		all = append(all, rs.places[name].Reviews...)
	}
	return all
}

// MarshalJSON encodes the set as an object keyed by place name, keeping
// insertion order.
func (rs *ResultSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range rs.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(name)
		if err != nil {
			return nil, err
		}
		val, err := marshalNoEscape(rs.places[name])
		if err != nil {
			return nil, fmt.Errorf("place %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// SummaryService computes and prints the cross-place keyword ranking.
type SummaryService struct {
	ranker *KeywordRanker
	logger *utils.Logger
}

func NewSummaryService(ranker *KeywordRanker, logger *utils.Logger) *SummaryService {
	return &SummaryService{ranker: ranker, logger: logger.With("summary")}
}

// Generate ranks the topN keywords over the union of all reviews in rs.
func (s *SummaryService) Generate(rs *ResultSet, topN int) *models.Summary {
	reviews := rs.AllReviews()
	summary := &models.Summary{
		TotalPlaces:  rs.Len(),
		TotalReviews: len(reviews),
		Keywords:     []models.Keyword{},
	}
	if len(reviews) == 0 {
		s.logger.Warn("No reviews collected, keyword summary is empty")
		return summary
	}
	summary.Keywords = s.ranker.Rank(reviews, topN)
	s.logger.Debug("Ranked %d keywords over %d reviews from %d places",
		len(summary.Keywords), len(reviews), rs.Len())
	return summary
}

// Print renders the summary as a table.
func (s *SummaryService) Print(w io.Writer, title string, summary *models.Summary) {
	fmt.Fprintf(w, "\n%s (places: %d, reviews: %d)\n", title, summary.TotalPlaces, summary.TotalReviews)
	PrintKeywords(w, summary.Keywords)
}

// PrintKeywords renders a ranked keyword list as a table.
func PrintKeywords(w io.Writer, keywords []models.Keyword) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Keyword", "Count"})
	for i, k := range keywords {
		t.AppendRow(table.Row{i + 1, k.Term, fmt.Sprintf("%d회", k.Count)})
	}
	if len(keywords) == 0 {
		t.AppendRow(table.Row{"-", "no keywords", "-"})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
