package services

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"naver-map-scraper/models"
)

// DefaultStopwords lists function words and fillers that are never reported
// as keywords.
func DefaultStopwords() []string {
	return []string{
		"수", "것", "등", "좀", "정도", "때",
		"이", "가", "의", "을", "를", "은", "는", "에", "와", "과", "도", "로",
	}
}

// KeywordConfig configures a KeywordRanker. A nil Analyzer selects the
// Korean analyzer; a nil Stopwords selects DefaultStopwords.
type KeywordConfig struct {
	Analyzer  Analyzer
	Stopwords []string
}

// KeywordRanker ranks nouns in free text by frequency.
// It holds no mutable state and may be reused across calls.
type KeywordRanker struct {
	analyzer  Analyzer
	stopwords map[string]struct{}
}

// NewKeywordRanker builds a ranker from cfg.
func NewKeywordRanker(cfg KeywordConfig) *KeywordRanker {
	analyzer := cfg.Analyzer
	if analyzer == nil {
		if ka, err := NewKoreanAnalyzer(); err == nil {
			analyzer = ka
		} else {
			analyzer = WhitespaceAnalyzer{}
		}
	}
	words := cfg.Stopwords
	if words == nil {
		words = DefaultStopwords()
	}
	stop := make(map[string]struct{}, len(words))
	for _, w := range words {
		stop[strings.TrimSpace(w)] = struct{}{}
	}
	return &KeywordRanker{analyzer: analyzer, stopwords: stop}
}

// IsStopword reports whether term is excluded from rankings.
func (r *KeywordRanker) IsStopword(term string) bool {
	_, ok := r.stopwords[term]
	return ok
}

// Rank returns the topN most frequent nouns across texts, count descending,
// ties in order of first occurrence. topN <= 0 returns every term.
func (r *KeywordRanker) Rank(texts []string, topN int) []models.Keyword {
	counts := make(map[string]int)
	var order []string

	for _, text := range texts {
		for _, tok := range r.analyzer.Tokenize(text) {
			if !tok.Tag.IsNoun() || utf8.RuneCountInString(tok.Form) <= 1 || r.IsStopword(tok.Form) {
				continue
			}
			if counts[tok.Form] == 0 {
				order = append(order, tok.Form)
			}
			counts[tok.Form]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if topN > 0 && len(order) > topN {
		order = order[:topN]
	}

	ranked := make([]models.Keyword, 0, len(order))
	for _, term := range order {
		ranked = append(ranked, models.Keyword{Term: term, Count: counts[term]})
	}
	return ranked
}

// LoadStopwords reads a YAML stopword file. Both a bare list and a document
// with a top-level "stopwords" list are accepted.
func LoadStopwords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stopwords: read %q: %w", path, err)
	}

	var list []string
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var doc struct {
		Stopwords []string `yaml:"stopwords"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("stopwords: parse %q: %w", path, err)
	}
	return doc.Stopwords, nil
}
