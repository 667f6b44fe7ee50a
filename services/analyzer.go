package services

import (
	"fmt"
	"strings"

	ko "github.com/ikawaha/kagome-dict-ko"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Tag is a part-of-speech label. The names follow the Sejong tag set used by
// mecab-ko-dic.
type Tag string

const (
	TagCommonNoun Tag = "NNG"
	TagProperNoun Tag = "NNP"
	TagPronoun    Tag = "NP"
	TagAdverb     Tag = "MAG"
	TagVerb       Tag = "VV"
	TagAdjective  Tag = "VA"
	TagCopula     Tag = "VCP"
	TagForeign    Tag = "SL"
	TagNumber     Tag = "SN"
)

// IsNoun reports whether the tag is a common or proper noun.
func (t Tag) IsNoun() bool {
	return t == TagCommonNoun || t == TagProperNoun
}

// Token is one morpheme produced by an Analyzer.
type Token struct {
	Form string
	Tag  Tag
}

// Analyzer splits text into tagged morphemes.
type Analyzer interface {
	Tokenize(text string) []Token
}

// NewAnalyzer returns the analyzer configured for a content language.
func NewAnalyzer(language string) (Analyzer, error) {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "", "ko", "korean":
		return NewKoreanAnalyzer()
	case "whitespace":
		return WhitespaceAnalyzer{}, nil
	default:
		return nil, fmt.Errorf("analyzer: unsupported language %q", language)
	}
}

// WhitespaceAnalyzer tags every whitespace separated word as a common noun.
type WhitespaceAnalyzer struct{}

func (WhitespaceAnalyzer) Tokenize(text string) []Token {
	fields := strings.Fields(text)
	tokens := make([]Token, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, Token{Form: f, Tag: TagCommonNoun})
	}
	return tokens
}

// KoreanAnalyzer is a morphological analyzer backed by kagome and the
// embedded mecab-ko-dic dictionary. The dictionary is loaded once per
// process and shared by every analyzer; Tokenize is safe for concurrent use.
type KoreanAnalyzer struct {
	tokenizer *tokenizer.Tokenizer
}

// NewKoreanAnalyzer creates a Korean analyzer. The first call loads the
// dictionary, which takes a moment.
func NewKoreanAnalyzer() (*KoreanAnalyzer, error) {
	t, err := tokenizer.New(ko.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("analyzer: korean tokenizer: %w", err)
	}
	return &KoreanAnalyzer{tokenizer: t}, nil
}

// Tokenize analyses each space separated word (eojeol) on its own, the way
// review text is written.
func (a *KoreanAnalyzer) Tokenize(text string) []Token {
	var tokens []Token
	for _, word := range strings.Fields(text) {
		for _, tok := range a.tokenizer.Tokenize(word) {
			tokens = append(tokens, morphemes(tok)...)
		}
	}
	return tokens
}

// morphemes converts one dictionary token. Inflected and pre-analysed
// entries fuse several morphemes into one surface (e.g. 분위긴 is
// 분위기/NNG + ㄴ/JX); their expression field lists the parts as
// form/tag/* joined by "+". Compound nouns keep their surface.
func morphemes(tok tokenizer.Token) []Token {
	pos := tok.POS()
	if len(pos) == 0 || pos[0] == "" {
		return nil
	}
	tag := pos[0]
	if !strings.Contains(tag, "+") {
		return []Token{{Form: tok.Surface, Tag: Tag(tag)}}
	}

	if typ, _ := tok.FeatureAt(ko.Type); typ == "Inflect" || typ == "Preanalysis" {
		if expr, ok := tok.FeatureAt(ko.Expression); ok && expr != "*" {
			var parts []Token
			for _, part := range strings.Split(expr, "+") {
				fields := strings.Split(part, "/")
				if len(fields) < 2 || fields[0] == "" {
					continue
				}
				parts = append(parts, Token{Form: fields[0], Tag: Tag(fields[1])})
			}
			if len(parts) > 0 {
				return parts
			}
		}
	}
	return []Token{{Form: tok.Surface, Tag: Tag(strings.SplitN(tag, "+", 2)[0])}}
}
