package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nouns(tokens []Token) []string {
	var out []string
	for _, t := range tokens {
		if t.Tag.IsNoun() {
			out = append(out, t.Form)
		}
	}
	return out
}

func koreanAnalyzer(t *testing.T) *KoreanAnalyzer {
	t.Helper()
	a, err := NewKoreanAnalyzer()
	require.NoError(t, err)
	return a
}

func TestKoreanAnalyzerNouns(t *testing.T) {
	a := koreanAnalyzer(t)

	tests := []struct {
		text string
		want []string
	}{
		{"맛있어요 분위기 좋아요", []string{"분위기"}},
		{"분위기 최고", []string{"분위기", "최고"}},
		{"커피가 맛있고 직원이 친절해요", []string{"커피", "직원", "친절"}},
		{"여기 맛집이에요!", []string{"맛집"}},
		{"디저트도 맛있었어요", []string{"디저트"}},
		{"고양이가 귀여워요", []string{"고양이"}},
		{"떡볶이 맛집", []string{"떡볶이", "맛집"}},
		{"가격이 비싸요", []string{"가격"}},
		{"맛이 좋아요", []string{"맛"}},
		{"먹고 왔어요", nil},
		{"맛있게 먹었어요", nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, nouns(a.Tokenize(tt.text)), "Tokenize(%q)", tt.text)
	}
}

func TestKoreanAnalyzerSplitsFusedForms(t *testing.T) {
	a := koreanAnalyzer(t)

	// 분위긴 is a single dictionary entry for 분위기 + the topic particle.
	assert.Equal(t, []string{"분위기"}, nouns(a.Tokenize("분위긴 좋았어요")))

	tokens := a.Tokenize("먹었어요")
	require.NotEmpty(t, tokens)
	assert.Equal(t, Token{Form: "먹", Tag: TagVerb}, tokens[0])
}

func TestKoreanAnalyzerNonHangul(t *testing.T) {
	a := koreanAnalyzer(t)
	tokens := a.Tokenize("wifi 2층 10")

	assert.Equal(t, []string{"층"}, nouns(tokens))
	tags := map[Tag]bool{}
	for _, tok := range tokens {
		tags[tok.Tag] = true
	}
	assert.True(t, tags[TagForeign])
	assert.True(t, tags[TagNumber])
}

func TestKoreanAnalyzerBlank(t *testing.T) {
	a := koreanAnalyzer(t)
	assert.Empty(t, a.Tokenize(""))
	assert.Empty(t, a.Tokenize(" \n\t "))
}

func TestNewAnalyzer(t *testing.T) {
	a, err := NewAnalyzer("ko")
	require.NoError(t, err)
	assert.IsType(t, &KoreanAnalyzer{}, a)

	a, err = NewAnalyzer("whitespace")
	require.NoError(t, err)
	assert.IsType(t, WhitespaceAnalyzer{}, a)

	_, err = NewAnalyzer("xx")
	assert.Error(t, err)
}
