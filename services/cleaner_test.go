package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"naver-map-scraper/models"
)

func TestReviewSetFilters(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"", false},
		{"   ", false},
		{"짧은리뷰", false},
		{"다섯글자요", false},
		{"여섯글자에요", true},
		{"  분위기가 정말 좋아요  ", true},
	}

	for _, tt := range tests {
		s := NewReviewSet(5, 100)
		assert.Equal(t, tt.want, s.Add(tt.raw), "Add(%q)", tt.raw)
	}
}

func TestReviewSetDeduplicatesTrimmed(t *testing.T) {
	s := NewReviewSet(5, 100)
	assert.True(t, s.Add("커피가 정말 맛있어요"))
	assert.False(t, s.Add("  커피가 정말 맛있어요\n"))
	assert.Equal(t, []string{"커피가 정말 맛있어요"}, s.Items())
}

func TestReviewSetCapacityKeepsFirst(t *testing.T) {
	s := NewReviewSet(5, 100)
	for i := 0; i < 150; i++ {
		s.Add(fmt.Sprintf("리뷰 번호 %03d 입니다", i))
	}

	items := s.Items()
	assert.Len(t, items, 100)
	assert.True(t, s.Full())
	assert.Equal(t, "리뷰 번호 000 입니다", items[0])
	assert.Equal(t, "리뷰 번호 099 입니다", items[99])
}

func TestDistinctContents(t *testing.T) {
	rows := []models.ReviewRow{
		{Nickname: "a", Content: "맛있어요"},
		{Nickname: "b", Content: ""},
		{Nickname: "c", Content: "맛있어요"},
		{Nickname: "d", Content: "분위기 최고"},
	}
	assert.Equal(t, []string{"맛있어요", "분위기 최고"}, DistinctContents(rows))
}

func TestNormaliseText(t *testing.T) {
	assert.Equal(t, "영업시간 매일 10:00", NormaliseText("  영업시간\n  매일\t10:00 "))
}
