package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"naver-map-scraper/models"
)

func TestReviewPath(t *testing.T) {
	at := time.Date(2024, 6, 8, 14, 3, 9, 0, time.UTC)
	assert.Equal(t, filepath.Join("output", "naver_review_2024-06-08_14-03-09.csv"), ReviewPath("output", at, false, FormatCSV))
	assert.Equal(t, filepath.Join("output", "naver_review_2024-06-08_14-03-09_error.csv"), ReviewPath("output", at, true, FormatCSV))
	assert.Equal(t, filepath.Join("output", "naver_review_2024-06-08_14-03-09_error.xlsx"), ReviewPath("output", at, true, FormatXLSX))
}

func TestParseReviewFormat(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", FormatCSV},
		{"csv", FormatCSV},
		{" XLSX ", FormatXLSX},
	}
	for _, tt := range tests {
		got, err := ParseReviewFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseReviewFormat("xls")
	assert.Error(t, err)
}

func TestNewReviewRowWriterPicksFormat(t *testing.T) {
	dir := t.TempDir()

	w, err := NewReviewRowWriter(filepath.Join(dir, "a.xlsx"))
	require.NoError(t, err)
	assert.IsType(t, &XLSXWriter{}, w)
	require.NoError(t, w.Close())

	w, err = NewReviewRowWriter(filepath.Join(dir, "b.csv"))
	require.NoError(t, err)
	assert.IsType(t, &CSVWriter{}, w)
	require.NoError(t, w.Close())
}

func TestXLSXWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "reviews.xlsx")
	w, err := NewXLSXWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.WriteRows([]models.ReviewRow{
		{Nickname: "맛집탐방러", Content: "커피가 맛있어요", Date: "10.12.토", Revisit: "2번째 방문"},
	}))
	require.NoError(t, w.WriteRows([]models.ReviewRow{{Nickname: "익명", Content: "분위기 최고"}}))
	require.NoError(t, w.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"reviews"}, f.GetSheetList())
	rows, err := f.GetRows("reviews")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"nickname", "content", "date", "revisit"},
		{"맛집탐방러", "커피가 맛있어요", "10.12.토", "2번째 방문"},
		{"익명", "분위기 최고"},
	}, rows)
}
