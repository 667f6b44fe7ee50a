package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Review export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const reviewTimestampLayout = "2006-01-02_15-04-05"

// ParseReviewFormat normalises a format name. An empty name selects CSV.
func ParseReviewFormat(name string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(name)); f {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("storage: unsupported review format %q (want csv or xlsx)", name)
	}
}

// ReviewPath returns the review export path under dir for a run started at
// t. Failed runs get an "_error" suffix.
func ReviewPath(dir string, t time.Time, failed bool, format string) string {
	name := "naver_review_" + t.Format(reviewTimestampLayout)
	if failed {
		name += "_error"
	}
	return filepath.Join(dir, name+"."+format)
}

// NewReviewRowWriter opens a writer for path. A ".xlsx" extension selects
// the workbook writer, anything else CSV.
func NewReviewRowWriter(path string) (ReviewRowWriter, error) {
	if strings.EqualFold(filepath.Ext(path), "."+FormatXLSX) {
		return NewXLSXWriter(path)
	}
	return NewCSVWriter(path)
}
