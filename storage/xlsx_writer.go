package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"

	"naver-map-scraper/models"
)

const reviewSheet = "reviews"

// XLSXWriter writes review rows to a single-sheet workbook. Rows are kept in
// the workbook in memory and saved to disk on Close.
// It is safe for concurrent use.
type XLSXWriter struct {
	mu   sync.Mutex
	path string
	file *excelize.File
	next int
}

// NewXLSXWriter prepares a workbook for path with a "reviews" sheet and the
// header row. Intermediate directories are created automatically.
func NewXLSXWriter(path string) (*XLSXWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("xlsx: create output dir: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), reviewSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx: name sheet: %w", err)
	}

	w := &XLSXWriter{path: path, file: f, next: 1}
	if err := w.appendRow([]string{"nickname", "content", "date", "revisit"}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx: write header: %w", err)
	}
	return w, nil
}

// WriteRows appends rows to the sheet.
func (x *XLSXWriter) WriteRows(rows []models.ReviewRow) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, r := range rows {
		if err := x.appendRow([]string{r.Nickname, r.Content, r.Date, r.Revisit}); err != nil {
			return fmt.Errorf("xlsx: write row: %w", err)
		}
	}
	return nil
}

// Close saves the workbook to its path.
func (x *XLSXWriter) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	saveErr := x.file.SaveAs(x.path)
	closeErr := x.file.Close()
	if saveErr != nil {
		return fmt.Errorf("xlsx: save %q: %w", x.path, saveErr)
	}
	return closeErr
}

func (x *XLSXWriter) appendRow(values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, x.next)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := x.file.SetSheetRow(reviewSheet, cell, &row); err != nil {
		return err
	}
	x.next++
	return nil
}

var _ ReviewRowWriter = (*XLSXWriter)(nil)
