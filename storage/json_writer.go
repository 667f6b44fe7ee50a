package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"naver-map-scraper/services"
)

// JSONWriter writes a crawl result set as one JSON document keyed by place
// name. HTML characters are not escaped so Korean text and symbols stay
// readable.
type JSONWriter struct {
	path string
}

// ResultsPath returns the default JSON path for a keyword under dir.
func ResultsPath(dir, keyword string) string {
	return filepath.Join(dir, fmt.Sprintf("naver_map_%s_results.json", fileSafe(keyword)))
}

// NewJSONWriter returns a writer for path. Nothing is created until Write.
func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

func (w *JSONWriter) Path() string { return w.path }

// Write (re)creates the file and encodes results into it with two-space
// indentation. Intermediate directories are created automatically.
func (w *JSONWriter) Write(results *services.ResultSet) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("json: create output dir: %w", err)
	}

	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("json: create file %q: %w", w.path, err)
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		_ = f.Close()
		return fmt.Errorf("json: encode results: %w", err)
	}
	return f.Close()
}

func (w *JSONWriter) Close() error { return nil }

// fileSafe replaces path separators and whitespace in s so it can be used
// inside a file name.
func fileSafe(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "results"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r), r == '/', r == '\\', r == ':':
			return '_'
		default:
			return r
		}
	}, s)
}

var _ ResultWriter = (*JSONWriter)(nil)
