package storage

import (
	"naver-map-scraper/models"
	"naver-map-scraper/services"
)

// ResultWriter is the interface any backend persisting a crawl result set
// must satisfy.
type ResultWriter interface {
	Write(results *services.ResultSet) error
	Close() error
}

// ReviewRowWriter is the interface for persisting review rows of the
// single-place flow.
type ReviewRowWriter interface {
	WriteRows(rows []models.ReviewRow) error
	Close() error
}
