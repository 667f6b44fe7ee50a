package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"naver-map-scraper/models"
	"naver-map-scraper/services"
	"naver-map-scraper/utils"
)

const reviewBatchSize = 50

// PostgresStore persists extracted places and their reviews to PostgreSQL.
// Places are keyed by display name and the first stored version wins.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, waits for it to answer
// using retry, runs schema migrations, and returns a ready-to-use store.
func NewPostgresStore(ctx context.Context, dsn string, retry *utils.RetryConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres ping", func(ctx context.Context) error {
		return db.PingContext(ctx)
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS places (
			id          SERIAL PRIMARY KEY,
			name        TEXT        UNIQUE NOT NULL,
			place_id    TEXT        NOT NULL DEFAULT '',
			basic_info  JSONB       NOT NULL DEFAULT '{}'::jsonb,
			keywords    JSONB       NOT NULL DEFAULT '[]'::jsonb,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS place_reviews (
			id          SERIAL PRIMARY KEY,
			place_name  TEXT    NOT NULL REFERENCES places(name) ON DELETE CASCADE,
			position    INTEGER NOT NULL,
			content     TEXT    NOT NULL,
			UNIQUE (place_name, position)
		);

		CREATE INDEX IF NOT EXISTS idx_places_place_id        ON places(place_id);
		CREATE INDEX IF NOT EXISTS idx_place_reviews_place    ON place_reviews(place_name);
	`)
	return err
}

// Write stores every place of results that is not stored yet, together with
// its reviews, in one transaction. Places already present are left as they
// are.
func (ps *PostgresStore) Write(results *services.ResultSet) error {
	if results == nil || results.Len() == 0 {
		return nil
	}

	ctx := context.Background()
	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range results.Places() {
		inserted, err := insertPlace(ctx, tx, p)
		if err != nil {
			return err
		}
		if !inserted {
			continue
		}
		for i := 0; i < len(p.Reviews); i += reviewBatchSize {
			end := i + reviewBatchSize
			if end > len(p.Reviews) {
				end = len(p.Reviews)
			}
			query, args := reviewBatch(p.Name, p.Reviews[i:end], i)
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("postgres: insert reviews for %q: %w", p.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func insertPlace(ctx context.Context, tx *sql.Tx, p *models.Place) (bool, error) {
	info, err := json.Marshal(p.BasicInfo)
	if err != nil {
		return false, fmt.Errorf("postgres: encode basic info for %q: %w", p.Name, err)
	}
	keywords, err := json.Marshal(p.Keywords)
	if err != nil {
		return false, fmt.Errorf("postgres: encode keywords for %q: %w", p.Name, err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO places (name, place_id, basic_info, keywords)
		VALUES ($1, $2, $3::jsonb, $4::jsonb)
		ON CONFLICT (name) DO NOTHING
	`, p.Name, p.ID, string(info), string(keywords))
	if err != nil {
		return false, fmt.Errorf("postgres: insert place %q: %w", p.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("postgres: insert place %q: %w", p.Name, err)
	}
	return n > 0, nil
}

// reviewBatch builds a multi-row insert for reviews, numbering positions
// from offset.
func reviewBatch(name string, reviews []string, offset int) (string, []interface{}) {
	valueStrings := make([]string, 0, len(reviews))
	valueArgs := make([]interface{}, 0, len(reviews)*3)

	for idx, r := range reviews {
		base := idx * 3
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d)", base+1, base+2, base+3))
		valueArgs = append(valueArgs, name, offset+idx, r)
	}

	query := fmt.Sprintf(`
		INSERT INTO place_reviews (place_name, position, content)
		VALUES %s
		ON CONFLICT (place_name, position) DO NOTHING
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

// FetchAll retrieves all stored places with their reviews in storage order,
// used by the summary command.
func (ps *PostgresStore) FetchAll(ctx context.Context) ([]*models.Place, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT name, place_id, basic_info, keywords
		FROM places
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch places: %w", err)
	}
	defer rows.Close()

	var places []*models.Place
	byName := make(map[string]*models.Place)
	for rows.Next() {
		var (
			name, id       string
			info, keywords []byte
		)
		if err := rows.Scan(&name, &id, &info, &keywords); err != nil {
			return nil, fmt.Errorf("postgres: scan place: %w", err)
		}
		p := models.NewPlace(name)
		p.ID = id
		if err := json.Unmarshal(info, &p.BasicInfo); err != nil {
			return nil, fmt.Errorf("postgres: decode basic info for %q: %w", name, err)
		}
		if err := json.Unmarshal(keywords, &p.Keywords); err != nil {
			return nil, fmt.Errorf("postgres: decode keywords for %q: %w", name, err)
		}
		places = append(places, p)
		byName[name] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reviews, err := ps.db.QueryContext(ctx, `
		SELECT place_name, content
		FROM place_reviews
		ORDER BY place_name, position
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch reviews: %w", err)
	}
	defer reviews.Close()

	for reviews.Next() {
		var name, content string
		if err := reviews.Scan(&name, &content); err != nil {
			return nil, fmt.Errorf("postgres: scan review: %w", err)
		}
		if p, ok := byName[name]; ok {
			p.Reviews = append(p.Reviews, content)
		}
	}
	return places, reviews.Err()
}

var _ ResultWriter = (*PostgresStore)(nil)
