package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"feedbackradar-engine/internal/domain"
)

const DefaultQueryName = "default"

func SaveQuery(ctx context.Context, db *sql.DB, q domain.SavedQuery) error {
	keywords, _ := json.Marshal(q.Keywords)
	_, err := db.ExecContext(ctx, `
INSERT INTO saved_queries (name, keywords, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
  keywords = excluded.keywords,
  updated_at = excluded.updated_at;`,
		q.Name, string(keywords), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save query: %w", err)
	}
	return nil
}

func LoadQuery(ctx context.Context, db *sql.DB, name string) (domain.SavedQuery, bool, error) {
	var (
		q          domain.SavedQuery
		keywords   string
		updatedStr string
	)
	err := db.QueryRowContext(ctx,
		`SELECT name, keywords, updated_at FROM saved_queries WHERE name = ?;`, name,
	).Scan(&q.Name, &keywords, &updatedStr)
	if err == sql.ErrNoRows {
		return domain.SavedQuery{}, false, nil
	}
	if err != nil {
		return domain.SavedQuery{}, false, fmt.Errorf("load query: %w", err)
	}
	_ = json.Unmarshal([]byte(keywords), &q.Keywords)
	q.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)
	return q, true, nil
}

// SeedDefaultQuery writes the config keyword set as the default saved
// query unless one already exists (user edits win over config).
func SeedDefaultQuery(ctx context.Context, db *sql.DB, keywords []string) error {
	if len(keywords) == 0 {
		return nil
	}
	if _, ok, err := LoadQuery(ctx, db, DefaultQueryName); err != nil {
		return err
	} else if ok {
		return nil
	}
	return SaveQuery(ctx, db, domain.SavedQuery{Name: DefaultQueryName, Keywords: keywords})
}
