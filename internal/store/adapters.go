package store

import (
	"context"
	"database/sql"
	"errors"

	"feedbackradar-engine/internal/domain"
)

// PostWriter adapts the posts table to the gate's Store interface.
type PostWriter struct {
	DB *sql.DB
}

func (w PostWriter) InsertIgnore(ctx context.Context, item domain.FeedbackItem) (bool, error) {
	return InsertPostIgnore(ctx, w.DB, item)
}

// JobStore adapts the jobs table to the manager's persistence interface.
type JobStore struct {
	DB *sql.DB
}

func (s JobStore) Save(ctx context.Context, j domain.Job) error {
	return SaveJob(ctx, s.DB, j)
}

func (s JobStore) Load(ctx context.Context, id string) (domain.Job, bool, error) {
	j, err := LoadJob(ctx, s.DB, id)
	if errors.Is(err, ErrJobNotFound) {
		return domain.Job{}, false, nil
	}
	if err != nil {
		return domain.Job{}, false, err
	}
	return j, true, nil
}
