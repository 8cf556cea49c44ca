package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"feedbackradar-engine/internal/domain"
)

// InsertPostIgnore writes one feedback item, relying on the unique index
// on url. Returns whether a new row was actually created.
func InsertPostIgnore(ctx context.Context, db *sql.DB, p domain.FeedbackItem) (added bool, err error) {
	res, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO posts
  (source, keyword, author, content, url, created_at, sentiment_score, sentiment_label, relevance, priority, inserted_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		p.Source, p.Keyword, p.Author, p.Content, p.URL,
		p.CreatedAt.UTC().Format(time.RFC3339),
		p.SentimentScore, string(p.SentimentLabel), p.Relevance, p.Priority,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert post: %w", err)
	}

	// RowsAffected is this statement's own change count, so an IGNOREd
	// duplicate reports 0 even with other writers racing on the pool.
	// A separate SELECT changes() would not be safe here.
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert post: %w", err)
	}
	return n > 0, nil
}

type ListPostsOpts struct {
	Source      string  // adapter name, empty = all
	Label       string  // negative | neutral | positive, empty = all
	MinPriority float64 // 0 = no floor
	Window      string  // 24h | 7d | all
	Sort        string  // priority | created_at
	Limit       uint64
}

func ListPosts(ctx context.Context, db *sql.DB, opts ListPostsOpts) ([]domain.FeedbackItem, error) {
	if opts.Limit == 0 || opts.Limit > 2000 {
		opts.Limit = 200
	}

	b := sq.Select(
		"source", "keyword", "author", "content", "url", "created_at",
		"sentiment_score", "sentiment_label", "relevance", "priority",
	).From("posts")

	if opts.Source != "" {
		b = b.Where(sq.Eq{"source": opts.Source})
	}
	if opts.Label != "" {
		b = b.Where(sq.Eq{"sentiment_label": opts.Label})
	}
	if opts.MinPriority > 0 {
		b = b.Where(sq.GtOrEq{"priority": opts.MinPriority})
	}
	switch opts.Window {
	case "24h":
		b = b.Where(sq.GtOrEq{"created_at": time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339)})
	case "all":
	default: // 7d
		b = b.Where(sq.GtOrEq{"created_at": time.Now().UTC().Add(-7 * 24 * time.Hour).Format(time.RFC3339)})
	}

	switch opts.Sort {
	case "created_at":
		b = b.OrderBy("created_at DESC")
	default:
		b = b.OrderBy("priority DESC", "created_at DESC")
	}
	b = b.Limit(opts.Limit)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build posts query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var out []domain.FeedbackItem
	for rows.Next() {
		var (
			p         domain.FeedbackItem
			label     string
			createdAt string
		)
		if err := rows.Scan(
			&p.Source, &p.Keyword, &p.Author, &p.Content, &p.URL, &createdAt,
			&p.SentimentScore, &label, &p.Relevance, &p.Priority,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.SentimentLabel = domain.SentimentLabel(label)
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// CleanupOldPosts drops persisted feedback older than the retention window.
func CleanupOldPosts(ctx context.Context, db *sql.DB, olderThan time.Duration) (deleted int64, err error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	res, err := db.ExecContext(ctx, `DELETE FROM posts WHERE created_at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup old posts: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
