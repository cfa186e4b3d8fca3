package gradebook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/myst-ext/myst-ext-points/internal/points"
)

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New("worksheet not found")

// Record is one recorded worksheet: its identity, grand total, and
// per-category breakdown in first-encounter order.
type Record struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	ContentHash string                 `json:"content_hash"`
	GrandTotal  int                    `json:"grand_total"`
	Categories  []points.CategoryTotal `json:"categories"`
	RenderedAt  time.Time              `json:"rendered_at"`
}

// Store persists worksheet records in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens the gradebook database, creating it and its directory if
// needed, and applies migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create gradebook dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open gradebook: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping gradebook: %w", err)
	}
	if err := runMigrations(path); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put inserts one record with its category rows.
func (s *Store) Put(ctx context.Context, rec *Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	// RFC3339 at second precision keeps the TEXT column sorting chronologically.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO worksheets (id, title, content_hash, grand_total, rendered_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Title, rec.ContentHash, rec.GrandTotal, rec.RenderedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert worksheet: %w", err)
	}

	for i, ct := range rec.Categories {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO worksheet_categories (worksheet_id, position, category, points) VALUES (?, ?, ?, ?)`,
			rec.ID, i, ct.Category, ct.Points)
		if err != nil {
			return fmt.Errorf("insert category: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Get returns one record by ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	return s.getWhere(ctx, "id = ?", id)
}

// FindByHash returns the record with the given content hash, or ErrNotFound.
func (s *Store) FindByHash(ctx context.Context, hash string) (*Record, error) {
	return s.getWhere(ctx, "content_hash = ?", hash)
}

// List returns the most recently rendered records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content_hash, grand_total, rendered_at FROM worksheets ORDER BY rendered_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list worksheets: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan worksheet: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list worksheets: %w", err)
	}
	for _, rec := range out {
		if rec.Categories, err = s.categories(ctx, rec.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Delete removes one record and its category rows.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM worksheet_categories WHERE worksheet_id = ?`, id); err != nil {
		return fmt.Errorf("delete categories: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM worksheets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete worksheet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *Store) getWhere(ctx context.Context, cond string, arg any) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, content_hash, grand_total, rendered_at FROM worksheets WHERE `+cond, arg)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query worksheet: %w", err)
	}
	if rec.Categories, err = s.categories(ctx, rec.ID); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) categories(ctx context.Context, id string) ([]points.CategoryTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, points FROM worksheet_categories WHERE worksheet_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []points.CategoryTotal
	for rows.Next() {
		var ct points.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Points); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var renderedAt string
	if err := row.Scan(&rec.ID, &rec.Title, &rec.ContentHash, &rec.GrandTotal, &renderedAt); err != nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339, renderedAt)
	if err != nil {
		return nil, fmt.Errorf("parse rendered_at: %w", err)
	}
	rec.RenderedAt = ts
	return &rec, nil
}
