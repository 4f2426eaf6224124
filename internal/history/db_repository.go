package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/leadgen/internal/inference"
)

// leadQueryRow is the lead_queries table layout. The query is stored as JSON.
type leadQueryRow struct {
	ID             string    `db:"id"`
	CreatedAt      time.Time `db:"created_at"`
	Provider       string    `db:"provider"`
	Query          []byte    `db:"query"`
	Summary        string    `db:"summary"`
	WebSearchCount int       `db:"web_search_count"`
	PDFBase64      string    `db:"pdf_base64"`
}

func (row leadQueryRow) toEntry() (*Entry, error) {
	var query inference.LeadQuery
	if err := json.Unmarshal(row.Query, &query); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(query of %s) > %w", row.ID, err)
	}
	return &Entry{
		ID:             row.ID,
		CreatedAt:      row.CreatedAt,
		Provider:       inference.Provider(row.Provider),
		Query:          query,
		Summary:        row.Summary,
		WebSearchCount: row.WebSearchCount,
		PDFBase64:      row.PDFBase64,
	}, nil
}

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// Save inserts a new entry.
func (r *DBRepository) Save(ctx context.Context, entry *Entry) error {
	query, err := json.Marshal(entry.Query)
	if err != nil {
		return fmt.Errorf("json.Marshal(query) > %w", err)
	}
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO lead_queries (id, created_at, provider, query, summary, web_search_count, pdf_base64)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.CreatedAt, string(entry.Provider), query, entry.Summary,
		entry.WebSearchCount, entry.PDFBase64); err != nil {
		return fmt.Errorf("db.ExecContext(insert lead_query) > %w", err)
	}
	return nil
}

// List returns the most recent entries without their PDF payload.
func (r *DBRepository) List(ctx context.Context, limit int) ([]Entry, error) {
	var rows []leadQueryRow
	if err := r.db.SelectContext(ctx, &rows,
		"SELECT id, created_at, provider, query, summary, web_search_count, '' AS pdf_base64 FROM lead_queries ORDER BY created_at DESC LIMIT ?",
		normalizeLimit(limit)); err != nil {
		return nil, fmt.Errorf("db.SelectContext(lead_queries) > %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entry, err := row.toEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// Find returns the entry with the id, or ErrNotFound.
func (r *DBRepository) Find(ctx context.Context, id string) (*Entry, error) {
	var row leadQueryRow
	err := r.db.GetContext(ctx, &row,
		"SELECT id, created_at, provider, query, summary, web_search_count, pdf_base64 FROM lead_queries WHERE id = ?",
		id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(lead_query) > %w", err)
	}
	return row.toEntry()
}

// Delete removes the entry with the id, or returns ErrNotFound.
func (r *DBRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM lead_queries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("db.ExecContext(delete lead_query) > %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected() > %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
