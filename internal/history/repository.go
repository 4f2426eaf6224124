// Package history records generated lead reports so they can be listed and
// downloaded again.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/at-ishikawa/leadgen/internal/config"
	"github.com/at-ishikawa/leadgen/internal/database"
	"github.com/at-ishikawa/leadgen/internal/inference"
	"github.com/at-ishikawa/leadgen/schemas"
)

//go:generate mockgen -source=repository.go -destination=../mocks/history/mock_repository.go -package=mock_history

// ErrNotFound is returned when no entry has the requested id
var ErrNotFound = errors.New("history entry not found")

// DefaultListLimit is used when List is called with a non-positive limit
const DefaultListLimit = 50

// Entry is one generated report.
type Entry struct {
	ID             string              `json:"id" yaml:"id"`
	CreatedAt      time.Time           `json:"createdAt" yaml:"created_at"`
	Provider       inference.Provider  `json:"provider" yaml:"provider"`
	Query          inference.LeadQuery `json:"query" yaml:"query"`
	Summary        string              `json:"summary" yaml:"summary"`
	WebSearchCount int                 `json:"webSearchCount" yaml:"web_search_count"`
	PDFBase64      string              `json:"pdfBase64,omitempty" yaml:"pdf_base64,omitempty"`
}

// NewEntry assigns a fresh id to a report generated at createdAt.
func NewEntry(createdAt time.Time, provider inference.Provider, query inference.LeadQuery) *Entry {
	return &Entry{
		ID:        uuid.NewString(),
		CreatedAt: createdAt,
		Provider:  provider,
		Query:     query,
	}
}

// SummaryLength is the number of characters of the generated Markdown kept
// as the entry summary.
const SummaryLength = 200

// Summarize returns the first SummaryLength characters of content followed by "...".
func Summarize(content string) string {
	runes := []rune(content)
	if len(runes) > SummaryLength {
		runes = runes[:SummaryLength]
	}
	return string(runes) + "..."
}

// WithoutPDF returns a copy of the entry without the report payload
func (e Entry) WithoutPDF() Entry {
	e.PDFBase64 = ""
	return e
}

// Repository stores history entries.
// List returns entries newest first without their PDF payload.
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
	List(ctx context.Context, limit int) ([]Entry, error)
	Find(ctx context.Context, id string) (*Entry, error)
	Delete(ctx context.Context, id string) error
}

// NewRepository returns the repository selected by the history driver. The
// mysql driver applies the embedded schema first. The returned close function
// releases the database connection, if any.
func NewRepository(ctx context.Context, cfg config.HistoryConfig) (Repository, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Driver {
	case "yaml":
		repo, err := NewYAMLRepository(cfg.Directory)
		if err != nil {
			return nil, nil, fmt.Errorf("NewYAMLRepository(%s) > %w", cfg.Directory, err)
		}
		return repo, noop, nil
	case "mysql":
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("database.Open() > %w", err)
		}
		if err := database.Migrate(ctx, db, schemas.Migrations); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("database.Migrate() > %w", err)
		}
		return NewDBRepository(db), db.Close, nil
	case "none", "":
		return NopRepository{}, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown history driver %q", cfg.Driver)
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

// NopRepository discards entries
type NopRepository struct{}

func (NopRepository) Save(context.Context, *Entry) error { return nil }

func (NopRepository) List(context.Context, int) ([]Entry, error) { return []Entry{}, nil }

func (NopRepository) Find(context.Context, string) (*Entry, error) { return nil, ErrNotFound }

func (NopRepository) Delete(context.Context, string) error { return ErrNotFound }
