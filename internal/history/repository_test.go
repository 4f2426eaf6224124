package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/leadgen/internal/config"
	"github.com/at-ishikawa/leadgen/internal/inference"
)

func TestNewRepository(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.HistoryConfig
		want    any
		wantErr bool
	}{
		{
			name: "yaml",
			cfg:  config.HistoryConfig{Driver: "yaml", Directory: filepath.Join(t.TempDir(), "history")},
			want: &YAMLRepository{},
		},
		{
			name: "none",
			cfg:  config.HistoryConfig{Driver: "none"},
			want: NopRepository{},
		},
		{
			name:    "unknown driver",
			cfg:     config.HistoryConfig{Driver: "sqlite"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, closeFn, err := NewRepository(context.Background(), tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
			assert.NoError(t, closeFn())
		})
	}
}

func TestNewEntry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	query := inference.LeadQuery{CompanyDescription: "HR software"}

	first := NewEntry(now, inference.ProviderGemini, query)
	second := NewEntry(now, inference.ProviderGemini, query)

	_, err := uuid.Parse(first.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, now, first.CreatedAt)
	assert.Equal(t, inference.ProviderGemini, first.Provider)
	assert.Equal(t, query, first.Query)
}

func TestNopRepository(t *testing.T) {
	ctx := context.Background()
	repo := NopRepository{}

	assert.NoError(t, repo.Save(ctx, &Entry{ID: olderID}))
	got, err := repo.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
	_, err = repo.Find(ctx, olderID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, olderID), ErrNotFound)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "empty", content: "", want: "..."},
		{name: "short", content: "## Lead 1: Acme", want: "## Lead 1: Acme..."},
		{name: "long", content: strings.Repeat("a", 250), want: strings.Repeat("a", 200) + "..."},
		{name: "multibyte", content: strings.Repeat("é", 201), want: strings.Repeat("é", 200) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.content))
		})
	}
}
