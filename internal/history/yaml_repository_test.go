package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/leadgen/internal/inference"
)

func newTestEntry(id string, createdAt time.Time) *Entry {
	return &Entry{
		ID:        id,
		CreatedAt: createdAt,
		Provider:  inference.ProviderClaude,
		Query: inference.LeadQuery{
			CompanyDescription: "HR software",
			Locations:          []string{"Berlin"},
			Industry:           []string{"Manufacturing"},
			CompanySizeMin:     10,
			Personas:           []string{"HR Manager"},
			SearchMode:         inference.SearchModeAccurate,
			MaxResults:         10,
		},
		Summary:        "## Lead 1: Acme...",
		WebSearchCount: 3,
		PDFBase64:      "JVBERi0=",
	}
}

const (
	olderID = "0b1f7c4e-3a59-4d0c-9a6e-2f0a5e0c1a01"
	newerID = "7d3e6b2a-8c41-4f7e-b5d2-9e1c3a4b5c02"
)

func TestYAMLRepository_SaveFindDelete(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "history")
	repo, err := NewYAMLRepository(dir)
	require.NoError(t, err)

	entry := newTestEntry(olderID, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, entry))
	assert.FileExists(t, filepath.Join(dir, olderID+".yml"))

	got, err := repo.Find(ctx, olderID)
	require.NoError(t, err)
	assert.Equal(t, entry, got)

	require.NoError(t, repo.Delete(ctx, olderID))
	_, err = repo.Find(ctx, olderID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, olderID), ErrNotFound)
}

func TestYAMLRepository_InvalidIDs(t *testing.T) {
	ctx := context.Background()
	repo, err := NewYAMLRepository(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"", "../config", "not-a-uuid"} {
		t.Run(id, func(t *testing.T) {
			_, err := repo.Find(ctx, id)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, repo.Delete(ctx, id), ErrNotFound)
			assert.Error(t, repo.Save(ctx, &Entry{ID: id}))
		})
	}
}

func TestYAMLRepository_List(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		entries []*Entry
		extra   map[string]string
		limit   int
		wantIDs []string
		wantErr bool
	}{
		{
			name:    "empty directory",
			wantIDs: []string{},
		},
		{
			name: "newest first without PDF",
			entries: []*Entry{
				newTestEntry(olderID, base),
				newTestEntry(newerID, base.Add(time.Hour)),
			},
			extra:   map[string]string{"notes.txt": "ignored"},
			wantIDs: []string{newerID, olderID},
		},
		{
			name: "limit",
			entries: []*Entry{
				newTestEntry(olderID, base),
				newTestEntry(newerID, base.Add(time.Hour)),
			},
			limit:   1,
			wantIDs: []string{newerID},
		},
		{
			name:    "broken file",
			extra:   map[string]string{"broken.yml": "id: [unterminated"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			repo, err := NewYAMLRepository(dir)
			require.NoError(t, err)
			for _, entry := range tt.entries {
				require.NoError(t, repo.Save(ctx, entry))
			}
			for name, contents := range tt.extra {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644))
			}

			got, err := repo.List(ctx, tt.limit)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			ids := make([]string, 0, len(got))
			for _, entry := range got {
				ids = append(ids, entry.ID)
				assert.Empty(t, entry.PDFBase64)
				assert.Equal(t, "HR software", entry.Query.CompanyDescription)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
