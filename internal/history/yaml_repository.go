package history

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const yamlExtension = ".yml"

// YAMLRepository keeps one YAML file per entry in a directory.
type YAMLRepository struct {
	rootDir string
}

func NewYAMLRepository(directory string) (*YAMLRepository, error) {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll(%s) > %w", directory, err)
	}
	return &YAMLRepository{rootDir: directory}, nil
}

// filePath returns ErrNotFound for ids that are not UUIDs so that an id can
// never point outside the directory.
func (r *YAMLRepository) filePath(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrNotFound
	}
	return filepath.Join(r.rootDir, id+yamlExtension), nil
}

func (r *YAMLRepository) Save(_ context.Context, entry *Entry) error {
	path, err := r.filePath(entry.ID)
	if err != nil {
		return fmt.Errorf("invalid entry id %q", entry.ID)
	}

	data, err := yaml.Marshal(entry)
	if err != nil {
		return fmt.Errorf("yaml.Marshal() > %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	return nil
}

func (r *YAMLRepository) List(_ context.Context, limit int) ([]Entry, error) {
	dirEntries, err := os.ReadDir(r.rootDir)
	if err != nil {
		return nil, fmt.Errorf("os.ReadDir(%s) > %w", r.rootDir, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() || !strings.HasSuffix(dirEntry.Name(), yamlExtension) {
			continue
		}
		entry, err := r.read(filepath.Join(r.rootDir, dirEntry.Name()))
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry.WithoutPDF())
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if limit = normalizeLimit(limit); len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (r *YAMLRepository) Find(_ context.Context, id string) (*Entry, error) {
	path, err := r.filePath(id)
	if err != nil {
		return nil, err
	}
	return r.read(path)
}

func (r *YAMLRepository) Delete(_ context.Context, id string) error {
	path, err := r.filePath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("os.Remove(%s) > %w", path, err)
	}
	return nil
}

func (r *YAMLRepository) read(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}

	var entry Entry
	if err := yaml.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal(%s) > %w", path, err)
	}
	return &entry, nil
}
