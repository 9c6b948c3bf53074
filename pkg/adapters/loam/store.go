package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"

	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/schema"
)

// Store implements ports.PageStore on a Loam vault. Each page is a JSON
// document whose metadata is the page schema.
type Store struct {
	Repo core.Repository
}

// New wraps an initialized repository.
func New(repo core.Repository) *Store {
	return &Store{Repo: repo}
}

// Open initializes a vault at path and wraps it.
func Open(path string, opts ...loam.Option) (*Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault path: %w", err)
	}
	repo, err := loam.Init(absPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(repo), nil
}

func documentID(id string) string { return id + ".json" }

// Save writes the page as <id>.json.
func (s *Store) Save(ctx context.Context, page *schema.PageData) error {
	if page == nil || page.ID == "" {
		return fmt.Errorf("page id cannot be empty")
	}
	meta, err := toMetadata(page)
	if err != nil {
		return err
	}
	if err := s.Repo.Save(ctx, core.Document{
		ID:       documentID(page.ID),
		Metadata: meta,
	}); err != nil {
		return fmt.Errorf("loam save failed for %s: %w", page.ID, err)
	}
	return nil
}

// Load reads the page document. A failed lookup of an id the vault does
// not list is reported as ports.ErrPageNotFound.
func (s *Store) Load(ctx context.Context, id string) (*schema.PageData, error) {
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		if ok, lerr := s.exists(ctx, id); lerr == nil && !ok {
			return nil, ports.ErrPageNotFound
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	page, err := schema.DecodePage(map[string]any(doc.Metadata))
	if err != nil {
		return nil, fmt.Errorf("failed to decode page %s: %w", id, err)
	}
	if page.ID == "" {
		page.ID = id
	}
	return page, nil
}

// Delete removes the page document.
func (s *Store) Delete(ctx context.Context, id string) error {
	ok, err := s.exists(ctx, id)
	if err != nil || !ok {
		return err
	}
	if err := s.Repo.Delete(ctx, documentID(id)); err != nil {
		return fmt.Errorf("loam delete failed for %s: %w", id, err)
	}
	return nil
}

// List returns the ids of every page document.
func (s *Store) List(ctx context.Context) ([]string, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id := trimExtension(doc.ID)
		if raw, ok := doc.Metadata["id"].(string); ok && raw != "" {
			id = raw
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *Store) exists(ctx context.Context, id string) (bool, error) {
	ids, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, id), nil
}

func toMetadata(page *schema.PageData) (core.Metadata, error) {
	data, err := json.Marshal(page)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal page: %w", err)
	}
	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to flatten page: %w", err)
	}
	return core.Metadata(meta), nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
