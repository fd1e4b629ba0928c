package podcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileStore is a Store backed by a single JSON file. Writes rewrite the whole
// file atomically (temp file + rename), so a crash mid-write never leaves a
// truncated database behind.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

// Compile-time interface check.
var _ Store = (*FileStore)(nil)

// fileSchema is the on-disk JSON layout.
type fileSchema struct {
	Podcasts []Podcast `json:"podcasts"`
}

// NewFileStore creates a FileStore persisting to path. The file and its
// parent directory are created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// load reads all records from disk. A missing file is an empty store.
func (s *FileStore) load() ([]Podcast, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("podcast: read %s: %w", s.path, err)
	}
	var schema fileSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("podcast: parse %s: %w", s.path, err)
	}
	return schema.Podcasts, nil
}

// store writes all records to disk atomically.
func (s *FileStore) store(podcasts []Podcast) error {
	if podcasts == nil {
		podcasts = []Podcast{}
	}
	data, err := json.MarshalIndent(fileSchema{Podcasts: podcasts}, "", "  ")
	if err != nil {
		return fmt.Errorf("podcast: marshal: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("podcast: create data dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("podcast: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("podcast: replace %s: %w", s.path, err)
	}
	return nil
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, p *Podcast) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	podcasts, err := s.load()
	if err != nil {
		return err
	}
	podcasts = append(podcasts, *p)
	return s.store(podcasts)
}

// List implements Store, returning podcasts newest first.
func (s *FileStore) List(ctx context.Context) ([]Podcast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	podcasts, err := s.load()
	if err != nil {
		return nil, err
	}
	sort.Slice(podcasts, func(i, j int) bool {
		return podcasts[i].CreatedAt.After(podcasts[j].CreatedAt)
	})
	return podcasts, nil
}

// Get implements Store.
func (s *FileStore) Get(ctx context.Context, id string) (*Podcast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	podcasts, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range podcasts {
		if podcasts[i].ID == id {
			p := podcasts[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// Delete implements Store.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	podcasts, err := s.load()
	if err != nil {
		return err
	}
	kept := podcasts[:0]
	for _, p := range podcasts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(podcasts) {
		return ErrNotFound
	}
	return s.store(kept)
}

// SetAudioURL implements Store.
func (s *FileStore) SetAudioURL(ctx context.Context, id, url string) (*Podcast, error) {
	return s.update(id, func(p *Podcast) { p.AudioURL = url })
}

// SetCoverURL implements Store.
func (s *FileStore) SetCoverURL(ctx context.Context, id, url string) (*Podcast, error) {
	return s.update(id, func(p *Podcast) { p.CoverURL = url })
}

// SetTitle implements Store.
func (s *FileStore) SetTitle(ctx context.Context, id, title string) (*Podcast, error) {
	return s.update(id, func(p *Podcast) { p.Title = title })
}

// ToggleListened implements Store.
func (s *FileStore) ToggleListened(ctx context.Context, id string) (*Podcast, error) {
	return s.update(id, func(p *Podcast) { p.Listened = !p.Listened })
}

// update applies fn to the record with the given ID and persists the result.
func (s *FileStore) update(id string, fn func(*Podcast)) (*Podcast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	podcasts, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range podcasts {
		if podcasts[i].ID == id {
			fn(&podcasts[i])
			if err := s.store(podcasts); err != nil {
				return nil, err
			}
			p := podcasts[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}
