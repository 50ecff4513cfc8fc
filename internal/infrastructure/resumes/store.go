package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"smart-apply/internal/application/port/output"
	"smart-apply/internal/domain/entity"
)

var _ output.ResumeStore = (*Store)(nil)

const CacheFile = ".resume_cache.json"

var ErrUnknownResume = errors.New("unknown resume")

type Option func(*Store)

func WithExtractor(extract TextExtractor) Option {
	return func(s *Store) { s.extract = extract }
}

// Store keeps the parsed PDF résumés of one directory, cached on disk by filename set.
type Store struct {
	dir     string
	extract TextExtractor
	logger  output.LoggerPort

	mu      sync.RWMutex
	resumes map[string]entity.Resume
}

// NewStore creates dir if needed and loads résumés from the cache or by parsing.
func NewStore(ctx context.Context, dir string, logger output.LoggerPort, opts ...Option) (*Store, error) {
	s := &Store{
		dir:     dir,
		extract: ExtractPDFText,
		logger:  logger.WithField("component", "resumes"),
		resumes: make(map[string]entity.Resume),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("resume dir: %w", err)
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	files, err := s.pdfFiles()
	if err != nil {
		return err
	}

	cached, err := s.readCache()
	switch {
	case err == nil && sameNames(cached, files):
		s.mu.Lock()
		s.resumes = cached
		s.mu.Unlock()
		s.logger.Info("Resumes loaded from cache", "count", len(cached))
		return nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		s.logger.Warn("Resume cache corrupted, rebuilding", "error", err)
	}

	return s.scan(ctx, files)
}

// Reload ignores the cache and parses every PDF again.
func (s *Store) Reload(ctx context.Context) error {
	files, err := s.pdfFiles()
	if err != nil {
		return err
	}
	return s.scan(ctx, files)
}

func (s *Store) scan(ctx context.Context, files []string) error {
	if len(files) == 0 {
		s.logger.Warn("No resume PDFs found", "dir", s.dir)
	}

	parsed := make(map[string]entity.Resume, len(files))
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		path, err := filepath.Abs(filepath.Join(s.dir, name))
		if err != nil {
			return err
		}
		info, err := os.Stat(path)
		if err != nil {
			s.logger.Warn("Failed to stat resume", "file", name, "error", err)
			continue
		}

		text, err := s.extract(path)
		if err != nil {
			s.logger.Warn("Failed to parse resume", "file", name, "error", err)
			continue
		}

		parsed[name] = entity.Resume{
			ID:        name,
			Path:      path,
			Text:      text,
			WordCount: len(strings.Fields(text)),
			SizeKB:    float64(info.Size()) / 1024,
		}
		s.logger.Info("Resume parsed", "file", name, "words", parsed[name].WordCount)
	}

	s.mu.Lock()
	s.resumes = parsed
	s.mu.Unlock()

	if err := s.writeCache(parsed); err != nil {
		s.logger.Warn("Could not save resume cache", "error", err)
	}
	return nil
}

func (s *Store) pdfFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read resume dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

func (s *Store) readCache() (map[string]entity.Resume, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, CacheFile))
	if err != nil {
		return nil, err
	}
	var cached map[string]entity.Resume
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("decode %s: %w", CacheFile, err)
	}
	return cached, nil
}

func (s *Store) writeCache(resumes map[string]entity.Resume) error {
	data, err := json.MarshalIndent(resumes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, CacheFile), data, 0o644)
}

func sameNames(cached map[string]entity.Resume, files []string) bool {
	if len(cached) != len(files) {
		return false
	}
	for _, name := range files {
		if _, ok := cached[name]; !ok {
			return false
		}
	}
	return true
}

// ListAvailable returns résumé IDs in lexical order.
func (s *Store) ListAvailable(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.resumes)), nil
}

func (s *Store) Path(ctx context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.resumes[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownResume, id)
	}
	return r.Path, nil
}

func (s *Store) AllWithMetadata(ctx context.Context) (map[string]entity.Resume, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.resumes), nil
}
