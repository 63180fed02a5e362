package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/repository"
)

// DirSpool persists raw batches as JSON files in a directory, one file
// per tag. Survives restarts, which is the point: a polled batch must
// not be lost because the operator reviewed it a day later.
type DirSpool struct {
	dir string
	mu  sync.Mutex
}

var _ repository.Spool = (*DirSpool)(nil)

func NewDirSpool(dir string) (*DirSpool, error) {
	if dir == "" {
		return nil, fmt.Errorf("spool dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}
	return &DirSpool{dir: dir}, nil
}

func (s *DirSpool) Put(_ context.Context, b model.RawBatch) error {
	if strings.TrimSpace(b.Tag) == "" {
		return fmt.Errorf("%w: batch tag is empty", domain.ErrInvalidArgument)
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path(b.Tag), data, 0o644); err != nil {
		return fmt.Errorf("write batch file: %w", err)
	}
	return nil
}

func (s *DirSpool) Get(_ context.Context, tag string) (model.RawBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path(tag))
	if err != nil {
		if os.IsNotExist(err) {
			return model.RawBatch{}, domain.ErrNotFound
		}
		return model.RawBatch{}, fmt.Errorf("read batch file: %w", err)
	}
	var b model.RawBatch
	if err := json.Unmarshal(data, &b); err != nil {
		return model.RawBatch{}, fmt.Errorf("decode batch file: %w", err)
	}
	return b, nil
}

func (s *DirSpool) Tags(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list spool dir: %w", err)
	}
	tags := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		tags = append(tags, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(tags)
	return tags, nil
}

func (s *DirSpool) Remove(_ context.Context, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(tag)); err != nil {
		if os.IsNotExist(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("remove batch file: %w", err)
	}
	return nil
}

// path sanitizes the tag so it can't escape the spool directory.
func (s *DirSpool) path(tag string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, tag)
	return filepath.Join(s.dir, safe+".json")
}
