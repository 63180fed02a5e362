package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/adapter"
)

// FileSource picks up .txt drops from a watched directory, for alert
// text saved by hand. Consumed files move into a processed/ subdir so
// a poll never reads them twice.
type FileSource struct {
	dir string
	log zerolog.Logger
}

var _ adapter.InboxSource = (*FileSource)(nil)

func NewFileSource(dir string, logger zerolog.Logger) (*FileSource, error) {
	if dir == "" {
		return nil, fmt.Errorf("drop dir is empty")
	}
	if err := os.MkdirAll(filepath.Join(dir, "processed"), 0o755); err != nil {
		return nil, fmt.Errorf("create drop dir: %w", err)
	}
	return &FileSource{
		dir: dir,
		log: logger.With().Str("component", "file_source").Logger(),
	}, nil
}

func (s *FileSource) Fetch(ctx context.Context) ([]model.RawBatch, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list drop dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var batches []model.RawBatch
	for _, name := range names {
		select {
		case <-ctx.Done():
			return batches, ctx.Err()
		default:
		}

		full := filepath.Join(s.dir, name)
		data, err := os.ReadFile(full)
		if err != nil {
			s.log.Warn().Err(err).Str("file", name).Msg("skipping unreadable drop")
			continue
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			_ = os.Remove(full)
			continue
		}

		info, _ := os.Stat(full)
		fetchedAt := time.Now()
		if info != nil {
			fetchedAt = info.ModTime()
		}
		batches = append(batches, model.RawBatch{
			Tag:       "file-" + strings.TrimSuffix(name, ".txt"),
			Text:      text,
			FetchedAt: fetchedAt,
		})

		if err := os.Rename(full, filepath.Join(s.dir, "processed", name)); err != nil {
			s.log.Warn().Err(err).Str("file", name).Msg("could not archive drop")
		}
	}
	return batches, nil
}
