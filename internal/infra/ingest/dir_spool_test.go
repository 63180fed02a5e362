//go:build !integration

package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
)

func TestDirSpool_PutGetTagsRemove(t *testing.T) {
	// --- Arrange ---
	spool, err := NewDirSpool(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirSpool: %v", err)
	}
	ctx := context.Background()
	b := model.RawBatch{
		Tag:       "imap-42",
		Text:      "Backend Engineer at Acme, apply careers@acme.in",
		FetchedAt: time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC),
	}

	// --- Act ---
	if err := spool.Put(ctx, b); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// --- Assert ---
	got, err := spool.Get(ctx, "imap-42")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Text != b.Text || !got.FetchedAt.Equal(b.FetchedAt) {
		t.Fatalf("batch round trip mismatch: %+v", got)
	}

	tags, err := spool.Tags(ctx)
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if len(tags) != 1 || tags[0] != "imap-42" {
		t.Fatalf("tags = %v", tags)
	}

	if err := spool.Remove(ctx, "imap-42"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := spool.Get(ctx, "imap-42"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
	if err := spool.Remove(ctx, "imap-42"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for second remove, got %v", err)
	}
}

func TestDirSpool_SanitizesTags(t *testing.T) {
	dir := t.TempDir()
	spool, err := NewDirSpool(dir)
	if err != nil {
		t.Fatalf("NewDirSpool: %v", err)
	}
	ctx := context.Background()

	if err := spool.Put(ctx, model.RawBatch{Tag: "../escape/attempt", Text: "x"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 spool file, got %d", len(entries))
	}
	if filepath.Dir(filepath.Join(dir, entries[0].Name())) != dir {
		t.Fatalf("spool file escaped dir: %s", entries[0].Name())
	}
}

func TestDirSpool_RejectsEmptyTag(t *testing.T) {
	spool, _ := NewDirSpool(t.TempDir())
	err := spool.Put(context.Background(), model.RawBatch{Tag: "  ", Text: "x"})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
