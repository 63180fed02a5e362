package adapter

import (
	"context"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
)

// Extractor is the port for LLM-backed job extraction. One call covers
// one batch of raw text. Records come back in the order the backend
// produced them; the port promises nothing about uniqueness within a
// batch.
type Extractor interface {
	// Extract turns raw posting text into structured records with
	// drafted application emails. Transport, parse, and schema
	// failures all surface as domain.ErrExtraction wrapping the cause.
	Extract(ctx context.Context, rawText string) ([]model.JobRecord, error)

	// CountTokens reports the prompt-token footprint of rawText
	// (provider-specific counting; best-effort when exact isn't
	// available).
	CountTokens(ctx context.Context, rawText string) (int, error)

	// Name identifies the backing provider for logs and metrics.
	Name() string
}
