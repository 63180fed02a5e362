package ai

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/adapter"
)

var _ adapter.Extractor = (*NoopExtractor)(nil)

// NoopExtractor implements adapter.Extractor for local/dev runs.
// It returns a canned pair of records instead of calling a real model.
type NoopExtractor struct{}

// NewNoopExtractor constructs the noop extractor.
func NewNoopExtractor() *NoopExtractor {
	return &NoopExtractor{}
}

// Extract logs the batch size and simulates a small delay.
func (a *NoopExtractor) Extract(ctx context.Context, rawText string) ([]model.JobRecord, error) {
	select {
	case <-time.After(100 * time.Millisecond):
		// proceed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	log.Printf("[noop-extractor] Analyzing %d chars of posting text\n", len(rawText))
	return []model.JobRecord{
		{
			BatchSeq:     1,
			Title:        "Backend Engineer",
			Company:      "Acme Systems",
			ApplyEmail:   "careers@acme.example",
			JobType:      model.JobTypeFullTime,
			Location:     "Bengaluru",
			Skills:       "Go, PostgreSQL, Redis",
			Summary:      "Backend role building billing services in Go.",
			EmailSubject: "Application for Backend Engineer role",
			EmailBody:    "Dear Sir/Mam,\n\nSample draft body.\n\nBest regards",
		},
		{
			BatchSeq:     2,
			Title:        "Data Intern",
			Company:      "Contoso Labs",
			ApplyEmail:   "hr@contoso.example",
			JobType:      model.JobTypeInternship,
			Location:     "Pune",
			Skills:       "Python, SQL",
			Summary:      "Internship assisting the analytics team.",
			EmailSubject: "Application for Data Intern role",
			EmailBody:    "Dear Sir/Mam,\n\nSample draft body.\n\nBest regards",
		},
	}, nil
}

// CountTokens approximates tokens as whitespace-separated words.
func (a *NoopExtractor) CountTokens(ctx context.Context, rawText string) (int, error) {
	select {
	case <-time.After(10 * time.Millisecond):
		// proceed
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	return len(strings.Fields(rawText)), nil
}

func (a *NoopExtractor) Name() string { return "noop" }
