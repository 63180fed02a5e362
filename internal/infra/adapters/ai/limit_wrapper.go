package ai

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.Extractor = (*limitedExtractor)(nil)

// limitedExtractor wraps another extractor and bounds both concurrent
// calls and request rate against the provider quota.
type limitedExtractor struct {
	inner adapter.Extractor
	sem   chan struct{}
	lim   *rate.Limiter
}

// NewLimitedExtractor returns inner unchanged when both limits are
// disabled. maxConcurrent <= 0 disables the semaphore, rps <= 0
// disables rate limiting.
func NewLimitedExtractor(inner adapter.Extractor, maxConcurrent int, rps float64) adapter.Extractor {
	if maxConcurrent <= 0 && rps <= 0 {
		return inner
	}
	le := &limitedExtractor{inner: inner}
	if maxConcurrent > 0 {
		le.sem = make(chan struct{}, maxConcurrent)
	}
	if rps > 0 {
		le.lim = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return le
}

func (l *limitedExtractor) acquire(ctx context.Context) (func(), error) {
	release := func() {}
	if l.sem != nil {
		select {
		case l.sem <- struct{}{}:
			release = func() { <-l.sem }
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if l.lim != nil {
		if err := l.lim.Wait(ctx); err != nil {
			release()
			return nil, err
		}
	}
	return release, nil
}

func (l *limitedExtractor) Extract(ctx context.Context, rawText string) ([]model.JobRecord, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return l.inner.Extract(ctx, rawText)
}

func (l *limitedExtractor) CountTokens(ctx context.Context, rawText string) (int, error) {
	release, err := l.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()
	return l.inner.CountTokens(ctx, rawText)
}

func (l *limitedExtractor) Name() string { return l.inner.Name() }
