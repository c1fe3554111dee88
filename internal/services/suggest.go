package services

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrSuperseded is returned when a newer suggestion query arrived while this
// one was waiting or in flight. Only the most recent query's results are
// worth applying.
var ErrSuperseded = errors.New("suggestion query superseded")

// Suggester serves autocomplete city suggestions. Each query takes a
// generation number; a query holds for the debounce window before issuing a
// network call, and bails out whenever a newer generation exists. That
// discards stale completions even when the underlying request is not
// literally cancellable.
type Suggester struct {
	geocoder   GeocodeClient
	logger     *zap.Logger
	debounce   time.Duration
	limit      int
	generation atomic.Uint64
}

func NewSuggester(geocoder GeocodeClient, debounce time.Duration, limit int, logger *zap.Logger) *Suggester {
	if limit <= 0 {
		limit = 10
	}
	return &Suggester{
		geocoder: geocoder,
		logger:   logger,
		debounce: debounce,
		limit:    limit,
	}
}

// Suggest returns up to the configured number of "City, Country" strings for
// the given prefix. An empty prefix yields an empty result without a network
// call.
func (s *Suggester) Suggest(ctx context.Context, prefix string) ([]string, error) {
	if strings.TrimSpace(prefix) == "" {
		return []string{}, nil
	}

	gen := s.generation.Add(1)

	if s.debounce > 0 {
		timer := time.NewTimer(s.debounce)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if s.stale(gen) {
		return nil, ErrSuperseded
	}

	matches, err := s.geocoder.SearchCity(ctx, prefix, s.limit)
	if err != nil {
		s.logger.Warn("City suggestion lookup failed",
			zap.String("prefix", prefix),
			zap.Error(err))
		return nil, err
	}

	// The response may have raced a newer keystroke.
	if s.stale(gen) {
		return nil, ErrSuperseded
	}

	suggestions := make([]string, 0, len(matches))
	for _, m := range matches {
		suggestions = append(suggestions, m.Display())
	}
	return suggestions, nil
}

func (s *Suggester) stale(gen uint64) bool {
	return s.generation.Load() != gen
}
