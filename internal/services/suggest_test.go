package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alutech/weather-service/internal/models"
)

// countingGeocoder is safe for concurrent queries.
type countingGeocoder struct {
	mu      sync.Mutex
	calls   int
	matches []models.CityMatch
	block   chan struct{} // when set, SearchCity waits on it before returning
}

func (g *countingGeocoder) SearchCity(_ context.Context, _ string, _ int) ([]models.CityMatch, error) {
	g.mu.Lock()
	g.calls++
	block := g.block
	g.mu.Unlock()

	if block != nil {
		<-block
	}
	return g.matches, nil
}

func (g *countingGeocoder) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func TestSuggestEmptyQueryNoNetworkCall(t *testing.T) {
	geocoder := &countingGeocoder{}
	s := NewSuggester(geocoder, 0, 10, zap.NewNop())

	suggestions, err := s.Suggest(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, suggestions)
	assert.Equal(t, 0, geocoder.callCount())

	suggestions, err = s.Suggest(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, suggestions)
	assert.Equal(t, 0, geocoder.callCount())
}

func TestSuggestReturnsFormattedMatches(t *testing.T) {
	geocoder := &countingGeocoder{matches: []models.CityMatch{
		{Name: "Dublin", Country: "Ireland"},
		{Name: "Dubai", Country: "United Arab Emirates"},
	}}
	s := NewSuggester(geocoder, 0, 10, zap.NewNop())

	suggestions, err := s.Suggest(context.Background(), "Dub")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dublin, Ireland", "Dubai, United Arab Emirates"}, suggestions)
}

func TestSuggestNewerQuerySupersedesDebouncingOne(t *testing.T) {
	geocoder := &countingGeocoder{matches: []models.CityMatch{{Name: "Dublin", Country: "Ireland"}}}
	s := NewSuggester(geocoder, 50*time.Millisecond, 10, zap.NewNop())

	type outcome struct {
		suggestions []string
		err         error
	}
	first := make(chan outcome, 1)
	go func() {
		out, err := s.Suggest(context.Background(), "D")
		first <- outcome{out, err}
	}()

	// Let the first query enter its debounce window, then type again.
	time.Sleep(10 * time.Millisecond)
	suggestions, err := s.Suggest(context.Background(), "Du")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dublin, Ireland"}, suggestions)

	got := <-first
	assert.ErrorIs(t, got.err, ErrSuperseded)
	assert.Nil(t, got.suggestions)

	// Only the surviving query reached the network.
	assert.Equal(t, 1, geocoder.callCount())
}

func TestSuggestDiscardsStaleInFlightResult(t *testing.T) {
	block := make(chan struct{})
	geocoder := &countingGeocoder{
		matches: []models.CityMatch{{Name: "Dublin", Country: "Ireland"}},
		block:   block,
	}
	s := NewSuggester(geocoder, 0, 10, zap.NewNop())

	first := make(chan error, 1)
	go func() {
		_, err := s.Suggest(context.Background(), "D")
		first <- err
	}()

	// Wait for the first request to be in flight, then start a newer one.
	require.Eventually(t, func() bool { return geocoder.callCount() == 1 },
		time.Second, time.Millisecond)

	geocoder.mu.Lock()
	geocoder.block = nil
	geocoder.mu.Unlock()

	suggestions, err := s.Suggest(context.Background(), "Du")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dublin, Ireland"}, suggestions)

	// Release the first request; its completed response must be discarded.
	close(block)
	assert.ErrorIs(t, <-first, ErrSuperseded)
}

func TestSuggestCancelledContext(t *testing.T) {
	geocoder := &countingGeocoder{}
	s := NewSuggester(geocoder, 50*time.Millisecond, 10, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Suggest(ctx, "Dub")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, geocoder.callCount())
}
