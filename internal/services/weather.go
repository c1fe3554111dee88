package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/alutech/weather-service/internal/models"
)

// WeatherClient fetches normalized current conditions for a coordinate pair.
type WeatherClient interface {
	CurrentWeather(ctx context.Context, coords models.Coordinates) (models.WeatherReading, error)
}

// ForecastClient fetches a normalized multi-day daily forecast.
type ForecastClient interface {
	Forecast(ctx context.Context, coords models.Coordinates, days int) ([]models.ForecastDay, error)
}

// GeocodeClient resolves free-text place names to coordinate matches.
type GeocodeClient interface {
	SearchCity(ctx context.Context, name string, count int) ([]models.CityMatch, error)
}

// ReverseGeocoder resolves coordinates to a place name and never fails
// outward; it substitutes sentinel names on lookup errors.
type ReverseGeocoder interface {
	PlaceName(ctx context.Context, coords models.Coordinates) models.PlaceName
}

// HistoryStore is the bounded most-recently-used search history.
type HistoryStore interface {
	Record(entry string) error
	List() []string
	Clear() error
}

// Service orchestrates the weather lookups: primary-then-fallback current
// weather, daily forecasts, geocoding, and the search history.
type Service struct {
	primary   WeatherClient
	secondary WeatherClient
	forecast  ForecastClient
	geocoder  GeocodeClient
	reverse   ReverseGeocoder
	history   HistoryStore
	logger    *zap.Logger
}

func NewService(
	primary, secondary WeatherClient,
	forecast ForecastClient,
	geocoder GeocodeClient,
	reverse ReverseGeocoder,
	history HistoryStore,
	logger *zap.Logger,
) *Service {
	return &Service{
		primary:   primary,
		secondary: secondary,
		forecast:  forecast,
		geocoder:  geocoder,
		reverse:   reverse,
		history:   history,
		logger:    logger,
	}
}

// CurrentWeather tries the primary provider and falls back to the secondary
// when the primary is classified unavailable or fails outright. The fallback
// is only issued after the primary call has been observed to fail, never
// concurrently, and there are no retries beyond the single fallback.
func (s *Service) CurrentWeather(ctx context.Context, coords models.Coordinates) (models.WeatherReading, error) {
	reading, primaryErr := s.primary.CurrentWeather(ctx, coords)
	if primaryErr == nil {
		return reading, nil
	}

	s.logger.Warn("Primary weather provider failed, falling back",
		zap.Float64("lat", coords.Latitude),
		zap.Float64("lon", coords.Longitude),
		zap.Error(primaryErr))

	reading, secondaryErr := s.secondary.CurrentWeather(ctx, coords)
	if secondaryErr == nil {
		return reading, nil
	}

	s.logger.Error("Both weather providers failed",
		zap.NamedError("primary", primaryErr),
		zap.NamedError("secondary", secondaryErr))

	// Transport failures surface distinctly from providers that answered
	// but produced no usable temperature.
	if errors.Is(primaryErr, models.ErrNetwork) && errors.Is(secondaryErr, models.ErrNetwork) {
		return models.WeatherReading{}, fmt.Errorf("%w: %v", models.ErrNetwork, secondaryErr)
	}
	if errors.Is(secondaryErr, models.ErrWeatherUnavailable) {
		return models.WeatherReading{}, secondaryErr
	}
	return models.WeatherReading{}, fmt.Errorf("%w: %v", models.ErrWeatherUnavailable, secondaryErr)
}

// Forecast returns the daily forecast for the given coordinates in provider
// order.
func (s *Service) Forecast(ctx context.Context, coords models.Coordinates, days int) ([]models.ForecastDay, error) {
	return s.forecast.Forecast(ctx, coords, days)
}

// ResolveCity resolves a free-text query to its single best geocoding match.
func (s *Service) ResolveCity(ctx context.Context, query string) (models.CityMatch, error) {
	matches, err := s.geocoder.SearchCity(ctx, query, 1)
	if err != nil {
		return models.CityMatch{}, fmt.Errorf("resolving %q: %w", query, err)
	}
	if len(matches) == 0 {
		return models.CityMatch{}, fmt.Errorf("%w: %q", models.ErrCityNotFound, query)
	}
	return matches[0], nil
}

// CityWeatherResult is a current reading together with the canonical place
// the query resolved to.
type CityWeatherResult struct {
	Place   models.PlaceName      `json:"place"`
	Coords  models.Coordinates    `json:"coords"`
	Reading models.WeatherReading `json:"reading"`
}

// CityWeather resolves a typed city name, fetches its current weather, and
// records the canonical "City, Country" in the search history. A history
// persistence failure is logged and does not fail the lookup.
func (s *Service) CityWeather(ctx context.Context, name string) (CityWeatherResult, error) {
	match, err := s.ResolveCity(ctx, name)
	if err != nil {
		return CityWeatherResult{}, err
	}

	reading, err := s.CurrentWeather(ctx, match.Coords)
	if err != nil {
		return CityWeatherResult{}, err
	}

	if err := s.history.Record(match.Display()); err != nil {
		s.logger.Warn("Failed to persist search history",
			zap.String("entry", match.Display()),
			zap.Error(err))
	}

	return CityWeatherResult{
		Place:   models.PlaceName{City: match.Name, Country: match.Country},
		Coords:  match.Coords,
		Reading: reading,
	}, nil
}

// LocalWeather fetches the current weather for device coordinates together
// with a reverse-geocoded place name. The place name falls back to sentinels
// and never blocks the reading.
func (s *Service) LocalWeather(ctx context.Context, coords models.Coordinates) (CityWeatherResult, error) {
	reading, err := s.CurrentWeather(ctx, coords)
	if err != nil {
		return CityWeatherResult{}, err
	}

	return CityWeatherResult{
		Place:   s.reverse.PlaceName(ctx, coords),
		Coords:  coords,
		Reading: reading,
	}, nil
}

// History returns the search history, most recent first.
func (s *Service) History() []string {
	return s.history.List()
}

// ClearHistory drops the search history.
func (s *Service) ClearHistory() error {
	if err := s.history.Clear(); err != nil {
		s.logger.Warn("Failed to clear search history", zap.Error(err))
		return err
	}
	return nil
}
