package models

import "errors"

// Classified fetch-layer failures. Callers distinguish them with errors.Is;
// the API layer maps them to response codes.
var (
	// ErrPrimaryUnavailable marks the primary weather provider as unusable
	// (403, non-JSON body, or unparseable JSON). It triggers the fallback
	// and is never surfaced past the weather service.
	ErrPrimaryUnavailable = errors.New("primary weather provider unavailable")

	// ErrWeatherUnavailable means no provider yielded a usable temperature.
	ErrWeatherUnavailable = errors.New("weather unavailable")

	// ErrForecastUnavailable means the daily-series block was missing from
	// the forecast response.
	ErrForecastUnavailable = errors.New("forecast unavailable")

	// ErrCityNotFound means geocoding returned zero results for the query.
	ErrCityNotFound = errors.New("city not found")

	// ErrNetwork is a transport-level failure (connection refused, DNS,
	// timeout) as opposed to a provider answering with unusable data.
	ErrNetwork = errors.New("network error")

	// ErrPersistence is a search-history storage failure. It is logged and
	// never blocks the caller flow.
	ErrPersistence = errors.New("persistence error")
)
