package models

import (
	"time"
)

// Provider identifies which weather source produced a reading. The two
// providers use different numeric condition-code schemes, so readings carry
// their origin with them.
type Provider string

const (
	ProviderMeteomatics Provider = "meteomatics"
	ProviderOpenMeteo   Provider = "open-meteo"
)

const (
	UnknownCity    = "Unknown City"
	UnknownCountry = "Unknown Country"
)

// Coordinates is a latitude/longitude pair, passed by value to fetchers.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PlaceName is a human-readable city/country pair from forward or reverse
// geocoding. Fields fall back to the Unknown sentinels when lookup fails.
type PlaceName struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Display renders the place the way the history list stores it.
func (p PlaceName) Display() string {
	return p.City + ", " + p.Country
}

// UnknownPlace returns the sentinel place used when reverse geocoding fails.
func UnknownPlace() PlaceName {
	return PlaceName{City: UnknownCity, Country: UnknownCountry}
}

// WeatherReading is the normalized current-conditions record. A reading is
// only constructed when a temperature is present; every other field may be
// absent depending on what the provider returned.
type WeatherReading struct {
	TemperatureC  float64   `json:"temperature_c"`
	Humidity      *float64  `json:"humidity_percent,omitempty"`
	WindSpeed     *float64  `json:"wind_speed_ms,omitempty"`
	ConditionCode *int      `json:"condition_code,omitempty"`
	ObservedAt    time.Time `json:"observed_at"`
	Source        Provider  `json:"source"`
}

// TemperatureF converts the reading's temperature to Fahrenheit.
func (r WeatherReading) TemperatureF() float64 {
	return r.TemperatureC*9/5 + 32
}

// ForecastDay is one day of the normalized daily forecast. Days are kept in
// the order the provider returned them, ascending by date.
type ForecastDay struct {
	Date          string  `json:"date"`
	MaxTempC      float64 `json:"max_temp_c"`
	MinTempC      float64 `json:"min_temp_c"`
	ConditionCode int     `json:"condition_code"`
	Precipitation float64 `json:"precipitation_probability_percent"`
}

// CityMatch is a single forward-geocoding result.
type CityMatch struct {
	Name    string      `json:"name"`
	Country string      `json:"country"`
	Coords  Coordinates `json:"coords"`
}

// Display formats the match for suggestion lists and the search history.
func (m CityMatch) Display() string {
	return m.Name + ", " + m.Country
}
