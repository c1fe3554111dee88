package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/alutech/weather-service/internal/models"
)

// OpenMeteoClient is the fallback current-weather provider, the forecast
// provider, and the forward geocoder. Responses expose flat arrays keyed by
// series name, with index 0 holding the current hour.
type OpenMeteoClient struct {
	*BaseClient
	baseURL      string
	geocodingURL string
}

type OpenMeteoHourlyResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Hourly    struct {
		Time             []string  `json:"time"`
		Temperature2M    []float64 `json:"temperature_2m"`
		RelativeHumidity []float64 `json:"relativehumidity_2m"`
		WindSpeed10M     []float64 `json:"windspeed_10m"`
		WeatherCode      []int     `json:"weathercode"`
	} `json:"hourly"`
}

type OpenMeteoDailyResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Daily     struct {
		Time                     []string  `json:"time"`
		Temperature2MMax         []float64 `json:"temperature_2m_max"`
		Temperature2MMin         []float64 `json:"temperature_2m_min"`
		WeatherCode              []int     `json:"weathercode"`
		PrecipitationProbability []float64 `json:"precipitation_probability_mean"`
	} `json:"daily"`
}

type OpenMeteoGeocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

func NewOpenMeteoClient(baseURL, geocodingURL string, config ClientConfig, logger *zap.Logger) *OpenMeteoClient {
	baseClient := NewBaseClient("openmeteo", config, logger)
	return &OpenMeteoClient{
		BaseClient:   baseClient,
		baseURL:      baseURL,
		geocodingURL: geocodingURL,
	}
}

// CurrentWeather fetches the current conditions as an hourly forecast query
// and reads the first entry of each series.
func (c *OpenMeteoClient) CurrentWeather(ctx context.Context, coords models.Coordinates) (models.WeatherReading, error) {
	reqURL := fmt.Sprintf("%s/forecast?latitude=%.4f&longitude=%.4f&hourly=temperature_2m,relativehumidity_2m,windspeed_10m,weathercode",
		c.baseURL, coords.Latitude, coords.Longitude)

	result, err := c.Get(ctx, reqURL, nil)
	if err != nil {
		return models.WeatherReading{}, fmt.Errorf("open-meteo request failed: %w", err)
	}

	if !result.IsJSON() {
		return models.WeatherReading{}, fmt.Errorf("%w: open-meteo returned content type %q",
			models.ErrWeatherUnavailable, result.ContentType)
	}

	var response OpenMeteoHourlyResponse
	if err := json.Unmarshal(result.Body, &response); err != nil {
		return models.WeatherReading{}, fmt.Errorf("%w: parsing open-meteo response: %v",
			models.ErrWeatherUnavailable, err)
	}

	hourly := response.Hourly
	if len(hourly.Temperature2M) == 0 {
		return models.WeatherReading{}, fmt.Errorf("%w: no temperature in open-meteo response",
			models.ErrWeatherUnavailable)
	}

	reading := models.WeatherReading{
		TemperatureC: hourly.Temperature2M[0],
		ObservedAt:   time.Now(),
		Source:       models.ProviderOpenMeteo,
	}
	if len(hourly.RelativeHumidity) > 0 {
		reading.Humidity = &hourly.RelativeHumidity[0]
	}
	if len(hourly.WindSpeed10M) > 0 {
		reading.WindSpeed = &hourly.WindSpeed10M[0]
	}
	if len(hourly.WeatherCode) > 0 {
		reading.ConditionCode = &hourly.WeatherCode[0]
	}

	return reading, nil
}

// Forecast fetches daily aggregates for the given coordinates, using the
// location's local timezone for day boundaries. Days come back in provider
// order, ascending by date.
func (c *OpenMeteoClient) Forecast(ctx context.Context, coords models.Coordinates, days int) ([]models.ForecastDay, error) {
	reqURL := fmt.Sprintf("%s/forecast?latitude=%.4f&longitude=%.4f&daily=temperature_2m_max,temperature_2m_min,weathercode,precipitation_probability_mean&timezone=auto&forecast_days=%d",
		c.baseURL, coords.Latitude, coords.Longitude, days)

	result, err := c.Get(ctx, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("open-meteo forecast request failed: %w", err)
	}

	var response OpenMeteoDailyResponse
	if err := json.Unmarshal(result.Body, &response); err != nil {
		return nil, fmt.Errorf("%w: parsing forecast response: %v",
			models.ErrForecastUnavailable, err)
	}

	daily := response.Daily
	if len(daily.Time) == 0 {
		return nil, fmt.Errorf("%w: no daily series in response", models.ErrForecastUnavailable)
	}

	forecast := make([]models.ForecastDay, 0, len(daily.Time))
	for i, date := range daily.Time {
		day := models.ForecastDay{Date: date}
		if i < len(daily.Temperature2MMax) {
			day.MaxTempC = daily.Temperature2MMax[i]
		}
		if i < len(daily.Temperature2MMin) {
			day.MinTempC = daily.Temperature2MMin[i]
		}
		if i < len(daily.WeatherCode) {
			day.ConditionCode = daily.WeatherCode[i]
		}
		if i < len(daily.PrecipitationProbability) {
			day.Precipitation = daily.PrecipitationProbability[i]
		}
		forecast = append(forecast, day)
	}

	return forecast, nil
}

// SearchCity resolves a free-text place name against the geocoding endpoint,
// returning up to count matches. A zero-result response yields an empty
// slice; the caller decides whether that is an error.
func (c *OpenMeteoClient) SearchCity(ctx context.Context, name string, count int) ([]models.CityMatch, error) {
	reqURL := fmt.Sprintf("%s/search?name=%s&count=%d", c.geocodingURL, url.QueryEscape(name), count)

	result, err := c.Get(ctx, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}

	var response OpenMeteoGeocodingResponse
	if err := json.Unmarshal(result.Body, &response); err != nil {
		return nil, fmt.Errorf("parsing geocoding response: %w", err)
	}

	matches := make([]models.CityMatch, 0, len(response.Results))
	for _, r := range response.Results {
		matches = append(matches, models.CityMatch{
			Name:    r.Name,
			Country: r.Country,
			Coords: models.Coordinates{
				Latitude:  r.Latitude,
				Longitude: r.Longitude,
			},
		})
	}

	return matches, nil
}
