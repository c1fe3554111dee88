package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/alutech/weather-service/internal/models"
)

// meteomaticsParams are the instant-value series requested for a current
// reading: temperature, symbol index, wind speed, relative humidity.
const meteomaticsParams = "t_2m:C,weather_symbol_1h:idx,wind_speed_10m:ms,relative_humidity_2m:pct"

// MeteomaticsClient is the primary current-weather provider. Responses nest
// values under a parameter list keyed by parameter name.
type MeteomaticsClient struct {
	*BaseClient
	baseURL   string
	authToken string
}

type MeteomaticsResponse struct {
	Status string `json:"status"`
	Data   []struct {
		Parameter   string `json:"parameter"`
		Coordinates []struct {
			Lat   float64 `json:"lat"`
			Lon   float64 `json:"lon"`
			Dates []struct {
				Date  string  `json:"date"`
				Value float64 `json:"value"`
			} `json:"dates"`
		} `json:"coordinates"`
	} `json:"data"`
}

func NewMeteomaticsClient(baseURL, username, password string, config ClientConfig, logger *zap.Logger) *MeteomaticsClient {
	baseClient := NewBaseClient("meteomatics", config, logger)
	token := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return &MeteomaticsClient{
		BaseClient: baseClient,
		baseURL:    baseURL,
		authToken:  token,
	}
}

// CurrentWeather fetches the instant conditions for the given coordinates.
// A 403, a non-JSON body, or unparseable JSON classifies the provider as
// unavailable (models.ErrPrimaryUnavailable) so the caller can fall back;
// transport failures surface as models.ErrNetwork.
func (c *MeteomaticsClient) CurrentWeather(ctx context.Context, coords models.Coordinates) (models.WeatherReading, error) {
	// Request timestamp truncated to whole seconds, UTC.
	now := time.Now().UTC().Format("2006-01-02T15:04:05Z")
	url := fmt.Sprintf("%s/%s/%s/%.4f,%.4f/json",
		c.baseURL, now, meteomaticsParams, coords.Latitude, coords.Longitude)

	header := http.Header{}
	header.Set("Authorization", "Basic "+c.authToken)

	result, err := c.Get(ctx, url, header)
	if err != nil {
		return models.WeatherReading{}, fmt.Errorf("meteomatics request failed: %w", err)
	}

	if result.StatusCode == http.StatusForbidden || !result.IsJSON() {
		c.logger.Warn("Meteomatics response not usable",
			zap.Int("status", result.StatusCode),
			zap.String("content_type", result.ContentType))
		return models.WeatherReading{}, fmt.Errorf("%w: HTTP %d, content type %q",
			models.ErrPrimaryUnavailable, result.StatusCode, result.ContentType)
	}

	var response MeteomaticsResponse
	if err := json.Unmarshal(result.Body, &response); err != nil {
		return models.WeatherReading{}, fmt.Errorf("%w: parsing response: %v",
			models.ErrPrimaryUnavailable, err)
	}

	values := make(map[string]float64, len(response.Data))
	for _, series := range response.Data {
		if len(series.Coordinates) == 0 || len(series.Coordinates[0].Dates) == 0 {
			continue
		}
		values[series.Parameter] = series.Coordinates[0].Dates[0].Value
	}

	// Temperature is the sole success discriminator.
	temp, ok := values["t_2m:C"]
	if !ok {
		return models.WeatherReading{}, fmt.Errorf("%w: no temperature in response",
			models.ErrPrimaryUnavailable)
	}

	reading := models.WeatherReading{
		TemperatureC: temp,
		ObservedAt:   time.Now(),
		Source:       models.ProviderMeteomatics,
	}
	if h, ok := values["relative_humidity_2m:pct"]; ok {
		reading.Humidity = &h
	}
	if w, ok := values["wind_speed_10m:ms"]; ok {
		reading.WindSpeed = &w
	}
	if s, ok := values["weather_symbol_1h:idx"]; ok {
		code := int(math.Round(s))
		reading.ConditionCode = &code
	}

	return reading, nil
}
