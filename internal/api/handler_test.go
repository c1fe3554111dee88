package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alutech/weather-service/internal/models"
	"github.com/alutech/weather-service/internal/services"
)

type stubWeather struct {
	reading models.WeatherReading
	err     error
}

func (s *stubWeather) CurrentWeather(_ context.Context, _ models.Coordinates) (models.WeatherReading, error) {
	return s.reading, s.err
}

type stubForecast struct {
	days []models.ForecastDay
	err  error
}

func (s *stubForecast) Forecast(_ context.Context, _ models.Coordinates, _ int) ([]models.ForecastDay, error) {
	return s.days, s.err
}

type stubGeocoder struct {
	matches []models.CityMatch
}

func (s *stubGeocoder) SearchCity(_ context.Context, _ string, _ int) ([]models.CityMatch, error) {
	return s.matches, nil
}

type stubReverse struct{}

func (stubReverse) PlaceName(_ context.Context, _ models.Coordinates) models.PlaceName {
	return models.PlaceName{City: "Zurich", Country: "Switzerland"}
}

type stubHistory struct {
	entries []string
}

func (s *stubHistory) Record(entry string) error {
	s.entries = append([]string{entry}, s.entries...)
	return nil
}
func (s *stubHistory) List() []string { return s.entries }
func (s *stubHistory) Clear() error   { s.entries = nil; return nil }

type appOptions struct {
	weather  *stubWeather
	forecast *stubForecast
	geocoder *stubGeocoder
	history  *stubHistory
}

func newTestApp(opts appOptions) *fiber.App {
	if opts.weather == nil {
		code := 2
		opts.weather = &stubWeather{reading: models.WeatherReading{
			TemperatureC:  18.4,
			ConditionCode: &code,
			ObservedAt:    time.Now(),
			Source:        models.ProviderMeteomatics,
		}}
	}
	if opts.forecast == nil {
		opts.forecast = &stubForecast{}
	}
	if opts.geocoder == nil {
		opts.geocoder = &stubGeocoder{}
	}
	if opts.history == nil {
		opts.history = &stubHistory{}
	}

	logger := zap.NewNop()
	service := services.NewService(
		opts.weather, opts.weather, opts.forecast, opts.geocoder, stubReverse{}, opts.history, logger)
	suggester := services.NewSuggester(opts.geocoder, 0, 10, logger)

	app := fiber.New(fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	SetupRoutes(app, NewHandler(service, suggester, logger), logger)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var decoded map[string]any
	if len(body) > 0 {
		require.NoError(t, json.Unmarshal(body, &decoded))
	}
	return resp, decoded
}

func TestGetCurrentWeather(t *testing.T) {
	app := newTestApp(appOptions{})

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/weather/current?lat=47.3769&lon=8.5417")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	reading := body["reading"].(map[string]any)
	assert.Equal(t, 18.4, reading["temperature_c"])
	assert.Equal(t, "partly_cloudy", body["symbol"])

	place := body["place"].(map[string]any)
	assert.Equal(t, "Zurich", place["city"])
}

func TestGetCurrentWeatherMissingCoords(t *testing.T) {
	app := newTestApp(appOptions{})

	resp, _ := doRequest(t, app, http.MethodGet, "/api/v1/weather/current")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetCurrentWeatherUnavailable(t *testing.T) {
	app := newTestApp(appOptions{
		weather: &stubWeather{err: fmt.Errorf("%w", models.ErrWeatherUnavailable)},
	})

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/weather/current?lat=1&lon=2")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Weather data unavailable.", body["error"])
}

func TestGetCityWeatherRecordsHistory(t *testing.T) {
	history := &stubHistory{}
	app := newTestApp(appOptions{
		geocoder: &stubGeocoder{matches: []models.CityMatch{{Name: "Paris", Country: "France"}}},
		history:  history,
	})

	resp, _ := doRequest(t, app, http.MethodGet, "/api/v1/weather/city?name=paris")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Paris, France"}, history.entries)
}

func TestGetCityWeatherNotFound(t *testing.T) {
	app := newTestApp(appOptions{geocoder: &stubGeocoder{}})

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/weather/city?name=Atlantis")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "City not found.", body["error"])
}

func TestGetForecast(t *testing.T) {
	app := newTestApp(appOptions{
		forecast: &stubForecast{days: []models.ForecastDay{
			{Date: "2025-05-15", MaxTempC: 18.1, MinTempC: 9.3, ConditionCode: 95, Precipitation: 80},
		}},
	})

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/weather/forecast?lat=53.3&lon=-6.2&days=3")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	days := body["days"].([]any)
	require.Len(t, days, 1)
	day := days[0].(map[string]any)
	assert.Equal(t, "2025-05-15", day["date"])
	assert.Equal(t, "thunderstorm", day["symbol"])
}

func TestGetForecastInvalidDays(t *testing.T) {
	app := newTestApp(appOptions{})

	for _, days := range []string{"0", "8", "abc"} {
		resp, _ := doRequest(t, app, http.MethodGet, "/api/v1/weather/forecast?lat=1&lon=2&days="+days)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "days=%s", days)
	}
}

func TestSuggestCities(t *testing.T) {
	app := newTestApp(appOptions{
		geocoder: &stubGeocoder{matches: []models.CityMatch{
			{Name: "Dublin", Country: "Ireland"},
		}},
	})

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/cities/suggest?q=Dub")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"Dublin, Ireland"}, body["suggestions"])
}

func TestSuggestCitiesEmptyQuery(t *testing.T) {
	app := newTestApp(appOptions{})

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/cities/suggest")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{}, body["suggestions"])
}

func TestHistoryEndpoints(t *testing.T) {
	history := &stubHistory{entries: []string{"Paris, France", "Dublin, Ireland"}}
	app := newTestApp(appOptions{history: history})

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/history")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"Paris, France", "Dublin, Ireland"}, body["history"])

	resp, _ = doRequest(t, app, http.MethodDelete, "/api/v1/history")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doRequest(t, app, http.MethodGet, "/api/v1/history")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["history"])
}

func TestUnknownEndpoint(t *testing.T) {
	app := newTestApp(appOptions{})

	resp, _ := doRequest(t, app, http.MethodGet, "/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
