package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/alutech/weather-service/internal/models"
	"github.com/alutech/weather-service/internal/services"
	"github.com/alutech/weather-service/internal/symbol"
)

type Handler struct {
	service   *services.Service
	suggester *services.Suggester
	logger    *zap.Logger
}

func NewHandler(service *services.Service, suggester *services.Suggester, logger *zap.Logger) *Handler {
	return &Handler{
		service:   service,
		suggester: suggester,
		logger:    logger,
	}
}

// GetCurrentWeather handles GET /api/v1/weather/current?lat=&lon=
func (h *Handler) GetCurrentWeather(c *fiber.Ctx) error {
	coords, err := parseCoords(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	h.logger.Info("Fetching current weather",
		zap.Float64("lat", coords.Latitude),
		zap.Float64("lon", coords.Longitude))

	result, err := h.service.LocalWeather(c.Context(), coords)
	if err != nil {
		return h.fetchError(c, err)
	}

	return c.JSON(weatherResponse(result))
}

// GetCityWeather handles GET /api/v1/weather/city?name=
func (h *Handler) GetCityWeather(c *fiber.Ctx) error {
	name := c.Query("name")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name parameter is required",
		})
	}

	h.logger.Info("Fetching weather by city", zap.String("name", name))

	result, err := h.service.CityWeather(c.Context(), name)
	if err != nil {
		return h.fetchError(c, err)
	}

	return c.JSON(weatherResponse(result))
}

// GetForecast handles GET /api/v1/weather/forecast?lat=&lon=&days=
func (h *Handler) GetForecast(c *fiber.Ctx) error {
	coords, err := parseCoords(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	daysStr := c.Query("days", "5")
	days, err := strconv.Atoi(daysStr)
	if err != nil || days < 1 || days > 7 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Days parameter must be between 1 and 7",
		})
	}

	h.logger.Info("Fetching forecast",
		zap.Float64("lat", coords.Latitude),
		zap.Float64("lon", coords.Longitude),
		zap.Int("days", days))

	forecast, err := h.service.Forecast(c.Context(), coords, days)
	if err != nil {
		return h.fetchError(c, err)
	}

	daysOut := make([]fiber.Map, 0, len(forecast))
	for _, day := range forecast {
		daysOut = append(daysOut, fiber.Map{
			"date":                              day.Date,
			"max_temp_c":                        day.MaxTempC,
			"min_temp_c":                        day.MinTempC,
			"condition_code":                    day.ConditionCode,
			"precipitation_probability_percent": day.Precipitation,
			"symbol":                            symbol.For(models.ProviderOpenMeteo, day.ConditionCode),
		})
	}

	return c.JSON(fiber.Map{"days": daysOut})
}

// SuggestCities handles GET /api/v1/cities/suggest?q=
func (h *Handler) SuggestCities(c *fiber.Ctx) error {
	query := c.Query("q")

	suggestions, err := h.suggester.Suggest(c.Context(), query)
	if err != nil {
		if errors.Is(err, services.ErrSuperseded) {
			// A newer keystroke owns the suggestion box now.
			return c.SendStatus(fiber.StatusNoContent)
		}
		return h.fetchError(c, err)
	}

	return c.JSON(fiber.Map{"suggestions": suggestions})
}

// GetHistory handles GET /api/v1/history
func (h *Handler) GetHistory(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"history": h.service.History()})
}

// ClearHistory handles DELETE /api/v1/history
func (h *Handler) ClearHistory(c *fiber.Ctx) error {
	if err := h.service.ClearHistory(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to clear history",
		})
	}
	return c.JSON(fiber.Map{"history": []string{}})
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
	})
}

func (h *Handler) fetchError(c *fiber.Ctx, err error) error {
	h.logger.Error("Lookup failed",
		zap.String("path", c.Path()),
		zap.Error(err))

	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrCityNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, models.ErrWeatherUnavailable),
		errors.Is(err, models.ErrForecastUnavailable),
		errors.Is(err, models.ErrNetwork):
		status = fiber.StatusBadGateway
	}

	return c.Status(status).JSON(fiber.Map{
		"error": userMessage(err),
	})
}

// userMessage keeps the surfaced text short; details stay in the logs.
func userMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrCityNotFound):
		return "City not found."
	case errors.Is(err, models.ErrWeatherUnavailable):
		return "Weather data unavailable."
	case errors.Is(err, models.ErrForecastUnavailable):
		return "Forecast data unavailable."
	case errors.Is(err, models.ErrNetwork):
		return "Failed to reach the weather providers."
	default:
		return "Failed to fetch weather data."
	}
}

func weatherResponse(result services.CityWeatherResult) fiber.Map {
	resp := fiber.Map{
		"place":   result.Place,
		"coords":  result.Coords,
		"reading": result.Reading,
	}
	if result.Reading.ConditionCode != nil {
		resp["symbol"] = symbol.For(result.Reading.Source, *result.Reading.ConditionCode)
	} else {
		resp["symbol"] = symbol.Unknown
	}
	return resp
}

func parseCoords(c *fiber.Ctx) (models.Coordinates, error) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return models.Coordinates{}, errors.New("Lat parameter is required and must be a number")
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		return models.Coordinates{}, errors.New("Lon parameter is required and must be a number")
	}
	return models.Coordinates{Latitude: lat, Longitude: lon}, nil
}

var startTime = time.Now()
