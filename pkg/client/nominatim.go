package client

import (
	"context"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/alutech/weather-service/internal/models"
)

// NominatimClient reverse-geocodes coordinates to a place name. Place-name
// display is non-essential to showing weather, so lookup failures never
// propagate: the caller always gets a usable PlaceName, possibly the Unknown
// sentinels.
type NominatimClient struct {
	*BaseClient
	baseURL   string
	userAgent string
}

type nominatimReverseResponse struct {
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		Hamlet  string `json:"hamlet"`
		County  string `json:"county"`
		Country string `json:"country"`
	} `json:"address"`
}

func NewNominatimClient(baseURL, userAgent string, config ClientConfig, logger *zap.Logger) *NominatimClient {
	baseClient := NewBaseClient("nominatim", config, logger)
	return &NominatimClient{
		BaseClient: baseClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
	}
}

// PlaceName resolves coordinates to a city/country pair.
func (c *NominatimClient) PlaceName(ctx context.Context, coords models.Coordinates) models.PlaceName {
	reqURL := fmt.Sprintf("%s/reverse?format=json&lat=%.4f&lon=%.4f",
		c.baseURL, coords.Latitude, coords.Longitude)

	// Nominatim's usage policy requires an identifying User-Agent.
	header := http.Header{}
	header.Set("User-Agent", c.userAgent)

	result, err := c.Get(ctx, reqURL, header)
	if err != nil {
		c.logger.Warn("Reverse geocoding failed", zap.Error(err))
		return models.UnknownPlace()
	}

	if result.StatusCode != http.StatusOK {
		c.logger.Warn("Reverse geocoding returned non-OK status",
			zap.Int("status", result.StatusCode))
		return models.UnknownPlace()
	}

	var response nominatimReverseResponse
	if err := json.Unmarshal(result.Body, &response); err != nil {
		c.logger.Warn("Reverse geocoding response unparseable", zap.Error(err))
		return models.UnknownPlace()
	}

	addr := response.Address
	city := firstNonEmpty(addr.City, addr.Town, addr.Village, addr.Hamlet, addr.County)
	if city == "" {
		city = models.UnknownCity
	}
	country := addr.Country
	if country == "" {
		country = models.UnknownCountry
	}

	return models.PlaceName{City: city, Country: country}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
