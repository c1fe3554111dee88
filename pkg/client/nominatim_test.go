package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/alutech/weather-service/internal/models"
)

func TestNominatimPlaceName(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"address":{"city":"Dublin","country":"Ireland"}}`))
	}))
	defer server.Close()

	c := NewNominatimClient(server.URL, "weather-service-test/1.0", testClientConfig(), zap.NewNop())
	place := c.PlaceName(context.Background(), models.Coordinates{Latitude: 53.3498, Longitude: -6.2603})

	assert.Equal(t, "weather-service-test/1.0", gotUA)
	assert.Equal(t, "Dublin, Ireland", place.Display())
}

func TestNominatimPlaceNameFallbackChain(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"address":{"village":"Doolin","country":"Ireland"}}`))
	}))
	defer server.Close()

	c := NewNominatimClient(server.URL, "ua", testClientConfig(), zap.NewNop())
	place := c.PlaceName(context.Background(), models.Coordinates{})
	assert.Equal(t, "Doolin", place.City)
}

func TestNominatimNeverFailsOutward(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		close   bool
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name:    "connection refused",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			close:   true,
		},
		{
			name: "empty address",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"address":{}}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			if tt.close {
				server.Close()
			} else {
				defer server.Close()
			}

			c := NewNominatimClient(server.URL, "ua", testClientConfig(), zap.NewNop())
			place := c.PlaceName(context.Background(), models.Coordinates{})
			assert.Equal(t, models.UnknownPlace(), place)
		})
	}
}
