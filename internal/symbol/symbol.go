// Package symbol maps provider-specific numeric weather codes to display
// categories. Meteomatics reports a small symbol index while Open-Meteo uses
// WMO interpretation codes, so the caller must say where a code came from.
package symbol

import (
	"github.com/alutech/weather-service/internal/models"
)

type Category string

const (
	Clear        Category = "clear"
	PartlyCloudy Category = "partly_cloudy"
	Overcast     Category = "overcast"
	Fog          Category = "fog"
	Drizzle      Category = "drizzle"
	Rain         Category = "rain"
	FreezingRain Category = "freezing_rain"
	Snow         Category = "snow"
	Thunderstorm Category = "thunderstorm"
	Unknown      Category = "unknown"
)

// Meteomatics weather_symbol_1h:idx values. Codes 101-116 are the night
// variants of 1-16.
var meteomaticsCodes = map[int]Category{
	1:  Clear,
	2:  PartlyCloudy,
	3:  PartlyCloudy,
	4:  Overcast,
	5:  Rain,
	6:  FreezingRain,
	7:  Snow,
	8:  Rain,
	9:  Snow,
	10: Snow,
	11: Fog,
	12: Fog,
	13: FreezingRain,
	14: Thunderstorm,
	15: Drizzle,
	// WMO thunderstorm codes show up verbatim on the symbol channel.
	95: Thunderstorm,
	96: Thunderstorm,
	99: Thunderstorm,
}

// WMO weather interpretation codes as used by Open-Meteo.
var wmoCodes = map[int]Category{
	0:  Clear,
	1:  PartlyCloudy,
	2:  PartlyCloudy,
	3:  Overcast,
	45: Fog,
	48: Fog,
	51: Drizzle,
	53: Drizzle,
	55: Drizzle,
	56: FreezingRain,
	57: FreezingRain,
	61: Rain,
	63: Rain,
	65: Rain,
	66: FreezingRain,
	67: FreezingRain,
	71: Snow,
	73: Snow,
	75: Snow,
	77: Snow,
	80: Rain,
	81: Rain,
	82: Rain,
	85: Snow,
	86: Snow,
	95: Thunderstorm,
	96: Thunderstorm,
	99: Thunderstorm,
}

// For translates a condition code in the numbering scheme of the given
// provider. Unmapped codes yield Unknown rather than failing.
func For(source models.Provider, code int) Category {
	switch source {
	case models.ProviderMeteomatics:
		if code > 100 && code <= 116 {
			code -= 100
		}
		if c, ok := meteomaticsCodes[code]; ok {
			return c
		}
	case models.ProviderOpenMeteo:
		if c, ok := wmoCodes[code]; ok {
			return c
		}
	}
	return Unknown
}
