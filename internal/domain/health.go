package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// HealthBand is the status level of one health component.
type HealthBand string

const (
	BandHealthy HealthBand = "HEALTHY"
	BandWarn    HealthBand = "WARN"
	BandError   HealthBand = "ERROR"
	BandOffline HealthBand = "OFFLINE"
)

// ParseHealthBand reads a band name, accepting FAIL and UNKNOWN as synonyms
// for ERROR and OFFLINE. It reports false for anything else.
func ParseHealthBand(s string) (HealthBand, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HEALTHY":
		return BandHealthy, true
	case "WARN", "WARNING":
		return BandWarn, true
	case "ERROR", "FAIL":
		return BandError, true
	case "OFFLINE", "UNKNOWN":
		return BandOffline, true
	default:
		return "", false
	}
}

// UnmarshalJSON decodes a band through ParseHealthBand, so entities read back
// from a mirror or a saved file accept the synonyms too.
func (b *HealthBand) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	band, ok := ParseHealthBand(s)
	if !ok {
		return fmt.Errorf("unknown health band %q", s)
	}
	*b = band
	return nil
}

// CategoryHealth bands a flight category. An empty category is OFFLINE and an
// unrecognized one is ERROR.
func CategoryHealth(category FlightCategory) HealthBand {
	switch category {
	case "":
		return BandOffline
	case VFR:
		return BandHealthy
	case MVFR:
		return BandWarn
	default:
		return BandError
	}
}

// TemperatureHealth bands a temperature in °C. The limits are inclusive:
// exactly -20 or 40 is ERROR, and exactly -10 or 35 is WARN.
func TemperatureHealth(tempC *float64) HealthBand {
	if tempC == nil {
		return BandOffline
	}
	t := *tempC
	switch {
	case t <= -20 || t >= 40:
		return BandError
	case t <= -10 || t >= 35:
		return BandWarn
	default:
		return BandHealthy
	}
}

// WindSpeedHealth bands a sustained wind speed in knots.
func WindSpeedHealth(speedKt *float64) HealthBand {
	if speedKt == nil {
		return BandOffline
	}
	switch s := *speedKt; {
	case s > 30:
		return BandError
	case s > 15:
		return BandWarn
	default:
		return BandHealthy
	}
}

// VisibilityHealth bands a visibility in statute miles.
func VisibilityHealth(visibilitySM *float64) HealthBand {
	if visibilitySM == nil {
		return BandOffline
	}
	switch v := *visibilitySM; {
	case v < 1:
		return BandError
	case v < 5:
		return BandWarn
	default:
		return BandHealthy
	}
}

// CelsiusToFahrenheit converts a temperature from °C to °F.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}
