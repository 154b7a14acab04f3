package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultEntityTTL is how long a published entity stays live without a refresh.
const DefaultEntityTTL = 2 * time.Hour

// Health component sub-identifiers, appended to the station ID.
const (
	ComponentFlightCondition = "flight_condition"
	ComponentTemperature     = "temperature"
	ComponentWindSpeed       = "wind_speed"
	ComponentVisibility      = "visibility"
)

// HealthComponent is the status of one evaluated weather parameter.
type HealthComponent struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Health  HealthBand `json:"health"`
	Message string     `json:"message"`
}

// StationEntity is the record published to the entity directory for one
// station in one cycle. It is built once by Synthesize and never modified.
type StationEntity struct {
	EntityID       string            `json:"entity_id"`
	StationID      string            `json:"station_id"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Lat            float64           `json:"lat"`
	Lon            float64           `json:"lon"`
	FlightCategory FlightCategory    `json:"flight_category"`
	Disposition    Disposition       `json:"disposition"`
	Health         HealthBand        `json:"health"`
	Components     []HealthComponent `json:"components"`
	CreatedAt      time.Time         `json:"created_at"`
	ExpiresAt      time.Time         `json:"expires_at"`
	IsLive         bool              `json:"is_live"`
	ObservedAt     time.Time         `json:"observed_at"`
	RawReport      string            `json:"raw_report,omitempty"`
}

// EntityID returns the stable entity identifier for a station, so each cycle
// overwrites the previous record instead of creating a new one.
func EntityID(stationID string) string {
	return "weather-" + strings.ToLower(strings.TrimSpace(stationID))
}

// Synthesize builds the entity for a station from its current observation.
// now becomes the creation time and now+ttl the expiry. Coordinates always
// come from the station reference. A non-positive ttl uses DefaultEntityTTL.
func Synthesize(station Station, obs Observation, now time.Time, ttl time.Duration) StationEntity {
	if ttl <= 0 {
		ttl = DefaultEntityTTL
	}
	category := ClassifyObservation(obs)
	name := fmt.Sprintf("%s (%s)", station.Name, station.ID)

	return StationEntity{
		EntityID:       EntityID(station.ID),
		StationID:      station.ID,
		Name:           name,
		Description:    describe(name, station, obs, category),
		Lat:            station.Lat,
		Lon:            station.Lon,
		FlightCategory: category,
		Disposition:    DispositionFor(category),
		Health:         CategoryHealth(category),
		Components:     healthComponents(station.ID, obs, category),
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
		IsLive:         true,
		ObservedAt:     obs.ObservedAt,
		RawReport:      obs.RawReport,
	}
}

// SynthesizeNow is Synthesize stamped with the package clock.
func SynthesizeNow(station Station, obs Observation, ttl time.Duration) StationEntity {
	return Synthesize(station, obs, clock.Now().UTC(), ttl)
}

// healthComponents evaluates every parameter present in the observation, in a
// fixed order. The flight condition is always present.
func healthComponents(stationID string, obs Observation, category FlightCategory) []HealthComponent {
	components := make([]HealthComponent, 0, 4)
	components = append(components, HealthComponent{
		ID:      componentID(stationID, ComponentFlightCondition),
		Name:    "Flight Condition",
		Health:  CategoryHealth(category),
		Message: "Current flight condition: " + string(category),
	})

	if obs.TemperatureC != nil {
		c := *obs.TemperatureC
		components = append(components, HealthComponent{
			ID:      componentID(stationID, ComponentTemperature),
			Name:    "Temperature",
			Health:  TemperatureHealth(obs.TemperatureC),
			Message: fmt.Sprintf("Current temperature: %.1f°C (%.1f°F)", c, CelsiusToFahrenheit(c)),
		})
	}

	if obs.WindSpeedKt != nil {
		components = append(components, HealthComponent{
			ID:      componentID(stationID, ComponentWindSpeed),
			Name:    "Wind Speed",
			Health:  WindSpeedHealth(obs.WindSpeedKt),
			Message: fmt.Sprintf("Current wind speed: %s knots", formatNumber(*obs.WindSpeedKt)),
		})
	}

	if obs.VisibilitySM != nil {
		components = append(components, HealthComponent{
			ID:      componentID(stationID, ComponentVisibility),
			Name:    "Visibility",
			Health:  VisibilityHealth(obs.VisibilitySM),
			Message: fmt.Sprintf("Current visibility: %s miles", formatNumber(*obs.VisibilitySM)),
		})
	}

	return components
}

func componentID(stationID, component string) string {
	return stationID + "_" + component
}

// describe builds "<name> - <category>" followed by a " | " separated summary
// of the measurements the report carries.
func describe(name string, station Station, obs Observation, category FlightCategory) string {
	parts := []string{fmt.Sprintf("%s - %s", name, category)}

	if station.City != "" {
		location := station.City
		if station.State != "" {
			location += ", " + station.State
		}
		parts = append(parts, "Location: "+location)
	}
	if obs.TemperatureC != nil {
		c := *obs.TemperatureC
		parts = append(parts, fmt.Sprintf("Temperature: %.1f°F (%.1f°C)", CelsiusToFahrenheit(c), c))
	}
	if obs.WindSpeedKt != nil {
		direction := "VRB"
		if obs.WindDirection != nil {
			direction = strconv.Itoa(*obs.WindDirection) + "°"
		}
		parts = append(parts, fmt.Sprintf("Wind: %s at %s knots", direction, formatNumber(*obs.WindSpeedKt)))
	}
	if obs.VisibilitySM != nil {
		parts = append(parts, fmt.Sprintf("Visibility: %s miles", formatNumber(*obs.VisibilitySM)))
	}

	return strings.Join(parts, " | ")
}

// formatNumber prints a measurement without trailing zeros: 12 -> "12", 2.5 -> "2.5".
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
