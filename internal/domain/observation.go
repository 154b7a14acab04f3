package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrCycleFetch marks a failure that prevented fetching any observations
	// for a cycle, e.g. the upstream API being unreachable.
	ErrCycleFetch = errors.New("observation fetch failed")

	// ErrNoObservation means the upstream returned nothing for a station.
	ErrNoObservation = errors.New("no observation for station")

	// ErrMalformedObservation means the upstream entry for a station could not be decoded.
	ErrMalformedObservation = errors.New("malformed observation")
)

// Observation is one station's weather snapshot as reported by the upstream
// source. Optional measurements are nil when the report omits them.
type Observation struct {
	StationID     string    `json:"station_id"`
	TemperatureC  *float64  `json:"temperature_c,omitempty"`
	DewpointC     *float64  `json:"dewpoint_c,omitempty"`
	WindDirection *int      `json:"wind_direction,omitempty"` // degrees true; nil when variable
	WindSpeedKt   *float64  `json:"wind_speed_kt,omitempty"`
	WindGustKt    *float64  `json:"wind_gust_kt,omitempty"`
	VisibilitySM  *float64  `json:"visibility_sm,omitempty"`
	CeilingFt     *int      `json:"ceiling_ft,omitempty"` // lowest BKN/OVC base, AGL
	AltimeterHPa  *float64  `json:"altimeter_hpa,omitempty"`
	RawReport     string    `json:"raw_report,omitempty"`
	ObservedAt    time.Time `json:"observed_at"`
}

// ObservationResult is the per-station outcome of a fetch: either an
// observation or the reason there is none.
type ObservationResult struct {
	Observation *Observation
	Err         error
}

// PublishError describes a failed attempt to publish one station's entity.
type PublishError struct {
	StationID  string
	EntityID   string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *PublishError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("publish %s (%s): status %d: %v", e.EntityID, e.StationID, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("publish %s (%s): %v", e.EntityID, e.StationID, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }
