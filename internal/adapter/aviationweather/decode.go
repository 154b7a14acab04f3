package aviationweather

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/metar-entity-sync/internal/domain"
)

// DecodeObservations maps a METAR API JSON array onto the requested stations.
// When a station has several reports the newest one wins. Requested stations
// without a report get domain.ErrNoObservation; entries that cannot be decoded
// get domain.ErrMalformedObservation. Only a body that is not a JSON array is
// an error for the whole batch.
func DecodeObservations(body []byte, stationIDs []string) (map[string]domain.ObservationResult, error) {
	results := make(map[string]domain.ObservationResult, len(stationIDs))
	wanted := make(map[string]bool, len(stationIDs))
	for _, id := range stationIDs {
		id = strings.ToUpper(strings.TrimSpace(id))
		wanted[id] = true
		results[id] = domain.ObservationResult{Err: domain.ErrNoObservation}
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return results, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrCycleFetch, err)
	}

	for _, raw := range entries {
		var head struct {
			IcaoID string `json:"icaoId"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			continue
		}
		id := strings.ToUpper(strings.TrimSpace(head.IcaoID))
		if !wanted[id] {
			continue
		}

		obs, err := decodeEntry(raw)
		if err != nil {
			// A good report for the station already seen takes precedence.
			if results[id].Observation == nil {
				results[id] = domain.ObservationResult{Err: fmt.Errorf("%w: %s: %w", domain.ErrMalformedObservation, id, err)}
			}
			continue
		}
		obs.StationID = id

		if prev := results[id].Observation; prev != nil && !obs.ObservedAt.After(prev.ObservedAt) {
			continue
		}
		results[id] = domain.ObservationResult{Observation: &obs}
	}

	return results, nil
}

// METAR API response types.

type metarEntry struct {
	IcaoID    string      `json:"icaoId"`
	ObsTime   *int64      `json:"obsTime"` // unix seconds
	ReportAt  string      `json:"reportTime"`
	Temp      flexNumber  `json:"temp"`
	Dewp      flexNumber  `json:"dewp"`
	Wdir      flexNumber  `json:"wdir"` // may be "VRB"
	Wspd      flexNumber  `json:"wspd"`
	Wgst      flexNumber  `json:"wgst"`
	Visib     flexNumber  `json:"visib"` // may be "10+"
	Altim     flexNumber  `json:"altim"` // hPa
	RawOb     string      `json:"rawOb"`
	Clouds    []cloudBase `json:"clouds"`
}

type cloudBase struct {
	Cover string     `json:"cover"`
	Base  flexNumber `json:"base"` // feet AGL
}

func decodeEntry(raw json.RawMessage) (domain.Observation, error) {
	var e metarEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return domain.Observation{}, err
	}

	obs := domain.Observation{
		TemperatureC: e.Temp.value,
		DewpointC:    e.Dewp.value,
		WindSpeedKt:  e.Wspd.value,
		WindGustKt:   e.Wgst.value,
		VisibilitySM: e.Visib.value,
		AltimeterHPa: e.Altim.value,
		RawReport:    strings.TrimSpace(e.RawOb),
		CeilingFt:    ceiling(e.Clouds),
	}
	if e.Wdir.value != nil {
		dir := int(*e.Wdir.value)
		obs.WindDirection = &dir
	}

	switch {
	case e.ObsTime != nil:
		obs.ObservedAt = time.Unix(*e.ObsTime, 0).UTC()
	case e.ReportAt != "":
		t, err := parseReportTime(e.ReportAt)
		if err != nil {
			return domain.Observation{}, fmt.Errorf("reportTime: %w", err)
		}
		obs.ObservedAt = t
	}

	return obs, nil
}

// ceiling is the base of the lowest broken or overcast layer, nil when there is none.
func ceiling(layers []cloudBase) *int {
	var lowest *int
	for _, l := range layers {
		cover := strings.ToUpper(l.Cover)
		if (cover != "BKN" && cover != "OVC") || l.Base.value == nil {
			continue
		}
		base := int(*l.Base.value)
		if lowest == nil || base < *lowest {
			lowest = &base
		}
	}
	return lowest
}

func parseReportTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05.000Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// flexNumber accepts a JSON number, a numeric string, or a numeric string
// with a trailing "+" ("10+"). "VRB" and null decode to no value.
type flexNumber struct {
	value *float64
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		n.value = nil
		return nil
	}

	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}

	s = strings.TrimSuffix(strings.TrimSpace(s), "+")
	if s == "" || strings.EqualFold(s, "VRB") {
		n.value = nil
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", data)
	}
	n.value = &v
	return nil
}
