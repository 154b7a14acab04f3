package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Station is the static reference data for one monitored airport.
type Station struct {
	ID    string  `yaml:"id" json:"id"` // ICAO identifier, e.g. "KBOS"
	Name  string  `yaml:"name" json:"name"`
	City  string  `yaml:"city" json:"city"`
	State string  `yaml:"state" json:"state"`
	Lat   float64 `yaml:"lat" json:"lat"`
	Lon   float64 `yaml:"lon" json:"lon"`
}

// StationTable is an immutable lookup of stations by identifier. It is built
// once at startup and shared read-only.
type StationTable struct {
	byID map[string]Station
	ids  []string
}

// NewStationTable validates the stations and builds a table keyed by their
// upper-cased identifiers.
func NewStationTable(stations []Station) (StationTable, error) {
	if len(stations) == 0 {
		return StationTable{}, errors.New("station table is empty")
	}

	byID := make(map[string]Station, len(stations))
	ids := make([]string, 0, len(stations))
	for i, s := range stations {
		s.ID = strings.ToUpper(strings.TrimSpace(s.ID))
		if s.ID == "" {
			return StationTable{}, fmt.Errorf("station %d: id is required", i)
		}
		if _, dup := byID[s.ID]; dup {
			return StationTable{}, fmt.Errorf("station %s: duplicate id", s.ID)
		}
		if s.Lat < -90 || s.Lat > 90 || s.Lon < -180 || s.Lon > 180 {
			return StationTable{}, fmt.Errorf("station %s: coordinates out of range (%f, %f)", s.ID, s.Lat, s.Lon)
		}
		if s.Name == "" {
			s.Name = s.ID
		}
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}
	sort.Strings(ids)

	return StationTable{byID: byID, ids: ids}, nil
}

// Get returns the station for an identifier, case-insensitively.
func (t StationTable) Get(id string) (Station, bool) {
	s, ok := t.byID[strings.ToUpper(strings.TrimSpace(id))]
	return s, ok
}

// IDs returns the station identifiers in sorted order. The slice is a copy.
func (t StationTable) IDs() []string {
	out := make([]string, len(t.ids))
	copy(out, t.ids)
	return out
}

// Len reports the number of stations.
func (t StationTable) Len() int { return len(t.ids) }
