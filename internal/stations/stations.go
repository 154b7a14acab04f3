// Package stations loads the static reference table of monitored airports.
package stations

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/couchcryptid/metar-entity-sync/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed stations.yaml
var defaultStations []byte

type document struct {
	Stations []domain.Station `yaml:"stations"`
}

// Default returns the built-in New England station table.
func Default() (domain.StationTable, error) {
	return Parse(defaultStations)
}

// Load returns the table from path, or the built-in table when path is empty.
func Load(path string) (domain.StationTable, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.StationTable{}, fmt.Errorf("read stations file: %w", err)
	}
	table, err := Parse(raw)
	if err != nil {
		return domain.StationTable{}, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// Parse decodes a YAML station document into a validated table.
func Parse(raw []byte) (domain.StationTable, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return domain.StationTable{}, fmt.Errorf("parse stations: %w", err)
	}
	return domain.NewStationTable(doc.Stations)
}
