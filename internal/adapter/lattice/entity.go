package lattice

import (
	"time"

	"github.com/couchcryptid/metar-entity-sync/internal/domain"
)

const (
	integrationName = "metar_weather_integration"
	dataType        = "aviation_weather"
	platformType    = "WEATHER_STATION"
	templatePOI     = "TEMPLATE_SENSOR_POINT_OF_INTEREST"
	environmentAir  = "ENVIRONMENT_AIR"
)

// Lattice entity wire types. Only the components this integration sets are modeled.

type wireEntity struct {
	EntityID    string     `json:"entityId"`
	Description string     `json:"description"`
	IsLive      bool       `json:"isLive"`
	CreatedTime time.Time  `json:"createdTime"`
	ExpiryTime  time.Time  `json:"expiryTime"`
	Aliases     aliases    `json:"aliases"`
	Location    location   `json:"location"`
	MilView     milView    `json:"milView"`
	Ontology    ontology   `json:"ontology"`
	Health      health     `json:"health"`
	Provenance  provenance `json:"provenance"`
}

type aliases struct {
	Name string `json:"name"`
}

type location struct {
	Position position `json:"position"`
}

type position struct {
	LatitudeDegrees   float64 `json:"latitudeDegrees"`
	LongitudeDegrees  float64 `json:"longitudeDegrees"`
	AltitudeHaeMeters float64 `json:"altitudeHaeMeters"`
}

type milView struct {
	Disposition string `json:"disposition"`
	Environment string `json:"environment"`
}

type ontology struct {
	Template     string `json:"template"`
	PlatformType string `json:"platformType"`
}

type health struct {
	HealthStatus string      `json:"healthStatus"`
	Components   []component `json:"components"`
	UpdateTime   time.Time   `json:"updateTime"`
}

type component struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Health   string    `json:"health"`
	Messages []message `json:"messages"`
}

type message struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type provenance struct {
	IntegrationName  string    `json:"integrationName"`
	DataType         string    `json:"dataType"`
	SourceUpdateTime time.Time `json:"sourceUpdateTime"`
}

func toWire(e domain.StationEntity) wireEntity {
	components := make([]component, 0, len(e.Components))
	for _, c := range e.Components {
		status := healthStatus(c.Health)
		components = append(components, component{
			ID:       c.ID,
			Name:     c.Name,
			Health:   status,
			Messages: []message{{Status: status, Message: c.Message}},
		})
	}

	return wireEntity{
		EntityID:    e.EntityID,
		Description: e.Description,
		IsLive:      e.IsLive,
		CreatedTime: e.CreatedAt,
		ExpiryTime:  e.ExpiresAt,
		Aliases:     aliases{Name: e.Name},
		Location: location{Position: position{
			LatitudeDegrees:  e.Lat,
			LongitudeDegrees: e.Lon,
		}},
		MilView: milView{
			Disposition: "DISPOSITION_" + string(e.Disposition),
			Environment: environmentAir,
		},
		Ontology: ontology{Template: templatePOI, PlatformType: platformType},
		Health: health{
			HealthStatus: healthStatus(e.Health),
			Components:   components,
			UpdateTime:   e.CreatedAt,
		},
		Provenance: provenance{
			IntegrationName:  integrationName,
			DataType:         dataType,
			SourceUpdateTime: e.CreatedAt,
		},
	}
}

// healthStatus maps a band onto the Lattice enum, which calls ERROR "FAIL".
func healthStatus(b domain.HealthBand) string {
	switch b {
	case domain.BandHealthy:
		return "HEALTH_STATUS_HEALTHY"
	case domain.BandWarn:
		return "HEALTH_STATUS_WARN"
	case domain.BandError:
		return "HEALTH_STATUS_FAIL"
	default:
		return "HEALTH_STATUS_OFFLINE"
	}
}
