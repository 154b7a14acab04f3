package domain

// FlightCategory is the FAA flight-rules category derived from visibility and ceiling.
type FlightCategory string

const (
	VFR  FlightCategory = "VFR"
	MVFR FlightCategory = "MVFR"
	IFR  FlightCategory = "IFR"
	LIFR FlightCategory = "LIFR"
)

// FlightCategories lists every category from best to worst.
var FlightCategories = []FlightCategory{VFR, MVFR, IFR, LIFR}

const (
	// DefaultVisibilitySM stands in for a report without visibility.
	DefaultVisibilitySM = 10.0
	// UnlimitedCeilingFt stands in for a report without a BKN/OVC layer.
	UnlimitedCeilingFt = 10000
)

// Disposition is the threat classification attached to a published entity.
type Disposition string

const (
	AssumedFriendly Disposition = "ASSUMED_FRIENDLY"
	Suspicious      Disposition = "SUSPICIOUS"
	Hostile         Disposition = "HOSTILE"
)

// ClassifyFlightCategory determines the flight category for a visibility in
// statute miles and a ceiling in feet AGL. Thresholds are strict, so a value
// exactly on a boundary lands in the less severe category. Negative inputs are
// not rejected; they compare below every threshold and classify as LIFR.
func ClassifyFlightCategory(visibilitySM float64, ceilingFt int) FlightCategory {
	switch {
	case ceilingFt < 500 || visibilitySM < 1:
		return LIFR
	case ceilingFt < 1000 || visibilitySM < 3:
		return IFR
	case ceilingFt < 3000 || visibilitySM < 5:
		return MVFR
	default:
		return VFR
	}
}

// ClassifyObservation applies ClassifyFlightCategory to an observation,
// substituting the defaults for missing visibility and ceiling.
func ClassifyObservation(obs Observation) FlightCategory {
	visibility := DefaultVisibilitySM
	if obs.VisibilitySM != nil {
		visibility = *obs.VisibilitySM
	}
	ceiling := UnlimitedCeilingFt
	if obs.CeilingFt != nil {
		ceiling = *obs.CeilingFt
	}
	return ClassifyFlightCategory(visibility, ceiling)
}

// DispositionFor maps a flight category to a disposition. Anything that is
// not VFR or MVFR, including unknown values, is hostile.
func DispositionFor(category FlightCategory) Disposition {
	switch category {
	case VFR:
		return AssumedFriendly
	case MVFR:
		return Suspicious
	default:
		return Hostile
	}
}
