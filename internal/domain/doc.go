// Package domain models airport weather observations and the entity records
// published for them.
//
// # Data Source
//
// Observations come from METAR reports published by the Aviation Weather
// Center (https://aviationweather.gov/api/data/metar). The upstream adapter
// maps the already-decoded JSON fields onto [Observation]; this package never
// parses raw METAR text.
//
// # Flight Categories
//
// Flight categories follow the FAA definitions, evaluated most severe first.
// Either dimension alone can downgrade the category:
//
//	LIFR: ceiling < 500 ft  or visibility < 1 SM
//	IFR:  ceiling < 1000 ft or visibility < 3 SM
//	MVFR: ceiling < 3000 ft or visibility < 5 SM
//	VFR:  everything else
//
// Ceiling is the base of the lowest broken (BKN) or overcast (OVC) layer.
// A report without a ceiling is treated as 10,000 ft, and a report without
// visibility as 10 SM. A value sitting exactly on a threshold falls into the
// less severe band.
//
// # Health Bands
//
// Each published entity carries one health component per evaluated parameter
// (flight condition, temperature, wind speed, visibility). The bands are
// independent per parameter:
//
//	Flight condition: VFR healthy | MVFR warn | IFR, LIFR error
//	Temperature (°C): <= -20 or >= 40 error | <= -10 or >= 35 warn
//	Wind speed (kt):  > 30 error | > 15 warn
//	Visibility (SM):  < 1 error | < 5 warn
//
// A parameter missing from the report produces no component. OFFLINE is
// reserved for an evaluator asked to band an absent value.
//
// # Disposition
//
// Disposition is a pure function of the flight category: VFR is assumed
// friendly, MVFR suspicious, and anything else hostile, including category
// values this package does not know about.
//
// # Entity Identity
//
// Entity IDs are derived from the station identifier alone
// ("weather-kbos"). Every cycle republishes over the same entity, so the
// directory holds one record per station and the TTL only retires stations
// that stop reporting. See [EntityID].
package domain
