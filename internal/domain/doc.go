// Package domain models storm best-track observations extracted from
// KMZ/KML best-track files.
//
// # Data Source
//
// Best-track KMZ archives (e.g. the JTWC "besttracks" bundles) contain a
// single KML document describing one storm season as a series of Placemark
// elements. Each Placemark carries a Point geometry ("lon,lat[,alt]") and
// a description blob: an HTML table fragment embedded as text, not as
// structured XML children.
//
// # Description Field Conventions
//
// Fields are rendered as label/value table cells inside the description:
//
//	DTG:       date-time-group, fixed-width "YYYYMMDDHHZ" (11 chars),
//	           whole-hour resolution, always UTC. "2020112512Z" = 2020-11-25 12:00Z.
//	Intensity: sustained wind in knots, bare integer. Missing or
//	           non-numeric values (e.g. "N/A") mean "not reported".
//	MSLP:      minimum sea-level pressure in millibars, integer with an
//	           optional " mb" unit suffix.
//
// A Placemark becomes a stored TrackPoint only when both its coordinates
// and its DTG parse; wind and pressure are independently optional and are
// nil when absent. Points with coordinates but no DTG are logged and
// dropped, never stored partially.
//
// # Persistence
//
// One TrackPoint per document. Timestamps are persisted as fixed-layout
// strings ("2006-01-02T15:04:05Z") so that lexicographic order in the
// store equals chronological order, which the range and nearest-before
// queries rely on. The location field holds a GeoJSON Point and backs the
// collection's 2dsphere index.
package domain
