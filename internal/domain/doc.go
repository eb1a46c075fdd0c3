// Package domain models EnergyPlus weather file (EPW) station metadata.
//
// # Data Source
//
// The EnergyPlus weather dataset publishes a GeoJSON index (master.geojson)
// with one feature per weather file. Each feature's "epw" property carries the
// download link, usually wrapped in an HTML anchor:
//
//	<a href=https://energyplus-weather.s3.amazonaws.com/.../USA_CA_Paso.Robles.723965_TMY3.epw>Download Weather File</a>
//
// Bare URLs are accepted too. Relative hrefs resolve against the index URL.
// See [FeatureURL].
//
// # EPW Header Conventions
//
// The first line of an EPW file is the LOCATION record:
//
//	LOCATION,Paso Robles Municipal Arpt,CA,USA,TMY3,723965,35.67,-120.63,-8.0,244.0
//
// Positional fields after the marker: name, region (state/province), country,
// source type, WMO index, latitude (N+), longitude (E+), time zone offset in
// hours from UTC, and elevation in metres. Anything after elevation is ignored.
// Other header lines (DESIGN CONDITIONS, TYPICAL/EXTREME PERIODS, COMMENTS 1,
// ...) follow and are skipped by [ParseLocationLine].
//
// Source data conventions:
//
//	Region "-" (or any placeholder shorter than two characters) means none.
//	Station names are upper case in most files; they are title-cased.
//	Source types carry suffixes such as "IWEC Data" or "TMY2-23232"; only the
//	leading alphanumeric token is kept, see [CleanSourceType].
//
// # Encoding
//
// Headers come from many regional producers. Most are ASCII or UTF-8, some are
// Latin-1. [DecodeHeader] tries strict UTF-8 first and falls back to
// ISO-8859-1, which accepts any byte sequence, so decoding never fails.
//
// # Deduplication
//
// Several files can describe the same station (for example TMY2 and TMY3
// releases for WMO 725300). [LocationStore] keeps one record per WMO index:
// the one with the highest source-type rank in the [PriorityTable], with the
// earliest-seen record winning ties. Output order is the order in which each
// WMO index was first seen.
package domain
