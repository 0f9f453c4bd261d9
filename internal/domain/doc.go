// Package domain models a month of prayer times for one region and the signed
// payload published for it.
//
// # Data Source
//
// Each region keeps one CSV per month under data/<region>/<year>/<month>.csv.
// The files are hand-curated from the region's official timetable; one row is
// one calendar day.
//
// # CSV Conventions
//
// Header row (order does not matter, names do):
//
//	date,fajr,sunrise,dhuhr,asr_shafi,asr_hanafi,maghrib,isha
//
// date:
//
//	1-based day of the month, e.g. "7". The year and month come from the
//	invocation, never from the file.
//
// Time columns:
//
//	"HH:MM" on the local 24-hour clock of the region, e.g. "05:12" or "18:47".
//	Single-digit hours ("5:12") are accepted. The two Asr columns carry the
//	Shafi and Hanafi school variants of the same daily time point.
//
// # Time Resolution
//
// Local clock values are resolved against the IANA zone supplied at build
// time, so every instant carries the UTC offset the zone's rules dictate for
// that exact day. A clock value that does not exist on that day (the hour
// skipped by a spring-forward transition) is rejected with [ErrInvalidTime]
// rather than silently shifted. Ambiguous fall-back values resolve to one of
// the two candidate instants as chosen by the time package.
//
// The day record's date is anchored to UTC and independent of the zone, so
// offset arithmetic can never move a record onto a neighbouring day.
//
// # Integrity
//
// The sha256 field of [MonthPayload] is the hex SHA-256 of the payload
// serialized as 2-space indented JSON while sha256 itself is the empty
// string. Consumers verify by repeating that procedure; hashing the compact
// delivery bytes gives a different value. See [Seal] and [VerifyDigest].
package domain
