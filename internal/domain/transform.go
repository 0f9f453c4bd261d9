package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidTime reports a clock value that is malformed or does not exist
	// in the zone on that day.
	ErrInvalidTime = errors.New("invalid time")
	// ErrInvalidDay reports a day-of-month that is missing, malformed, or
	// outside the month.
	ErrInvalidDay = errors.New("invalid day")
	// ErrMissingColumn reports a CSV lacking one of the canonical columns.
	ErrMissingColumn = errors.New("missing column")
)

// instantLayout is ISO-8601 with seconds, no fractional digits, explicit offset.
const instantLayout = "2006-01-02T15:04:05-07:00"

// BuildDay maps one CSV row to a DayRecord for the requested month.
func BuildDay(req MonthRequest, row Row) (DayRecord, error) {
	for _, col := range Columns {
		if _, ok := row.Fields[col]; !ok {
			return DayRecord{}, fmt.Errorf("line %d: %w %q", row.Line, ErrMissingColumn, col)
		}
	}

	day, err := parseDay(row.Fields[ColumnDate])
	if err != nil {
		return DayRecord{}, fmt.Errorf("line %d: %w", row.Line, err)
	}
	date, err := CalendarDate(req, day)
	if err != nil {
		return DayRecord{}, fmt.Errorf("line %d: %w", row.Line, err)
	}

	// Resolve in column order so the first bad cell is the one reported.
	var times [7]string
	cols := Columns[1:]
	for i, col := range cols {
		t, err := ResolveInstant(req, day, row.Fields[col])
		if err != nil {
			return DayRecord{}, fmt.Errorf("line %d: %s: %w", row.Line, col, err)
		}
		times[i] = FormatInstant(t, req.Timezone)
	}

	return DayRecord{
		Date: date,
		Times: DayTimes{
			Fajr:    times[0],
			Sunrise: times[1],
			Dhuhr:   times[2],
			Asr: AsrTimes{
				Shafi:  times[3],
				Hanafi: times[4],
			},
			Maghrib: times[5],
			Isha:    times[6],
		},
	}, nil
}

// CalendarDate returns the UTC-anchored YYYY-MM-DD for a day of the requested month.
func CalendarDate(req MonthRequest, day int) (string, error) {
	d := time.Date(req.Year, req.MonthNum, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != req.MonthNum {
		return "", fmt.Errorf("%w %d for %s", ErrInvalidDay, day, req.MonthKey())
	}
	return d.Format(time.DateOnly), nil
}

// ResolveInstant interprets an "HH:MM" wall-clock value on the given day in
// the request's zone. Values the zone skips that day are rejected.
func ResolveInstant(req MonthRequest, day int, hhmm string) (time.Time, error) {
	date := fmt.Sprintf("%04d-%02d-%02d", req.Year, int(req.MonthNum), day)

	hour, minute, err := ParseClock(hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q on %s: %v", ErrInvalidTime, hhmm, date, err)
	}

	t := time.Date(req.Year, req.MonthNum, day, hour, minute, 0, 0, req.Location)
	if t.Day() != day || t.Hour() != hour || t.Minute() != minute {
		return time.Time{}, fmt.Errorf("%w %q on %s: local time does not exist in %s",
			ErrInvalidTime, hhmm, date, req.Timezone)
	}
	return t, nil
}

// ParseClock splits an "HH:MM" 24-hour clock value.
func ParseClock(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	h, m, ok := strings.Cut(s, ":")
	if !ok || len(h) < 1 || len(h) > 2 || len(m) != 2 {
		return 0, 0, errors.New("expected HH:MM")
	}
	hour, errH := strconv.Atoi(h)
	minute, errM := strconv.Atoi(m)
	if errH != nil || errM != nil {
		return 0, 0, errors.New("expected HH:MM")
	}
	if hour < 0 || hour > 23 {
		return 0, 0, errors.New("hour out of range")
	}
	if minute < 0 || minute > 59 {
		return 0, 0, errors.New("minute out of range")
	}
	return hour, minute, nil
}

// FormatInstant renders t with its offset. Only the fixed UTC zone uses "Z";
// regional zones that happen to sit at +00:00 keep the numeric offset.
func FormatInstant(t time.Time, zone string) string {
	if isFixedUTC(zone) {
		return t.UTC().Format(time.RFC3339)
	}
	return t.Format(instantLayout)
}

func isFixedUTC(zone string) bool {
	return strings.EqualFold(zone, "UTC") || strings.EqualFold(zone, "GMT")
}

func parseDay(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("%w: empty date", ErrInvalidDay)
	}
	day, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidDay, value)
	}
	return day, nil
}

func parseMonth(value string) (time.Month, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 || n > 12 {
		return 0, fmt.Errorf("month %q must be 01-12", value)
	}
	return time.Month(n), nil
}
