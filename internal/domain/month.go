package domain

import (
	"fmt"
	"time"
)

// SchemaVersion identifies the payload layout. Bump only on incompatible changes.
const SchemaVersion = 1

// Canonical CSV column names.
const (
	ColumnDate      = "date"
	ColumnFajr      = "fajr"
	ColumnSunrise   = "sunrise"
	ColumnDhuhr     = "dhuhr"
	ColumnAsrShafi  = "asr_shafi"
	ColumnAsrHanafi = "asr_hanafi"
	ColumnMaghrib   = "maghrib"
	ColumnIsha      = "isha"
)

// Columns lists every column a month CSV must carry.
var Columns = []string{
	ColumnDate,
	ColumnFajr,
	ColumnSunrise,
	ColumnDhuhr,
	ColumnAsrShafi,
	ColumnAsrHanafi,
	ColumnMaghrib,
	ColumnIsha,
}

// MonthRequest describes one build: which region and month, and the zone its
// local clock values belong to.
type MonthRequest struct {
	Region   string
	Year     int
	Month    string // verbatim, e.g. "03"; used for paths and the payload month
	MonthNum time.Month
	Timezone string
	Location *time.Location
}

// NewMonthRequest validates the raw invocation values and resolves the zone.
func NewMonthRequest(region string, year int, month, timezone string) (MonthRequest, error) {
	if year < 1 || year > 9999 {
		return MonthRequest{}, fmt.Errorf("year %d out of range", year)
	}
	num, err := parseMonth(month)
	if err != nil {
		return MonthRequest{}, err
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil || timezone == "" || timezone == "Local" {
		return MonthRequest{}, fmt.Errorf("unknown timezone %q", timezone)
	}
	return MonthRequest{
		Region:   region,
		Year:     year,
		Month:    month,
		MonthNum: num,
		Timezone: timezone,
		Location: loc,
	}, nil
}

// MonthKey returns the payload month field, "<year>-<month>".
func (r MonthRequest) MonthKey() string {
	return fmt.Sprintf("%04d-%s", r.Year, r.Month)
}

// Row is one parsed CSV record keyed by header name.
type Row struct {
	Line   int
	Fields map[string]string
}

// AsrTimes holds both school variants of the Asr time point.
type AsrTimes struct {
	Shafi  string `json:"shafi"`
	Hanafi string `json:"hanafi"`
}

// DayTimes holds the resolved instants for one day, ISO-8601 with offset.
type DayTimes struct {
	Fajr    string   `json:"fajr"`
	Sunrise string   `json:"sunrise"`
	Dhuhr   string   `json:"dhuhr"`
	Asr     AsrTimes `json:"asr"`
	Maghrib string   `json:"maghrib"`
	Isha    string   `json:"isha"`
}

// DayRecord is one calendar day of the published month.
type DayRecord struct {
	Date  string   `json:"date"`
	Times DayTimes `json:"times"`
}

// RegionalOffset is a minute adjustment applied by consumers for named
// sub-areas of the region.
type RegionalOffset struct {
	Areas         []string `json:"areas" yaml:"areas"`
	OffsetMinutes int      `json:"offset_minutes" yaml:"offset_minutes"`
}

// MonthPayload is the published artifact. Field order is part of the digest
// contract and must not change.
type MonthPayload struct {
	SchemaVersion   int              `json:"schema_version"`
	Region          string           `json:"region"`
	Month           string           `json:"month"`
	Timezone        string           `json:"timezone"`
	Version         int              `json:"version"`
	GeneratedAt     string           `json:"generated_at"`
	SHA256          string           `json:"sha256"`
	Days            []DayRecord      `json:"days"`
	RegionalOffsets []RegionalOffset `json:"regional_offsets"`
}

// generatedAtLayout mirrors the millisecond UTC form consumers already parse.
const generatedAtLayout = "2006-01-02T15:04:05.000Z"

// NewMonthPayload assembles an unsealed payload stamped with the current time.
func NewMonthPayload(req MonthRequest, version int, days []DayRecord, offsets []RegionalOffset) MonthPayload {
	if days == nil {
		days = []DayRecord{}
	}
	if offsets == nil {
		offsets = []RegionalOffset{}
	}
	return MonthPayload{
		SchemaVersion:   SchemaVersion,
		Region:          req.Region,
		Month:           req.MonthKey(),
		Timezone:        req.Timezone,
		Version:         version,
		GeneratedAt:     clock.Now().UTC().Format(generatedAtLayout),
		SHA256:          "",
		Days:            days,
		RegionalOffsets: offsets,
	}
}

// Publication announces a freshly written month to downstream consumers.
type Publication struct {
	Region      string `json:"region"`
	Month       string `json:"month"`
	Timezone    string `json:"timezone"`
	Version     int    `json:"version"`
	SHA256      string `json:"sha256"`
	Path        string `json:"path"`
	GeneratedAt string `json:"generated_at"`
	Days        int    `json:"days"`
}

// NewPublication summarizes a sealed payload written to path.
func NewPublication(p MonthPayload, path string) Publication {
	return Publication{
		Region:      p.Region,
		Month:       p.Month,
		Timezone:    p.Timezone,
		Version:     p.Version,
		SHA256:      p.SHA256,
		Path:        path,
		GeneratedAt: p.GeneratedAt,
		Days:        len(p.Days),
	}
}

// OutputPaths are the files one build writes.
type OutputPaths struct {
	Month  string
	Latest string
}
