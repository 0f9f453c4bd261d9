package commands

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/couchcryptid/prayer-month-builder/internal/adapter/filestore"
	"github.com/couchcryptid/prayer-month-builder/internal/domain"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	monthKeyRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
	hexRe      = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// phase tracks pass/fail for one group of checks on a payload.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func newVerifyCmd(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <payload.json>...",
		Short: "Recompute and check the digest of built month payloads",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usagef("expected at least one payload file")
			}
			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				if !verifyFile(deps.Fs, deps.Stdout, path) {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d payloads failed verification", failed, len(args))
			}
			return nil
		},
	}
}

// verifyFile reports on one payload and returns whether every phase passed.
func verifyFile(fs afero.Fs, out io.Writer, path string) bool {
	fmt.Fprintf(out, "%s\n", path)

	p, err := filestore.ReadPayload(fs, path)
	if err != nil {
		fmt.Fprintf(out, "  %-24s FAIL\n    %v\n", "read", err)
		return false
	}

	phases := []*phase{
		checkDigest(p),
		checkHeader(p),
		checkDays(p),
		checkOffsets(p),
	}

	ok := true
	for _, ph := range phases {
		status := "PASS"
		if !ph.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(ph.errors))
			ok = false
		}
		fmt.Fprintf(out, "  %-24s %s\n", ph.name, status)
		for i, e := range ph.errors {
			fmt.Fprintf(out, "    [%d] %s\n", i+1, e)
		}
	}
	return ok
}

func checkDigest(p domain.MonthPayload) *phase {
	ph := &phase{name: "digest"}
	if !hexRe.MatchString(p.SHA256) {
		ph.errorf("sha256 %q is not 64 lowercase hex characters", p.SHA256)
		return ph
	}
	if err := domain.VerifyDigest(p); err != nil {
		ph.errorf("%v", err)
	}
	return ph
}

func checkHeader(p domain.MonthPayload) *phase {
	ph := &phase{name: "header"}
	if p.SchemaVersion != domain.SchemaVersion {
		ph.errorf("schema_version %d, expected %d", p.SchemaVersion, domain.SchemaVersion)
	}
	if p.Region == "" {
		ph.errorf("region is empty")
	}
	if !monthKeyRe.MatchString(p.Month) {
		ph.errorf("month %q is not YYYY-MM", p.Month)
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil || p.Timezone == "" {
		ph.errorf("timezone %q is not an IANA zone", p.Timezone)
	}
	if p.Version <= 0 {
		ph.errorf("version %d is not positive", p.Version)
	}
	if _, err := time.Parse(time.RFC3339, p.GeneratedAt); err != nil {
		ph.errorf("generated_at %q is not an ISO-8601 instant", p.GeneratedAt)
	}
	return ph
}

func checkDays(p domain.MonthPayload) *phase {
	ph := &phase{name: "days"}
	for i, d := range p.Days {
		date, err := time.Parse(time.DateOnly, d.Date)
		if err != nil {
			ph.errorf("day %d: date %q is not YYYY-MM-DD", i, d.Date)
			continue
		}
		if date.Format("2006-01") != p.Month {
			ph.errorf("day %d: date %s outside month %s", i, d.Date, p.Month)
		}
		for _, f := range dayInstants(d.Times) {
			if err := checkInstant(f.value, d.Date); err != nil {
				ph.errorf("day %d: %s: %v", i, f.name, err)
			}
		}
	}
	return ph
}

type namedInstant struct {
	name  string
	value string
}

func dayInstants(t domain.DayTimes) []namedInstant {
	return []namedInstant{
		{"fajr", t.Fajr},
		{"sunrise", t.Sunrise},
		{"dhuhr", t.Dhuhr},
		{"asr.shafi", t.Asr.Shafi},
		{"asr.hanafi", t.Asr.Hanafi},
		{"maghrib", t.Maghrib},
		{"isha", t.Isha},
	}
}

// checkInstant requires an offset-bearing instant whose local date is the record's date.
func checkInstant(v, date string) error {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return errors.New("not an ISO-8601 instant: " + v)
	}
	if t.Format(time.DateOnly) != date {
		return fmt.Errorf("%s is not on %s", v, date)
	}
	return nil
}

func checkOffsets(p domain.MonthPayload) *phase {
	ph := &phase{name: "regional_offsets"}
	for i, o := range p.RegionalOffsets {
		if len(o.Areas) == 0 {
			ph.errorf("entry %d: no areas", i)
		}
	}
	return ph
}
