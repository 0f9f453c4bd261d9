package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/couchcryptid/prayer-month-builder/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCSV = "date,fajr,sunrise,dhuhr,asr_shafi,asr_hanafi,maghrib,isha\n" +
		"9,05:45,06:20,12:10,15:20,16:05,18:00,19:15\n" +
		"10,05:43,07:18,13:10,16:21,17:06,19:01,20:16\n"
	csvPath   = "data/Example/2024/03.csv"
	monthPath = "Example/2024/03.json"
	latest    = "Example/latest.json"
)

// untouchedFs fails the test on any filesystem access.
type untouchedFs struct{ t *testing.T }

func (f untouchedFs) fail(op string) {
	f.t.Helper()
	f.t.Fatalf("unexpected filesystem access: %s", op)
}

func (f untouchedFs) Create(string) (afero.File, error) { f.fail("Create"); return nil, nil }
func (f untouchedFs) Mkdir(string, os.FileMode) error { f.fail("Mkdir"); return nil }
func (f untouchedFs) MkdirAll(string, os.FileMode) error { f.fail("MkdirAll"); return nil }
func (f untouchedFs) Open(string) (afero.File, error) { f.fail("Open"); return nil, nil }
func (f untouchedFs) Remove(string) error { f.fail("Remove"); return nil }
func (f untouchedFs) RemoveAll(string) error { f.fail("RemoveAll"); return nil }
func (f untouchedFs) Rename(string, string) error { f.fail("Rename"); return nil }
func (f untouchedFs) Stat(string) (os.FileInfo, error) { f.fail("Stat"); return nil, nil }
func (f untouchedFs) Name() string { return "untouched" }
func (f untouchedFs) Chmod(string, os.FileMode) error { f.fail("Chmod"); return nil }
func (f untouchedFs) Chown(string, int, int) error { f.fail("Chown"); return nil }
func (f untouchedFs) Chtimes(string, time.Time, time.Time) error { f.fail("Chtimes"); return nil }
func (f untouchedFs) OpenFile(string, int, os.FileMode) (afero.File, error) {
	f.fail("OpenFile")
	return nil, nil
}

type run struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, fs afero.Fs, args ...string) run {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	var stdout, stderr bytes.Buffer
	code := ExecuteArgs(context.Background(), Deps{Fs: fs, Stdout: &stdout, Stderr: &stderr}, args)
	return run{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func seededFs(t *testing.T, csv string) afero.Fs {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, 2, 28, 9, 30, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, csvPath, []byte(csv), 0o644))
	return fs
}

func TestBuild_MissingArguments(t *testing.T) {
	cases := [][]string{
		{},
		{"Example"},
		{"Example", "2024"},
		{"Example", "2024", "03"},
	}
	for _, args := range cases {
		t.Run(strings.Join(args, "_"), func(t *testing.T) {
			r := execute(t, untouchedFs{t: t}, args...)

			assert.Equal(t, 1, r.code)
			assert.Contains(t, r.stderr, "expected 4 arguments")
			assert.Contains(t, r.stderr, "Usage:")
			assert.Empty(t, r.stdout)
		})
	}
}

func TestBuild_InvalidArguments(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"region with slash", []string{"../etc", "2024", "03", "UTC"}, "single path segment"},
		{"year not a number", []string{"Example", "twenty", "03", "UTC"}, "year"},
		{"month out of range", []string{"Example", "2024", "13", "UTC"}, "month"},
		{"unknown timezone", []string{"Example", "2024", "03", "Nowhere/City"}, "timezone"},
		{"too many", []string{"Example", "2024", "03", "UTC", "extra"}, "expected 4 arguments"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := execute(t, untouchedFs{t: t}, tc.args...)
			assert.Equal(t, 1, r.code)
			assert.Contains(t, r.stderr, tc.want)
			assert.Contains(t, r.stderr, "Usage:")
		})
	}
}

func TestBuild_Success(t *testing.T) {
	fs := seededFs(t, testCSV)

	r := execute(t, fs, "Example", "2024", "03", "America/New_York")
	require.Equal(t, 0, r.code, r.stderr)

	lines := strings.Split(strings.TrimSpace(r.stdout), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Built "+filepath.FromSlash(monthPath), lines[0])
	assert.Regexp(t, regexp.MustCompile(`^SHA-256: [0-9a-f]{64}$`), lines[1])

	month, err := afero.ReadFile(fs, monthPath)
	require.NoError(t, err)
	latestData, err := afero.ReadFile(fs, latest)
	require.NoError(t, err)
	assert.Equal(t, month, latestData)
	assert.Contains(t, string(month), `"sha256":"`+strings.TrimPrefix(lines[1], "SHA-256: ")+`"`)
	assert.Contains(t, string(month), `"fajr":"2024-03-09T05:45:00-05:00"`)
	assert.Contains(t, string(month), `"fajr":"2024-03-10T05:43:00-04:00"`)
}

func TestBuild_InvalidLocalTime(t *testing.T) {
	fs := seededFs(t, strings.Replace(testCSV, "10,05:43", "10,02:30", 1))

	r := execute(t, fs, "Example", "2024", "03", "America/New_York")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, `"02:30"`)
	assert.Contains(t, r.stderr, "2024-03-10")
	assert.NotContains(t, r.stderr, "Usage:")
	assert.Empty(t, r.stdout)

	for _, p := range []string{monthPath, latest} {
		exists, err := afero.Exists(fs, p)
		require.NoError(t, err)
		assert.False(t, exists, p)
	}
}

func TestBuild_MissingCSV(t *testing.T) {
	r := execute(t, afero.NewMemMapFs(), "Example", "2024", "03", "UTC")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "read csv")
}

func TestBuild_RegionalOffsetsFile(t *testing.T) {
	fs := seededFs(t, testCSV)
	require.NoError(t, afero.WriteFile(fs, "offsets.yaml", []byte("regional_offsets:\n  - areas: [Nausori]\n    offset_minutes: -2\n"), 0o644))
	t.Setenv("REGIONAL_OFFSETS_FILE", "offsets.yaml")

	r := execute(t, fs, "Example", "2024", "03", "America/New_York")
	require.Equal(t, 0, r.code, r.stderr)

	month, err := afero.ReadFile(fs, monthPath)
	require.NoError(t, err)
	assert.Contains(t, string(month), `"regional_offsets":[{"areas":["Nausori"],"offset_minutes":-2}]`)
}

func TestBuild_PayloadVersionFromEnv(t *testing.T) {
	fs := seededFs(t, testCSV)
	t.Setenv("PAYLOAD_VERSION", "4")

	r := execute(t, fs, "Example", "2024", "03", "America/New_York")
	require.Equal(t, 0, r.code, r.stderr)

	month, err := afero.ReadFile(fs, monthPath)
	require.NoError(t, err)
	assert.Contains(t, string(month), `"version":4,`)
}

func TestBuild_MetricsTextfile(t *testing.T) {
	fs := seededFs(t, testCSV)
	path := filepath.Join(t.TempDir(), "monthbuilder.prom")
	t.Setenv("METRICS_TEXTFILE", path)

	r := execute(t, fs, "Example", "2024", "03", "America/New_York")
	require.Equal(t, 0, r.code, r.stderr)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `monthbuilder_days_built{region="Example"} 2`)
}

func TestBuild_BadConfig(t *testing.T) {
	fs := seededFs(t, testCSV)
	t.Setenv("PAYLOAD_VERSION", "zero")

	r := execute(t, fs, "Example", "2024", "03", "UTC")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "PAYLOAD_VERSION")
}

func TestVerify(t *testing.T) {
	fs := seededFs(t, testCSV)
	r := execute(t, fs, "Example", "2024", "03", "America/New_York")
	require.Equal(t, 0, r.code, r.stderr)

	t.Run("built payloads pass", func(t *testing.T) {
		r := execute(t, fs, "verify", monthPath, latest)
		assert.Equal(t, 0, r.code, r.stdout)
		assert.Contains(t, r.stdout, monthPath)
		assert.NotContains(t, r.stdout, "FAIL")
		assert.Equal(t, 8, strings.Count(r.stdout, "PASS"))
	})

	t.Run("tampered payload fails", func(t *testing.T) {
		data, err := afero.ReadFile(fs, monthPath)
		require.NoError(t, err)
		tampered := strings.Replace(string(data), "05:45:00-05:00", "05:46:00-05:00", 1)
		require.NoError(t, afero.WriteFile(fs, "tampered.json", []byte(tampered), 0o644))

		r := execute(t, fs, "verify", "tampered.json")
		assert.Equal(t, 1, r.code)
		assert.Contains(t, r.stdout, "digest")
		assert.Contains(t, r.stdout, "FAIL")
		assert.Contains(t, r.stderr, "1 of 1 payloads failed")
	})

	t.Run("unreadable file", func(t *testing.T) {
		r := execute(t, fs, "verify", "missing.json")
		assert.Equal(t, 1, r.code)
		assert.Contains(t, r.stdout, "read payload")
	})

	t.Run("no arguments", func(t *testing.T) {
		r := execute(t, fs, "verify")
		assert.Equal(t, 1, r.code)
		assert.Contains(t, r.stderr, "at least one payload")
		assert.Contains(t, r.stderr, "Usage:")
	})
}

func TestCheckDays(t *testing.T) {
	p := domain.MonthPayload{
		Month: "2024-03",
		Days: []domain.DayRecord{
			{Date: "2024-04-01", Times: domain.DayTimes{
				Fajr: "2024-04-01T05:00:00Z", Sunrise: "2024-04-01T06:00:00Z", Dhuhr: "2024-04-01T12:00:00Z",
				Asr:     domain.AsrTimes{Shafi: "2024-04-01T15:00:00Z", Hanafi: "2024-04-01T16:00:00Z"},
				Maghrib: "2024-04-01T18:00:00Z", Isha: "not-a-time",
			}},
		},
	}

	ph := checkDays(p)
	require.Len(t, ph.errors, 2)
	assert.Contains(t, ph.errors[0], "outside month")
	assert.Contains(t, ph.errors[1], "isha")
}
