package filestore

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/prayer-month-builder/internal/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest(t *testing.T, month string) domain.MonthRequest {
	t.Helper()
	req, err := domain.NewMonthRequest("Example", 2024, month, "UTC")
	require.NoError(t, err)
	return req
}

func TestPathsFor(t *testing.T) {
	s := NewStore(afero.NewMemMapFs(), "site", slog.Default())
	paths := s.PathsFor(testRequest(t, "03"))

	assert.Equal(t, filepath.Join("site", "Example", "2024", "03.json"), paths.Month)
	assert.Equal(t, filepath.Join("site", "Example", "latest.json"), paths.Latest)
}

func TestEnsureDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, ".", slog.Default())

	require.NoError(t, s.EnsureDir(testRequest(t, "03")))

	ok, err := afero.DirExists(fs, filepath.Join("Example", "2024"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWriteMonth(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, ".", slog.Default())
	req := testRequest(t, "03")
	require.NoError(t, s.EnsureDir(req))

	data := []byte(`{"schema_version":1}`)
	paths, err := s.WriteMonth(req, data)
	require.NoError(t, err)

	month, err := afero.ReadFile(fs, paths.Month)
	require.NoError(t, err)
	latest, err := afero.ReadFile(fs, paths.Latest)
	require.NoError(t, err)

	assert.Equal(t, data, month)
	assert.Equal(t, month, latest)
}

func TestWriteMonth_LatestFollowsMostRecentBuild(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, ".", slog.Default())

	april := testRequest(t, "04")
	march := testRequest(t, "03")
	require.NoError(t, s.EnsureDir(april))
	require.NoError(t, s.EnsureDir(march))

	_, err := s.WriteMonth(april, []byte(`"april"`))
	require.NoError(t, err)
	paths, err := s.WriteMonth(march, []byte(`"march"`))
	require.NoError(t, err)

	// An older month built later still wins latest.json.
	latest, err := afero.ReadFile(fs, paths.Latest)
	require.NoError(t, err)
	assert.Equal(t, `"march"`, string(latest))

	aprilData, err := afero.ReadFile(fs, s.PathsFor(april).Month)
	require.NoError(t, err)
	assert.Equal(t, `"april"`, string(aprilData))
}

func TestWriteMonth_ReadOnlyFs(t *testing.T) {
	s := NewStore(afero.NewReadOnlyFs(afero.NewMemMapFs()), ".", slog.Default())

	_, err := s.WriteMonth(testRequest(t, "03"), []byte("{}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write month")
}

func TestReadPayload(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "p.json", []byte(`{"schema_version":1,"region":"Example","month":"2024-03","sha256":"abc","days":[],"regional_offsets":[]}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "bad.json", []byte(`{`), 0o644))

	p, err := ReadPayload(fs, "p.json")
	require.NoError(t, err)
	assert.Equal(t, "Example", p.Region)
	assert.Equal(t, "2024-03", p.Month)
	assert.Equal(t, "abc", p.SHA256)

	_, err = ReadPayload(fs, "bad.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode payload")

	_, err = ReadPayload(fs, "missing.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read payload")
}
