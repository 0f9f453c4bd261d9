// Package csvsource reads month CSV files into domain rows.
package csvsource

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/couchcryptid/prayer-month-builder/internal/domain"
	"github.com/spf13/afero"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader loads month CSVs from a filesystem.
// It implements pipeline.RowExtractor.
type Reader struct {
	fs     afero.Fs
	logger *slog.Logger
}

// NewReader creates a Reader over fs.
func NewReader(fs afero.Fs, logger *slog.Logger) *Reader {
	return &Reader{fs: fs, logger: logger}
}

// ReadRows parses the CSV at path. The header row names the fields, blank
// lines are skipped, and row order is preserved. Every canonical column must
// be present in the header.
func (r *Reader) ReadRows(path string) ([]domain.Row, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	rows, err := parseRows(bytes.TrimPrefix(data, utf8BOM))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	r.logger.Debug("csv parsed", "path", path, "rows", len(rows))
	return rows, nil
}

func parseRows(data []byte) ([]domain.Row, error) {
	cr := csv.NewReader(bytes.NewReader(data))

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("no header row")
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if err := checkColumns(header); err != nil {
		return nil, err
	}

	var rows []domain.Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		fields := make(map[string]string, len(header))
		for j, h := range header {
			fields[h] = strings.TrimSpace(record[j])
		}
		rows = append(rows, domain.Row{Line: line, Fields: fields})
	}
	return rows, nil
}

func checkColumns(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, col := range domain.Columns {
		if !present[col] {
			return fmt.Errorf("%w %q", domain.ErrMissingColumn, col)
		}
	}
	return nil
}
