package pipeline

import (
	"github.com/couchcryptid/prayer-month-builder/internal/domain"
)

// transformRows maps rows to day records in file order. The first bad row
// aborts the month; there is no partial output.
func transformRows(req domain.MonthRequest, rows []domain.Row) ([]domain.DayRecord, error) {
	days := make([]domain.DayRecord, 0, len(rows))
	for _, row := range rows {
		day, err := domain.BuildDay(req, row)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}
