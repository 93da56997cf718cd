// Package report renders admin spreadsheets.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/library-seat-booking/internal/attendance"
	"github.com/iliyamo/library-seat-booking/internal/model"
)

const timeLayout = "15:04"

// AttendanceRow is one line of the daily attendance sheet.
type AttendanceRow struct {
	Record   model.AttendanceRecord
	FullName string
	Email    string
}

// AttendanceWorkbook writes the rows of one date to an xlsx document.
func AttendanceWorkbook(date string, rows []AttendanceRow) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, date); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	sheet = date

	header := []interface{}{"user_id", "name", "email", "shift", "date", "check_in", "check_out", "status", "reason"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		rec := r.Record
		line := []interface{}{
			rec.UserID,
			r.FullName,
			r.Email,
			string(rec.Shift),
			rec.Date,
			clock(rec.CheckInTime),
			clock(rec.CheckOutTime),
			string(attendance.RecordStatus(rec)),
			rec.Reason,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &line); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func clock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}
