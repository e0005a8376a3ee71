package sheet

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/appointments"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/storage"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/pkg/logging"
)

// excelEpoch is the zero day of Excel serial date numbers.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// timeLayouts are tried in order for string-valued appointment times.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02-01-2006 15:04",
	"1/2/2006 15:04",
	"1/2/06 15:04",
	"2006-01-02",
}

// ParseAppointments reads appointment rows (name, phone, appointmentTime)
// from an xlsx stream. Phones are normalized to digits only, surviving
// spreadsheet scientific-notation mangling; unparseable times default to
// now with a logged warning.
func ParseAppointments(r io.Reader, loc *time.Location, logger *logging.Logger, now func() time.Time) ([]appointments.Appointment, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}

	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	var out []appointments.Appointment
	for i, row := range rows {
		if len(row) < 3 {
			continue
		}
		if i == 0 && isHeaderRow(row) {
			continue
		}
		phone := NormalizePhoneCell(row[1])
		if phone == "" {
			logger.Warn("sheet: skipping row without usable phone", "row", i+1)
			continue
		}
		when, ok := parseTimeCell(row[2], loc)
		if !ok {
			when = now().In(loc)
			logger.Warn("sheet: unparseable appointment time, defaulting to now",
				"row", i+1, "value", row[2])
		}
		out = append(out, appointments.Appointment{
			Name:  strings.TrimSpace(row[0]),
			Phone: phone,
			Time:  when,
		})
	}
	return out, nil
}

// ParseStatusRecords reads status rows (name, phone, status) from an
// xlsx stream. Status values are lowercased; anything other than "yes"
// is treated as "no".
func ParseStatusRecords(r io.Reader) ([]storage.StatusRecord, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	var out []storage.StatusRecord
	for i, row := range rows {
		if len(row) < 3 {
			continue
		}
		if i == 0 && isHeaderRow(row) {
			continue
		}
		phone := NormalizePhoneCell(row[1])
		if phone == "" {
			continue
		}
		status := strings.ToLower(strings.TrimSpace(row[2]))
		if status != "yes" {
			status = "no"
		}
		out = append(out, storage.StatusRecord{
			Name:   strings.TrimSpace(row[0]),
			Phone:  phone,
			Status: status,
		})
	}
	return out, nil
}

func readRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("sheet: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("sheet: workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("sheet: read rows: %w", err)
	}
	return rows, nil
}

func isHeaderRow(row []string) bool {
	first := strings.ToLower(strings.TrimSpace(row[0]))
	second := strings.ToLower(strings.TrimSpace(row[1]))
	return first == "name" || second == "phone"
}

// NormalizePhoneCell converts a spreadsheet phone cell to a digits-only
// identifier. Handles numeric cells rendered in scientific notation
// (e.g. "9.11234567891E+11") as well as formatted strings.
func NormalizePhoneCell(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if strings.ContainsAny(value, "eE") && strings.ContainsAny(value, ".+") {
		if fl, err := strconv.ParseFloat(value, 64); err == nil && fl > 0 {
			return strconv.FormatFloat(fl, 'f', 0, 64)
		}
	}
	var digits strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}

// parseTimeCell resolves a cell to an absolute timestamp: a native
// date-time string first, then an Excel serial number.
func parseTimeCell(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		days := math.Floor(serial)
		frac := serial - days
		t := excelEpoch.AddDate(0, 0, int(days))
		t = t.Add(time.Duration(math.Round(frac * 24 * float64(time.Hour))))
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
	}

	return time.Time{}, false
}
