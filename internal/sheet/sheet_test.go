package sheet

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/appointments"
)

func buildWorkbook(t *testing.T, rows [][]string) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheetName := f.GetSheetName(0)
	for i, row := range rows {
		r := row
		require.NoError(t, f.SetSheetRow(sheetName, cellRef(i), &r))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return bytes.NewReader(buf.Bytes())
}

func cellRef(rowIdx int) string {
	cell, _ := excelize.CoordinatesToCellName(1, rowIdx+1)
	return cell
}

func TestNormalizePhoneCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"911234567890", "911234567890"},
		{"+91 12345 67890", "911234567890"},
		{"9.1123456789E+11", "911234567890"},
		{"91-1234-567890", "911234567890"},
		{"  ", ""},
		{"abc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhoneCell(tt.in))
		})
	}
}

func TestParseTimeCellLayouts(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-10 14:00", time.Date(2024, 1, 10, 14, 0, 0, 0, loc)},
		{"2024-01-10T14:00:00Z", time.Date(2024, 1, 10, 14, 0, 0, 0, loc)},
		{"10-01-2024 14:00", time.Date(2024, 1, 10, 14, 0, 0, 0, loc)},
		{"2024-01-10", time.Date(2024, 1, 10, 0, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseTimeCell(tt.in, loc)
			require.True(t, ok)
			assert.True(t, got.Equal(tt.want), "got %s want %s", got, tt.want)
		})
	}
}

func TestParseTimeCellSerialNumber(t *testing.T) {
	// 45301.5 = 2024-01-10 12:00 in Excel serial days.
	got, ok := parseTimeCell("45301.5", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC), got)
}

func TestParseTimeCellInvalid(t *testing.T) {
	_, ok := parseTimeCell("soon", time.UTC)
	assert.False(t, ok)
	_, ok = parseTimeCell("", time.UTC)
	assert.False(t, ok)
}

func TestParseAppointments(t *testing.T) {
	r := buildWorkbook(t, [][]string{
		{"name", "phone", "appointmentTime"},
		{"Asha", "911234567890", "2024-01-10 14:00"},
		{"Ravi", "9.2123456789E+11", "2024-01-11 15:00"},
	})

	appts, err := ParseAppointments(r, time.UTC, nil, nil)
	require.NoError(t, err)
	require.Len(t, appts, 2)

	assert.Equal(t, "Asha", appts[0].Name)
	assert.Equal(t, "911234567890", appts[0].Phone)
	assert.Equal(t, time.Date(2024, 1, 10, 14, 0, 0, 0, time.UTC), appts[0].Time)
	assert.Equal(t, "921234567890", appts[1].Phone)
}

func TestParseAppointmentsDefaultsUnparseableTimeToNow(t *testing.T) {
	r := buildWorkbook(t, [][]string{
		{"Asha", "911234567890", "whenever works"},
	})

	fixed := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	appts, err := ParseAppointments(r, time.UTC, nil, func() time.Time { return fixed })
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, fixed, appts[0].Time)
}

func TestParseAppointmentsSkipsRowsWithoutPhone(t *testing.T) {
	r := buildWorkbook(t, [][]string{
		{"NoPhone", "---", "2024-01-10 14:00"},
		{"Asha", "911234567890", "2024-01-10 14:00"},
	})

	appts, err := ParseAppointments(r, time.UTC, nil, nil)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, "Asha", appts[0].Name)
}

func TestParseStatusRecords(t *testing.T) {
	r := buildWorkbook(t, [][]string{
		{"name", "phone", "status"},
		{"Asha", "911234567890", "YES"},
		{"Ravi", "922222222222", "nope"},
	})

	records, err := ParseStatusRecords(r)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "yes", records[0].Status)
	assert.Equal(t, "no", records[1].Status)
}

func TestCodecPersistAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appointments.xlsx")
	codec := NewCodec(path, time.UTC, nil)

	in := []appointments.Appointment{
		{Name: "Asha", Phone: "911234567890", Time: time.Date(2024, 1, 12, 15, 0, 0, 0, time.UTC)},
		{Name: "Ravi", Phone: "922222222222", Time: time.Date(2024, 1, 13, 16, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, codec.Persist(context.Background(), in))

	out, err := codec.Load()
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, in[0].Name, out[0].Name)
	assert.Equal(t, in[0].Phone, out[0].Phone)
	assert.True(t, out[0].Time.Equal(in[0].Time))
}

func TestCodecLoadMissingFile(t *testing.T) {
	codec := NewCodec(filepath.Join(t.TempDir(), "absent.xlsx"), time.UTC, nil)
	out, err := codec.Load()
	require.NoError(t, err)
	assert.Nil(t, out)
}
