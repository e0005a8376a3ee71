package sheet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/appointments"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/pkg/logging"
)

// exportTimeLayout is the human-readable date-time format written to the
// appointment sheet.
const exportTimeLayout = "2006-01-02 15:04"

// Codec reads and writes the appointment spreadsheet at a fixed path.
// It implements appointments.Persister for synchronous export after
// every store mutation.
type Codec struct {
	path   string
	loc    *time.Location
	logger *logging.Logger
}

// NewCodec creates a spreadsheet codec for the appointment file.
func NewCodec(path string, loc *time.Location, logger *logging.Logger) *Codec {
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Codec{path: path, loc: loc, logger: logger}
}

var _ appointments.Persister = (*Codec)(nil)

// Persist writes the full appointment set as rows of
// name, phone, appointmentTime.
func (c *Codec) Persist(_ context.Context, appts []appointments.Appointment) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if err := f.SetSheetRow(sheetName, "A1", &[]string{"name", "phone", "appointmentTime"}); err != nil {
		return fmt.Errorf("sheet: write header: %w", err)
	}
	for i, a := range appts {
		cell := fmt.Sprintf("A%d", i+2)
		row := []string{a.Name, a.Phone, a.Time.In(c.loc).Format(exportTimeLayout)}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("sheet: write row %d: %w", i+2, err)
		}
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("sheet: mkdir %s: %w", dir, err)
		}
	}
	if err := f.SaveAs(c.path); err != nil {
		return fmt.Errorf("sheet: save %s: %w", c.path, err)
	}

	c.logger.Debug("sheet: appointments exported", "path", c.path, "rows", len(appts))
	return nil
}

// Load reads the appointment sheet back from disk. A missing file yields
// an empty set.
func (c *Codec) Load() ([]appointments.Appointment, error) {
	file, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("sheet: open %s: %w", c.path, err)
	}
	defer file.Close()
	return ParseAppointments(file, c.loc, c.logger, nil)
}
