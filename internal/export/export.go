package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"skyhub/internal/models"
	"skyhub/internal/tracker"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Service writes the current schedule, bookings and live-map snapshot into
// an Excel workbook under the configured export directory.
type Service struct {
	path   string
	logger zerolog.Logger
}

func NewService(path string, logger zerolog.Logger) *Service {
	return &Service{path: path, logger: logger}
}

func (s *Service) ScheduleWorkbook(flights []models.Flight, bookings []models.Booking, tracked []models.TrackerFlight) (string, error) {
	if err := os.MkdirAll(s.path, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeScheduleSheet(f, flights); err != nil {
		return "", err
	}
	if err := writeBookingsSheet(f, bookings); err != nil {
		return "", err
	}
	if err := writeTrackerSheet(f, tracked); err != nil {
		return "", err
	}

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("schedule_%s.xlsx", time.Now().Format("2006-01-02_150405"))
	filePath := filepath.Join(s.path, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	s.logger.Info().Str("file_path", filePath).Msg("schedule workbook created")
	return filePath, nil
}

func writeScheduleSheet(f *excelize.File, flights []models.Flight) error {
	const sheet = "Schedule"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create schedule sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []interface{}{"Flight", "Origin", "Destination", "Departure", "Arrival", "Status", "Checked In"}
	writeRow(f, sheet, 1, headers)

	for i, fl := range flights {
		writeRow(f, sheet, i+2, []interface{}{
			fl.FlightNumber,
			fl.Origin,
			fl.Destination,
			fl.DepartureTime.Format(time.RFC3339),
			fl.ArrivalTime.Format(time.RFC3339),
			fl.Status,
			len(fl.CheckedInPassengers),
		})
	}

	_ = f.SetColWidth(sheet, "A", "G", 22)
	return styleHeader(f, sheet, "A1", "G1")
}

func writeBookingsSheet(f *excelize.File, bookings []models.Booking) error {
	const sheet = "Bookings"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create bookings sheet: %w", err)
	}

	headers := []interface{}{"Reference", "Passenger", "Email", "Flight ID", "Checked In", "Check-In Time"}
	writeRow(f, sheet, 1, headers)

	for i, b := range bookings {
		checkInTime := ""
		if b.CheckInTime != nil {
			checkInTime = b.CheckInTime.Format(time.RFC3339)
		}
		writeRow(f, sheet, i+2, []interface{}{
			b.BookingReference,
			b.PassengerName,
			b.PassengerEmail,
			b.FlightID,
			b.HasCheckedIn,
			checkInTime,
		})
	}

	_ = f.SetColWidth(sheet, "A", "F", 22)
	return styleHeader(f, sheet, "A1", "F1")
}

func writeTrackerSheet(f *excelize.File, tracked []models.TrackerFlight) error {
	const sheet = "Live Flights"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create live flights sheet: %w", err)
	}

	headers := []interface{}{"Callsign", "Flight", "Airline", "Route", "Altitude", "Speed", "Status"}
	writeRow(f, sheet, 1, headers)

	for i, t := range tracked {
		writeRow(f, sheet, i+2, []interface{}{
			t.Callsign,
			t.FlightNumber,
			t.Airline,
			fmt.Sprintf("%s-%s", t.Origin, t.Destination),
			tracker.FormatAltitude(t.Altitude),
			tracker.FormatSpeed(t.Speed),
			t.Status,
		})
	}

	_ = f.SetColWidth(sheet, "A", "G", 20)
	return styleHeader(f, sheet, "A1", "G1")
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func styleHeader(f *excelize.File, sheet, from, to string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, from, to, style)
}
