package microstatus

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const NotAvailable = "N/a"

// AttendanceLog is the day's first time-in and last time-out.
type AttendanceLog struct {
	TimeIn  string
	TimeOut string
}

func formatLogTime(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return NotAvailable
	}
	return text
}

// ReadAttendanceLog waits for the dashboard graph and reads the log table out
// of the rendered page.
func ReadAttendanceLog(ctx context.Context, page Page, timeouts Timeouts) (AttendanceLog, error) {
	if err := requireSelector(page, graphSelector, timeouts.Element); err != nil {
		return AttendanceLog{}, fmt.Errorf("attendance log: %w", err)
	}

	if err := settle(ctx, timeouts.Settle); err != nil {
		return AttendanceLog{}, err
	}

	content, err := page.Content()
	if err != nil {
		return AttendanceLog{}, fmt.Errorf("attendance log: %w", err)
	}

	return ParseAttendanceLog(strings.NewReader(content))
}

// ParseAttendanceLog takes the first and last cell of the first data row of
// the dashboard's log table, skipping header rows. Blank or missing cells become NotAvailable.
func ParseAttendanceLog(page io.Reader) (AttendanceLog, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return AttendanceLog{}, err
	}

	// find the table element
	table := doc.Find(attendanceLogSelector).First()
	if table.Length() == 0 {
		return AttendanceLog{}, fmt.Errorf("attendance log: %w", selectorError(attendanceLogSelector))
	}

	row := table.Find("tr").Has("td").First()
	cells := row.Find("td")

	if cells.Length() == 0 {
		return AttendanceLog{TimeIn: NotAvailable, TimeOut: NotAvailable}, nil
	}

	return AttendanceLog{
		TimeIn:  formatLogTime(cells.First().Text()),
		TimeOut: formatLogTime(cells.Last().Text()),
	}, nil
}
