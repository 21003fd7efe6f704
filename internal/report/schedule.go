package report

import (
	"time"
)

// ShiftRow is one line of a tutor's weekly schedule table.
type ShiftRow struct {
	Day     string
	LabName string
	Time    string
}

// RenderWeeklySchedule lays out a tutor's shifts as a three-column table
// (day, lab, time) under a title and week label, paginating as needed.
func RenderWeeklySchedule(tutorName, weekLabel string, shifts []ShiftRow, generatedAt time.Time) ([]byte, error) {
	pdf := newDocument(generatedAt)
	drawTitle(pdf, "Weekly Lab Schedule - "+tutorName, weekLabel)

	colWidths := []float64{140.0, 180.0, 148.0}
	headers := []string{"Day", "Lab", "Time"}

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", bodySize)
		pdf.SetFillColor(230, 230, 230)
		for i, header := range headers {
			pdf.CellFormat(colWidths[i], 20, header, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", bodySize)
	}

	drawHeader()
	if len(shifts) == 0 {
		pdf.CellFormat(colWidths[0]+colWidths[1]+colWidths[2], 20, "No shifts assigned this week.", "1", 1, "L", false, 0, "")
	}
	for _, row := range shifts {
		// Repeat the header when pagination pushed us onto a new page.
		if pdf.GetY() <= pageMargin {
			drawHeader()
		}
		pdf.CellFormat(colWidths[0], 20, row.Day, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 20, row.LabName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[2], 20, row.Time, "1", 1, "L", false, 0, "")
	}

	return output(pdf)
}
