package report

import (
	"fmt"
	"time"
)

// SessionBlock is one lab session entry in the weekly activity report.
type SessionBlock struct {
	LabName      string
	OpenedByName string
	OpenedAt     time.Time
	ClosedByName *string
	ClosedAt     *time.Time
	Note         string
}

// RenderWeeklyActivity lays out one block per session: lab name, who opened
// and closed it (or "N/A" while still open), and the optional note. Zero
// sessions yields a single page holding only the title, week label, and
// footer.
func RenderWeeklyActivity(weekLabel string, sessions []SessionBlock, generatedAt time.Time) ([]byte, error) {
	pdf := newDocument(generatedAt)
	drawTitle(pdf, "FoICT Weekly Lab Activity Report", weekLabel)

	pdf.SetFont("Helvetica", "", bodySize)
	for _, session := range sessions {
		pdf.SetFont("Helvetica", "B", bodySize)
		pdf.CellFormat(0, 16, session.LabName, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", bodySize)

		opened := fmt.Sprintf("Opened: %s by %s", session.OpenedAt.Format("2 Jan 2006 15:04"), session.OpenedByName)
		pdf.CellFormat(0, 14, opened, "", 1, "L", false, 0, "")

		closed := "Closed: N/A"
		if session.ClosedAt != nil {
			closedBy := "Unknown"
			if session.ClosedByName != nil && *session.ClosedByName != "" {
				closedBy = *session.ClosedByName
			}
			closed = fmt.Sprintf("Closed: %s by %s", session.ClosedAt.Format("2 Jan 2006 15:04"), closedBy)
		}
		pdf.CellFormat(0, 14, closed, "", 1, "L", false, 0, "")

		if session.Note != "" {
			pdf.MultiCell(0, 14, "Note: "+session.Note, "", "L", false)
		}
		pdf.Ln(10)
	}

	return output(pdf)
}
