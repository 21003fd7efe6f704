package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/TADI-I/TUT-Labs/internal/report"
)

// ReportService renders printable weekly PDF reports from the shift registry
// and the session ledger.
type ReportService struct {
	directory *DirectoryService
	shifts    *ShiftService
	sessions  *SessionService
	now       func() time.Time
	logger    *slog.Logger
}

// NewReportService wires dependencies for the report service.
func NewReportService(directory *DirectoryService, shifts *ShiftService, sessions *SessionService, now func() time.Time, logger *slog.Logger) *ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportService{
		directory: directory,
		shifts:    shifts,
		sessions:  sessions,
		now:       now,
		logger:    defaultLogger(logger),
	}
}

func (s *ReportService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReportService", operation, attrs...)
}

// WeeklyScheduleReport renders one tutor's shifts for the week starting at
// weekStart. A tutor may render their own schedule; administrators may
// render anyone's.
func (s *ReportService) WeeklyScheduleReport(ctx context.Context, principal Principal, tutorID string, weekStart time.Time) (doc []byte, err error) {
	if s == nil {
		err = fmt.Errorf("ReportService is nil")
		return
	}
	if !principal.IsAdmin && principal.UserID != tutorID {
		err = ErrUnauthorized
		return
	}
	if s.directory == nil || s.shifts == nil {
		err = fmt.Errorf("report dependencies not configured")
		return
	}

	logger := s.loggerWith(ctx, "WeeklyScheduleReport",
		"principal_id", principal.UserID,
		"tutor_id", tutorID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to render schedule report", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("document_bytes", len(doc)).InfoContext(ctx, "schedule report rendered")
	}()

	tutor, lookupErr := s.directory.users.GetUser(ctx, tutorID)
	if lookupErr != nil {
		err = mapDirectoryRepoError(lookupErr)
		return
	}

	shifts, listErr := s.shifts.ListShiftsForTutor(ctx, principal, tutorID)
	if listErr != nil {
		err = listErr
		return
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
		return
	}

	rows := make([]report.ShiftRow, 0, len(shifts))
	for _, shift := range shifts {
		rows = append(rows, report.ShiftRow{
			Day:     shift.Day,
			LabName: shift.LabName,
			Time:    shift.Time,
		})
	}

	doc, err = report.RenderWeeklySchedule(tutor.Name, WeekLabel(weekStart), rows, s.now())
	return
}

// WeeklyActivityReport renders every session opened during the week starting
// at weekStart. Administrators only.
func (s *ReportService) WeeklyActivityReport(ctx context.Context, principal Principal, weekStart time.Time) (doc []byte, err error) {
	if s == nil {
		err = fmt.Errorf("ReportService is nil")
		return
	}
	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("report dependencies not configured")
		return
	}

	logger := s.loggerWith(ctx, "WeeklyActivityReport",
		"principal_id", principal.UserID,
		"week_start", weekStart.Format("2006-01-02"),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to render activity report", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("document_bytes", len(doc)).InfoContext(ctx, "activity report rendered")
	}()

	start := weekStart
	end := start.AddDate(0, 0, 7)
	sessions, listErr := s.sessions.ListSessionsInRange(ctx, start, end)
	if listErr != nil {
		err = listErr
		return
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
		return
	}

	blocks := make([]report.SessionBlock, 0, len(sessions))
	for _, session := range sessions {
		blocks = append(blocks, report.SessionBlock{
			LabName:      session.LabName,
			OpenedByName: session.OpenedByName,
			OpenedAt:     session.OpenedAt,
			ClosedByName: session.ClosedByName,
			ClosedAt:     session.ClosedAt,
			Note:         session.Note,
		})
	}

	doc, err = report.RenderWeeklyActivity(WeekLabel(weekStart), blocks, s.now())
	return
}

// WeekLabel formats a seven-day range starting at weekStart, for example
// "4 Aug - 10 Aug 2025".
func WeekLabel(weekStart time.Time) string {
	weekEnd := weekStart.AddDate(0, 0, 6)
	if weekStart.Year() != weekEnd.Year() {
		return fmt.Sprintf("%s - %s", weekStart.Format("2 Jan 2006"), weekEnd.Format("2 Jan 2006"))
	}
	return fmt.Sprintf("%s - %s", weekStart.Format("2 Jan"), weekEnd.Format("2 Jan 2006"))
}
