package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/examena/surveillance-api/internal/dto"
	"github.com/examena/surveillance-api/internal/models"
	"github.com/examena/surveillance-api/pkg/export"
	appErrors "github.com/examena/surveillance-api/pkg/errors"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type csvRenderer interface {
	Render(data export.Table) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Table, title string) ([]byte, error)
}

// ExportResult is a rendered document ready to stream to the client.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders duty rosters as downloadable CSV or PDF documents.
type ExportService struct {
	roster *RosterService
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(roster *RosterService, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{roster: roster, csv: csv, pdf: pdf, logger: logger}
}

// TeacherRoster renders one teacher's duty list.
func (s *ExportService) TeacherRoster(ctx context.Context, teacherID string, q dto.RosterQuery, format string) (*ExportResult, error) {
	roster, _, err := s.roster.TeacherRoster(ctx, teacherID, q)
	if err != nil {
		return nil, err
	}

	table := export.Table{Headers: []string{"Date", "Start", "End", "Room", "Responsible"}}
	for _, duty := range roster.Duties {
		responsible := ""
		if duty.IsResponsible {
			responsible = "yes"
		}
		table.Rows = append(table.Rows, map[string]string{
			"Date":        duty.Date,
			"Start":       duty.StartTime,
			"End":         duty.EndTime,
			"Room":        duty.RoomCode,
			"Responsible": responsible,
		})
	}

	title := fmt.Sprintf("Duty roster - %s (%s %s)", roster.TeacherName, q.Semester, q.SessionType)
	filename := fmt.Sprintf("roster_%s_%s_%s", sanitize(roster.TeacherName), q.Semester, q.SessionType)
	return s.render(table, title, filename, format)
}

// SessionRoster renders the supervisor sheet of one session.
func (s *ExportService) SessionRoster(ctx context.Context, key models.SessionKey, format string) (*ExportResult, error) {
	roster, _, err := s.roster.SessionRoster(ctx, key)
	if err != nil {
		return nil, err
	}

	table := export.Table{Headers: []string{"Teacher", "Code", "Grade", "Room", "Responsible"}}
	for _, sup := range roster.Supervisors {
		responsible := ""
		if sup.IsResponsible {
			responsible = "yes"
		}
		table.Rows = append(table.Rows, map[string]string{
			"Teacher":     sup.TeacherName,
			"Code":        sup.TeacherCode,
			"Grade":       sup.GradeCode,
			"Room":        sup.RoomCode,
			"Responsible": responsible,
		})
	}

	title := fmt.Sprintf("Supervisors - %s %s to %s", key.Date, roster.StartTime, roster.EndTime)
	filename := fmt.Sprintf("session_%s_%s", key.Date, strings.ReplaceAll(roster.StartTime, ":", ""))
	return s.render(table, title, filename, format)
}

// Workload renders the per-teacher load report of a dataset.
func (s *ExportService) Workload(ctx context.Context, q dto.RosterQuery, format string) (*ExportResult, error) {
	rows, _, err := s.roster.Workload(ctx, q)
	if err != nil {
		return nil, err
	}

	table := export.Table{Headers: []string{"Teacher", "Grade", "Duties", "Quota"}}
	for _, row := range rows {
		table.Rows = append(table.Rows, map[string]string{
			"Teacher": row.TeacherName,
			"Grade":   row.GradeCode,
			"Duties":  fmt.Sprintf("%d", row.DutyCount),
			"Quota":   fmt.Sprintf("%d", row.QuotaMax),
		})
	}

	title := fmt.Sprintf("Workload - %s %s", q.Semester, q.SessionType)
	filename := fmt.Sprintf("workload_%s_%s", q.Semester, q.SessionType)
	return s.render(table, title, filename, format)
}

func (s *ExportService) render(table export.Table, title, filename, format string) (*ExportResult, error) {
	switch format {
	case FormatCSV:
		payload, err := s.csv.Render(table)
		if err != nil {
			return nil, fmt.Errorf("render csv: %w", err)
		}
		return &ExportResult{Filename: filename + ".csv", ContentType: "text/csv", Payload: payload}, nil
	case FormatPDF:
		payload, err := s.pdf.Render(table, title)
		if err != nil {
			return nil, fmt.Errorf("render pdf: %w", err)
		}
		return &ExportResult{Filename: filename + ".pdf", ContentType: "application/pdf", Payload: payload}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func sanitize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "teacher"
	}
	return b.String()
}
