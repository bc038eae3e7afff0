package service

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Anandhg36/RMIT-Hackathon/internal/models"
	appErrors "github.com/Anandhg36/RMIT-Hackathon/pkg/errors"
	"github.com/Anandhg36/RMIT-Hackathon/pkg/export"
)

// ExportFormat names a supported download format.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult carries a rendered download.
type ExportResult struct {
	Payload     []byte
	Filename    string
	ContentType string
}

// ExportService renders the reconciled schedule collection as a download.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger}
}

// Generate renders the collection in the requested format. Each course
// contributes one row per session pane, empty panes included.
func (s *ExportService) Generate(schedules []models.CourseSchedule, format ExportFormat) (*ExportResult, error) {
	dataset := buildScheduleDataset(schedules)

	switch format {
	case ExportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Payload: payload, Filename: "schedule.csv", ContentType: "text/csv"}, nil
	case ExportFormatPDF:
		payload, err := s.pdf.Render(dataset, "Course Schedule")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Payload: payload, Filename: "schedule.pdf", ContentType: "application/pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func buildScheduleDataset(schedules []models.CourseSchedule) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Course", "Code", "Session", "Day", "Time", "Classroom", "Classmates"},
	}
	for _, course := range schedules {
		dataset.Rows = append(dataset.Rows,
			sessionRow(course, "Theory", course.Theory),
			sessionRow(course, "Practical", course.Practical),
		)
	}
	return dataset
}

func sessionRow(course models.CourseSchedule, pane string, session models.Session) map[string]string {
	names := make([]string, 0, len(session.Attendees))
	for _, attendee := range session.Attendees {
		names = append(names, attendee.Name)
	}
	return map[string]string{
		"Course":     course.Name,
		"Code":       course.Code,
		"Session":    pane,
		"Day":        session.Day,
		"Time":       session.Time,
		"Classroom":  session.Classroom,
		"Classmates": strings.Join(names, ", "),
	}
}
