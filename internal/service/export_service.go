package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mfauzi77/paudhi-backend/internal/models"
	"github.com/mfauzi77/paudhi-backend/internal/scope"
	appErrors "github.com/mfauzi77/paudhi-backend/pkg/errors"
	"github.com/mfauzi77/paudhi-backend/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries the rendered bytes and response metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders indicator reports into downloadable files. The same
// organization scoping as the list endpoint applies.
type ExportService struct {
	reports ReportRepository
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(reports ReportRepository, logger *zap.Logger) *ExportService {
	return &ExportService{
		reports: reports,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
	}
}

var reportExportHeaders = []string{"Organisasi", "Program", "Indikator", "Tahun", "Target", "Realisasi", "Persentase", "Kategori", "Status"}

// ExportReports renders the actor-visible reports in the requested format.
func (s *ExportService) ExportReports(ctx context.Context, actor *models.User, filter models.ReportFilter, format ExportFormat) (*ExportResult, error) {
	orgFilter, err := scope.Filter(actor)
	if err != nil {
		return nil, err
	}
	if orgFilter != "" {
		filter.OrgID = orgFilter
	}
	filter.Page = 1
	filter.PageSize = 100

	reports, _, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reports for export")
	}

	dataset := export.Dataset{Headers: reportExportHeaders}
	for _, report := range reports {
		for _, indicator := range report.Indicators {
			for _, year := range indicator.Years {
				dataset.Rows = append(dataset.Rows, map[string]string{
					"Organisasi": report.OrgName,
					"Program":    report.Program,
					"Indikator":  indicator.Name,
					"Tahun":      strconv.Itoa(year.Year),
					"Target":     formatMetric(year.Target, year.Category),
					"Realisasi":  formatMetric(year.Actual, year.Category),
					"Persentase": fmt.Sprintf("%d%%", year.Percentage),
					"Kategori":   string(year.Category),
					"Status":     string(report.Status),
				})
			}
		}
	}

	switch format {
	case ExportFormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: "laporan-indikator.csv"}, nil
	case ExportFormatPDF:
		content, err := s.pdf.Render(dataset, "Laporan Capaian Indikator PAUD HI")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: "laporan-indikator.pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func formatMetric(value float64, category models.Category) string {
	if category == models.CategoryNotReported && value == 0 {
		return "-"
	}
	return strings.TrimRight(strings.TrimRight(strconv.FormatFloat(value, 'f', 2, 64), "0"), ".")
}
