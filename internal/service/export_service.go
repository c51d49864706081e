package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lifeflow-api/internal/models"
	appErrors "github.com/noah-isme/lifeflow-api/pkg/errors"
	"github.com/noah-isme/lifeflow-api/pkg/export"
)

type exportRequestSource interface {
	ListAll(ctx context.Context) ([]models.BloodRequest, error)
}

// ExportResult is a rendered document ready to be streamed.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

var requestExportHeaders = []string{"ID", "Patient", "Blood Group", "Units", "Urgency", "Status", "District", "State", "Mobile", "Created"}

// ExportService renders blood requests as downloadable CSV or PDF.
type ExportService struct {
	requests  exportRequestSource
	renderers map[string]export.Renderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService with the CSV and PDF renderers.
func NewExportService(requests exportRequestSource, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	csv := export.NewCSVExporter()
	pdf := export.NewPDFExporter()
	return &ExportService{
		requests: requests,
		renderers: map[string]export.Renderer{
			csv.Extension(): csv,
			pdf.Extension(): pdf,
		},
		logger: logger,
		now:    time.Now,
	}
}

// ExportRequests renders every request in the given format ("csv" or "pdf").
func (s *ExportService) ExportRequests(ctx context.Context, format string) (*ExportResult, error) {
	renderer, ok := s.renderers[strings.ToLower(format)]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	requests, err := s.requests.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	generated := s.now().UTC()
	data, err := renderer.Render(requestDataset(requests, generated))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}
	s.logger.Info("blood requests exported", zap.String("format", renderer.Extension()), zap.Int("rows", len(requests)))

	return &ExportResult{
		Filename:    fmt.Sprintf("blood-requests-%s.%s", generated.Format("20060102-150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

func requestDataset(requests []models.BloodRequest, generated time.Time) export.Dataset {
	rows := make([]map[string]string, 0, len(requests))
	for _, r := range requests {
		rows = append(rows, map[string]string{
			"ID":          r.ID,
			"Patient":     r.PatientName,
			"Blood Group": string(r.BloodGroup),
			"Units":       strconv.Itoa(r.UnitsNeeded),
			"Urgency":     string(r.UrgencyLevel),
			"Status":      string(r.Status),
			"District":    r.District,
			"State":       r.State,
			"Mobile":      r.Mobile,
			"Created":     r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return export.Dataset{
		Title:   "Blood requests (" + generated.Format("2006-01-02 15:04 MST") + ")",
		Headers: requestExportHeaders,
		Rows:    rows,
	}
}
