package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lifeflow-api/internal/models"
	appErrors "github.com/noah-isme/lifeflow-api/pkg/errors"
)

type fakeExportSource struct {
	requests []models.BloodRequest
}

func (f *fakeExportSource) ListAll(context.Context) ([]models.BloodRequest, error) {
	return f.requests, nil
}

func newTestExportService() *ExportService {
	source := &fakeExportSource{requests: []models.BloodRequest{{
		ID:           "r1",
		PatientName:  "Ravi, Jr.",
		BloodGroup:   models.BloodGroupABNeg,
		UnitsNeeded:  3,
		UrgencyLevel: models.UrgencyUrgent,
		Status:       models.RequestStatusPending,
		CreatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}}}
	svc := NewExportService(source, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC) }
	return svc
}

func TestExportRequestsCSV(t *testing.T) {
	res, err := newTestExportService().ExportRequests(context.Background(), "CSV")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", res.ContentType)
	assert.Equal(t, "blood-requests-20260203-040506.csv", res.Filename)

	lines := strings.Split(strings.TrimSpace(string(res.Data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,Patient,Blood Group,Units,Urgency,Status,District,State,Mobile,Created", lines[0])
	assert.Contains(t, lines[1], `"Ravi, Jr."`)
	assert.Contains(t, lines[1], "AB-")
}

func TestExportRequestsPDF(t *testing.T) {
	res, err := newTestExportService().ExportRequests(context.Background(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", res.ContentType)
	assert.True(t, strings.HasPrefix(string(res.Data), "%PDF"))
}

func TestExportRequestsUnknownFormat(t *testing.T) {
	_, err := newTestExportService().ExportRequests(context.Background(), "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
