package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ruchikageeminda97/tms-api/internal/models"
	"github.com/ruchikageeminda97/tms-api/pkg/jobs"
)

type mockReportPayments struct {
	payments []models.Payment
}

func (m *mockReportPayments) ListForPeriod(ctx context.Context, month, year string) ([]models.Payment, error) {
	out := []models.Payment{}
	for _, p := range m.payments {
		if (month == "" || p.Month == month) && (year == "" || p.Year == year) {
			out = append(out, p)
		}
	}
	return out, nil
}

// syncQueue runs the handler inline instead of on a worker.
type syncQueue struct {
	handler func(ctx context.Context, job jobs.Job) error
}

func (q *syncQueue) Enqueue(job jobs.Job) error {
	return q.handler(context.Background(), job)
}

type mockReportStore struct {
	files map[string][]byte
}

func (m *mockReportStore) Save(filename string, data []byte) (string, error) {
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[filename] = data
	return filename, nil
}

type mockSigner struct{}

func (m *mockSigner) Generate(reportID, relPath string) (string, time.Time, error) {
	return reportID + "|" + relPath, time.Now().Add(time.Minute), nil
}

func (m *mockSigner) Parse(token string) (string, string, time.Time, error) {
	parts := strings.SplitN(token, "|", 2)
	if len(parts) != 2 {
		return "", "", time.Time{}, fmt.Errorf("malformed token")
	}
	return parts[0], parts[1], time.Now().Add(time.Minute), nil
}

func newReportService(payments []models.Payment) (*ReportService, *mockReportStore) {
	store := &mockReportStore{}
	svc := NewReportService(&mockReportPayments{payments: payments}, store, &mockSigner{}, zap.NewNop())
	svc.BindQueue(&syncQueue{handler: svc.Process})
	return svc, store
}

func samplePayments() []models.Payment {
	return []models.Payment{
		{PaymentID: "PAY001", StudentID: "STU001", ClassID: "CLS001", Amount: 4500, PaymentDate: "2024-03-05", Month: "March", Year: "2024", Status: models.PaymentPaid},
		{PaymentID: "PAY002", StudentID: "STU002", ClassID: "CLS001", Amount: 3000, PaymentDate: "2024-04-02", Month: "April", Year: "2024", Status: models.PaymentPending},
	}
}

func TestReportServiceCSVLifecycle(t *testing.T) {
	svc, store := newReportService(samplePayments())

	job, err := svc.Request(context.Background(), ReportRequest{Format: "csv", Month: "March", Year: "2024"}, "nadeesha")
	require.NoError(t, err)

	status, err := svc.Status(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportCompleted, status.Status)
	assert.Equal(t, 1, status.RowCount)
	assert.NotEmpty(t, status.DownloadToken)
	require.NotNil(t, status.CompletedAt)

	require.Len(t, store.files, 1)
	content := string(store.files[status.FilePath])
	assert.Contains(t, content, "payment_id")
	assert.Contains(t, content, "PAY001")
	assert.NotContains(t, content, "PAY002")
}

func TestReportServicePDFLifecycle(t *testing.T) {
	svc, store := newReportService(samplePayments())

	job, err := svc.Request(context.Background(), ReportRequest{Format: "pdf"}, "nadeesha")
	require.NoError(t, err)

	status, err := svc.Status(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportCompleted, status.Status)
	assert.Equal(t, 2, status.RowCount)

	data := store.files[status.FilePath]
	require.NotEmpty(t, data)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestReportServiceRejectsUnknownFormat(t *testing.T) {
	svc, _ := newReportService(nil)

	_, err := svc.Request(context.Background(), ReportRequest{Format: "xlsx"}, "nadeesha")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestReportServiceStatusUnknownJob(t *testing.T) {
	svc, _ := newReportService(nil)

	_, err := svc.Status(context.Background(), "missing")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestReportServiceResolveDownload(t *testing.T) {
	svc, _ := newReportService(samplePayments())

	job, err := svc.Request(context.Background(), ReportRequest{Format: "csv"}, "nadeesha")
	require.NoError(t, err)
	status, err := svc.Status(context.Background(), job.ID)
	require.NoError(t, err)

	relPath, resolved, err := svc.ResolveDownload(status.DownloadToken)
	require.NoError(t, err)
	assert.Equal(t, status.FilePath, relPath)
	assert.Equal(t, job.ID, resolved.ID)

	_, _, err = svc.ResolveDownload("garbage")
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
}
