package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ruchikageeminda97/tms-api/internal/models"
	appErrors "github.com/ruchikageeminda97/tms-api/pkg/errors"
	"github.com/ruchikageeminda97/tms-api/pkg/export"
	"github.com/ruchikageeminda97/tms-api/pkg/jobs"
	"github.com/ruchikageeminda97/tms-api/pkg/storage"
)

var paymentReportHeaders = []string{
	"payment_id", "student_id", "class_id", "amount", "payment_date", "month", "year", "status",
}

type reportPaymentLister interface {
	ListForPeriod(ctx context.Context, month, year string) ([]models.Payment, error)
}

type reportQueue interface {
	Enqueue(job jobs.Job) error
}

type reportStorage interface {
	Save(filename string, data []byte) (string, error)
}

type reportSigner interface {
	Generate(reportID, relPath string) (string, time.Time, error)
	Parse(token string) (reportID, relPath string, expiresAt time.Time, err error)
}

// ReportRequest asks for an asynchronous payment report export.
type ReportRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
	Month  string `json:"month" validate:"omitempty"`
	Year   string `json:"year" validate:"omitempty"`
}

// ReportStatusResponse describes a job to callers, with a signed download
// URL once the file exists.
type ReportStatusResponse struct {
	models.ReportJob
	DownloadToken string     `json:"download_token,omitempty"`
	URLExpiresAt  *time.Time `json:"url_expires_at,omitempty"`
}

// ReportService generates payment report files in the background. Job state
// lives in memory; restarting the process forgets unfinished jobs, which is
// acceptable for operator-triggered exports.
type ReportService struct {
	payments reportPaymentLister
	queue    reportQueue
	store    reportStorage
	signer   reportSigner
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger

	mu      sync.RWMutex
	reports map[string]*models.ReportJob
}

// NewReportService constructs the report service. Call BindQueue with the
// started queue before accepting requests.
func NewReportService(payments reportPaymentLister, store reportStorage, signer reportSigner, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		payments: payments,
		store:    store,
		signer:   signer,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		reports:  make(map[string]*models.ReportJob),
	}
}

// BindQueue attaches the worker queue that will run Process.
func (s *ReportService) BindQueue(queue reportQueue) {
	s.queue = queue
}

// Request validates and enqueues a report job, returning its pending state.
func (s *ReportService) Request(ctx context.Context, req ReportRequest, requestedBy string) (*models.ReportJob, error) {
	format := models.ReportFormat(req.Format)
	if format != models.ReportCSV && format != models.ReportPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "report queue unavailable")
	}

	job := &models.ReportJob{
		ID:          uuid.NewString(),
		Format:      format,
		Month:       req.Month,
		Year:        req.Year,
		Status:      models.ReportPending,
		RequestedBy: requestedBy,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.reports[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "payment_report"}); err != nil {
		s.fail(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report")
	}
	s.logger.Info("report queued",
		zap.String("report_id", job.ID),
		zap.String("format", string(format)),
		zap.String("requested_by", requestedBy))
	return s.snapshot(job.ID), nil
}

// Status returns the job state and, when completed, a signed download token.
func (s *ReportService) Status(ctx context.Context, id string) (*ReportStatusResponse, error) {
	job := s.snapshot(id)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}

	resp := &ReportStatusResponse{ReportJob: *job}
	if job.Status == models.ReportCompleted && job.FilePath != "" {
		token, expiresAt, err := s.signer.Generate(job.ID, job.FilePath)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
		}
		resp.DownloadToken = token
		resp.URLExpiresAt = &expiresAt
	}
	return resp, nil
}

// ResolveDownload validates a download token and returns the file path it
// references.
func (s *ReportService) ResolveDownload(token string) (string, *models.ReportJob, error) {
	reportID, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download token")
	}
	job := s.snapshot(reportID)
	if job == nil || job.Status != models.ReportCompleted || job.FilePath != relPath {
		return "", nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	return relPath, job, nil
}

// Process is the queue handler: it renders and stores one report file.
func (s *ReportService) Process(ctx context.Context, job jobs.Job) error {
	report := s.snapshot(job.ID)
	if report == nil {
		return fmt.Errorf("unknown report %s", job.ID)
	}

	payments, err := s.payments.ListForPeriod(ctx, report.Month, report.Year)
	if err != nil {
		s.fail(job.ID, err)
		return err
	}

	dataset := buildPaymentDataset(payments)
	var (
		data []byte
		ext  string
	)
	switch report.Format {
	case models.ReportPDF:
		data, err = s.pdf.Render(dataset, "Payment Report")
		ext = "pdf"
	default:
		data, err = s.csv.Render(dataset)
		ext = "csv"
	}
	if err != nil {
		s.fail(job.ID, err)
		return err
	}

	filename := fmt.Sprintf("payments/%s.%s", report.ID, ext)
	relPath, err := s.store.Save(filename, data)
	if err != nil {
		s.fail(job.ID, err)
		return err
	}

	now := time.Now().UTC()
	s.mu.Lock()
	if stored, ok := s.reports[job.ID]; ok {
		stored.Status = models.ReportCompleted
		stored.FilePath = relPath
		stored.RowCount = len(payments)
		stored.Error = ""
		stored.CompletedAt = &now
	}
	s.mu.Unlock()

	s.logger.Info("report completed",
		zap.String("report_id", job.ID),
		zap.Int("rows", len(payments)),
		zap.String("file", relPath))
	return nil
}

func (s *ReportService) snapshot(id string) *models.ReportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.reports[id]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}

func (s *ReportService) fail(id string, cause error) {
	now := time.Now().UTC()
	s.mu.Lock()
	if job, ok := s.reports[id]; ok {
		job.Status = models.ReportFailed
		job.Error = cause.Error()
		job.CompletedAt = &now
	}
	s.mu.Unlock()
	s.logger.Error("report failed", zap.String("report_id", id), zap.Error(cause))
}

func buildPaymentDataset(payments []models.Payment) export.Dataset {
	rows := make([]map[string]string, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, map[string]string{
			"payment_id":   p.PaymentID,
			"student_id":   p.StudentID,
			"class_id":     p.ClassID,
			"amount":       strconv.FormatFloat(p.Amount, 'f', 2, 64),
			"payment_date": p.PaymentDate,
			"month":        p.Month,
			"year":         p.Year,
			"status":       string(p.Status),
		})
	}
	return export.Dataset{Headers: paymentReportHeaders, Rows: rows}
}
