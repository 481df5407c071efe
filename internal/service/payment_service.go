package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ruchikageeminda97/tms-api/internal/models"
	appErrors "github.com/ruchikageeminda97/tms-api/pkg/errors"
)

// paymentIDPrefix is shared with the repair job, which reassigns malformed
// identifiers into the same sequence.
const paymentIDPrefix = "PAY"

// maxPaymentIDAttempts bounds the allocator retry loop when concurrent
// writers race for the same identifier.
const maxPaymentIDAttempts = 10

type paymentRepository interface {
	List(ctx context.Context) ([]models.Payment, error)
	ListForPeriod(ctx context.Context, month, year string) ([]models.Payment, error)
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	LatestID(ctx context.Context) (string, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id string) error
}

type studentChecker interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
}

// PaymentRequest carries a payment document. The identifier is always
// allocated server-side and never accepted from callers.
type PaymentRequest struct {
	StudentID   string  `json:"student_id" validate:"required"`
	ClassID     string  `json:"class_id" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	PaymentDate string  `json:"payment_date" validate:"required"`
	Month       string  `json:"month" validate:"required"`
	Year        string  `json:"year" validate:"required"`
	Status      string  `json:"status" validate:"omitempty,oneof=Paid Pending"`
}

// PaymentService handles payment use-cases, including identifier allocation.
type PaymentService struct {
	repo      paymentRepository
	students  studentChecker
	classes   classChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService constructs the payment service.
func NewPaymentService(repo paymentRepository, students studentChecker, classes classChecker, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, students: students, classes: classes, validator: validate, logger: logger}
}

// List returns payments, optionally filtered by month and year.
func (s *PaymentService) List(ctx context.Context, month, year string) ([]models.Payment, error) {
	var (
		payments []models.Payment
		err      error
	)
	if month == "" && year == "" {
		payments, err = s.repo.List(ctx)
	} else {
		payments, err = s.repo.ListForPeriod(ctx, month, year)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	return payments, nil
}

// Get returns a payment by its PAYnnn identifier.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.Payment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid payment id")
	}
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return payment, nil
}

// Create records a new payment under a freshly allocated identifier.
func (s *PaymentService) Create(ctx context.Context, req PaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	payment, err := s.buildPayment(req)
	if err != nil {
		return nil, err
	}

	if err := s.checkReferences(ctx, req.StudentID, req.ClassID); err != nil {
		return nil, err
	}

	paymentID, err := s.allocateID(ctx)
	if err != nil {
		return nil, err
	}
	payment.PaymentID = paymentID

	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create payment")
	}
	s.logger.Info("payment created",
		zap.String("payment_id", payment.PaymentID),
		zap.String("student_id", payment.StudentID),
		zap.Float64("amount", payment.Amount))
	return payment, nil
}

// Update fully replaces a payment document keyed by its identifier.
func (s *PaymentService) Update(ctx context.Context, id string, req PaymentRequest) (*models.Payment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid payment id")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate payment id")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
	}

	if err := s.checkReferences(ctx, req.StudentID, req.ClassID); err != nil {
		return nil, err
	}

	payment, err := s.buildPayment(req)
	if err != nil {
		return nil, err
	}
	payment.PaymentID = id
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment")
	}
	s.logger.Info("payment updated", zap.String("payment_id", id))
	return payment, nil
}

// Delete removes a payment. Payments have no dependents.
func (s *PaymentService) Delete(ctx context.Context, id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "invalid payment id")
	}
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate payment id")
	}
	if !exists {
		return "", appErrors.Clone(appErrors.ErrNotFound, "payment not found")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete payment")
	}
	s.logger.Info("payment deleted", zap.String("payment_id", id))
	return fmt.Sprintf("Payment %s deleted successfully", id), nil
}

// allocateID reserves the next PAYnnn identifier. The sequence continues from
// the greatest well-formed identifier, padding to three digits; larger
// numbers keep their natural width. Allocation is checked against storage
// because there is no transactional reservation, so a concurrent writer can
// win the candidate; allocation then moves to the next number.
func (s *PaymentService) allocateID(ctx context.Context) (string, error) {
	next := 1
	latest, err := s.repo.LatestID(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read latest payment id")
	}
	if err == nil {
		n, parseErr := strconv.Atoi(strings.TrimPrefix(latest, paymentIDPrefix))
		if parseErr != nil {
			return "", appErrors.Wrap(parseErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "malformed latest payment id")
		}
		next = n + 1
	}

	for attempt := 0; attempt < maxPaymentIDAttempts; attempt++ {
		candidate := fmt.Sprintf("%s%03d", paymentIDPrefix, next)
		taken, err := s.repo.ExistsByID(ctx, candidate)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate payment id")
		}
		if !taken {
			return candidate, nil
		}
		next++
	}
	return "", appErrors.Clone(appErrors.ErrInternal, "could not allocate a payment id")
}

func (s *PaymentService) checkReferences(ctx context.Context, studentID, classID string) error {
	found, err := s.students.ExistsByID(ctx, studentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student id")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	found, err = s.classes.ExistsByID(ctx, classID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate class id")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	return nil
}

func (s *PaymentService) buildPayment(req PaymentRequest) (*models.Payment, error) {
	date, err := normalizeDate(req.PaymentDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment_date")
	}
	status := models.PaymentStatus(req.Status)
	if status == "" {
		status = models.PaymentPending
	}
	return &models.Payment{
		StudentID:   req.StudentID,
		ClassID:     req.ClassID,
		Amount:      req.Amount,
		PaymentDate: date,
		Month:       req.Month,
		Year:        req.Year,
		Status:      status,
	}, nil
}
