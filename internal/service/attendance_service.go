package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ruchikageeminda97/tms-api/internal/models"
	appErrors "github.com/ruchikageeminda97/tms-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context) ([]models.Attendance, error)
	FindByID(ctx context.Context, id string) (*models.Attendance, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, record *models.Attendance) error
	Update(ctx context.Context, record *models.Attendance) error
	Delete(ctx context.Context, id string) error
}

// AttendanceRequest is the full attendance document used by create and
// update.
type AttendanceRequest struct {
	AttendanceID string `json:"attendance_id" validate:"required"`
	StudentID    string `json:"student_id" validate:"required"`
	ClassID      string `json:"class_id" validate:"required"`
	Date         string `json:"date" validate:"required"`
	Status       string `json:"status" validate:"required,oneof=Present Absent"`
}

// AttendanceService handles attendance use-cases.
type AttendanceService struct {
	repo      attendanceRepository
	students  studentChecker
	classes   classChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, students studentChecker, classes classChecker, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, students: students, classes: classes, validator: validate, logger: logger}
}

// List returns every attendance record.
func (s *AttendanceService) List(ctx context.Context) ([]models.Attendance, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// Get returns an attendance record by id.
func (s *AttendanceService) Get(ctx context.Context, id string) (*models.Attendance, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid attendance id")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}
	return record, nil
}

// Create registers a new attendance record. Both referenced rows must exist.
func (s *AttendanceService) Create(ctx context.Context, req AttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	exists, err := s.repo.ExistsByID(ctx, req.AttendanceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate attendance id")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("attendance record %s already exists", req.AttendanceID))
	}

	if err := s.checkReferences(ctx, req.StudentID, req.ClassID); err != nil {
		return nil, err
	}

	record, err := buildAttendance(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create attendance record")
	}
	s.logger.Info("attendance recorded",
		zap.String("attendance_id", record.AttendanceID),
		zap.String("student_id", record.StudentID),
		zap.String("class_id", record.ClassID))
	return record, nil
}

// Update fully replaces an attendance document keyed by its id.
func (s *AttendanceService) Update(ctx context.Context, id string, req AttendanceRequest) (*models.Attendance, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid attendance id")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate attendance id")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
	}

	if err := s.checkReferences(ctx, req.StudentID, req.ClassID); err != nil {
		return nil, err
	}

	record, err := buildAttendance(req)
	if err != nil {
		return nil, err
	}
	record.AttendanceID = id
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance record")
	}
	s.logger.Info("attendance updated", zap.String("attendance_id", id))
	return record, nil
}

// Delete removes an attendance record.
func (s *AttendanceService) Delete(ctx context.Context, id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "invalid attendance id")
	}
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate attendance id")
	}
	if !exists {
		return "", appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance record")
	}
	s.logger.Info("attendance deleted", zap.String("attendance_id", id))
	return fmt.Sprintf("Attendance record %s deleted successfully", id), nil
}

func (s *AttendanceService) checkReferences(ctx context.Context, studentID, classID string) error {
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

func buildAttendance(req AttendanceRequest) (*models.Attendance, error) {
	date, err := normalizeDate(req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}
	return &models.Attendance{
		AttendanceID: req.AttendanceID,
		StudentID:    req.StudentID,
		ClassID:      req.ClassID,
		Date:         date,
		Status:       models.AttendanceStatus(req.Status),
	}, nil
}
