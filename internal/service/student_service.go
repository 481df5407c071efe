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

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// studentRefCounter counts rows in a dependent collection that reference a
// student. PaymentRepository, AttendanceRepository and GradeRepository all
// satisfy it.
type studentRefCounter interface {
	CountByStudent(ctx context.Context, studentID string) (int, error)
}

// StudentRequest is the full student document used by create and update;
// updates replace the stored row wholesale.
type StudentRequest struct {
	StudentID      string `json:"student_id" validate:"required"`
	FirstName      string `json:"first_name" validate:"required"`
	LastName       string `json:"last_name" validate:"required"`
	DateOfBirth    string `json:"date_of_birth" validate:"required"`
	Gender         string `json:"gender" validate:"required"`
	ContactNumber  string `json:"contact_number" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Address        string `json:"address" validate:"required"`
	EnrollmentDate string `json:"enrollment_date" validate:"required"`
	Status         string `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo       studentRepository
	payments   studentRefCounter
	attendance studentRefCounter
	grades     studentRefCounter
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, payments, attendance, grades studentRefCounter, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, payments: payments, attendance: attendance, grades: grades, validator: validate, logger: logger}
}

// List returns every student.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid student id")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student after uniqueness checks.
func (s *StudentService) Create(ctx context.Context, req StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.buildStudent(req)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByID(ctx, student.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student id")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("student %s already exists", student.StudentID))
	}

	taken, err := s.repo.ExistsByEmail(ctx, student.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
	}

	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.logger.Info("student created", zap.String("student_id", student.StudentID))
	return student, nil
}

// Update fully replaces a student document keyed by its id.
func (s *StudentService) Update(ctx context.Context, id string, req StudentRequest) (*models.Student, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid student id")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	student, err := s.buildStudent(req)
	if err != nil {
		return nil, err
	}
	student.StudentID = id

	// Email re-validated only when it changed from the stored value.
	if !strings.EqualFold(student.Email, existing.Email) {
		taken, err := s.repo.ExistsByEmail(ctx, student.Email, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student email")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
		}
	}

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	s.logger.Info("student updated", zap.String("student_id", id))
	return student, nil
}

// Delete removes a student unless dependent rows still reference it.
func (s *StudentService) Delete(ctx context.Context, id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "invalid student id")
	}
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !exists {
		return "", appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	if err := s.checkDependents(ctx, id); err != nil {
		return "", err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.logger.Info("student deleted", zap.String("student_id", id))
	return fmt.Sprintf("Student %s deleted successfully", id), nil
}

func (s *StudentService) checkDependents(ctx context.Context, id string) error {
	checks := []struct {
		name  string
		count func(context.Context, string) (int, error)
	}{
		{"payments", s.payments.CountByStudent},
		{"attendance records", s.attendance.CountByStudent},
		{"grades", s.grades.CountByStudent},
	}
	for _, check := range checks {
		count, err := check.count(ctx, id)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student dependents")
		}
		if count > 0 {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("student %s still has %d %s", id, count, check.name))
		}
	}
	return nil
}

func (s *StudentService) buildStudent(req StudentRequest) (*models.Student, error) {
	birthDate, err := normalizeDate(req.DateOfBirth)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date_of_birth")
	}
	enrollmentDate, err := normalizeDate(req.EnrollmentDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment_date")
	}
	status := models.StudentStatus(req.Status)
	if status == "" {
		status = models.StudentActive
	}
	return &models.Student{
		StudentID:      req.StudentID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		DateOfBirth:    birthDate,
		Gender:         req.Gender,
		ContactNumber:  req.ContactNumber,
		Email:          req.Email,
		Address:        req.Address,
		EnrollmentDate: enrollmentDate,
		Status:         status,
	}, nil
}
