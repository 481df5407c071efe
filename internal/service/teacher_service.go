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

type teacherRepository interface {
	List(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id string) error
}

type teacherAssignmentCounter interface {
	CountByTeacher(ctx context.Context, teacherID string) (int, error)
}

// TeacherRequest is the full teacher document used by create and update.
type TeacherRequest struct {
	TeacherID      string `json:"teacher_id" validate:"required"`
	FirstName      string `json:"first_name" validate:"required"`
	LastName       string `json:"last_name" validate:"required"`
	ContactNumber  string `json:"contact_number" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Address        string `json:"address" validate:"required"`
	HireDate       string `json:"hire_date" validate:"required"`
	Specialization string `json:"specialization" validate:"required"`
	Status         string `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

// TeacherService handles teacher use-cases.
type TeacherService struct {
	repo        teacherRepository
	assignments teacherAssignmentCounter
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTeacherService constructs the teacher service.
func NewTeacherService(repo teacherRepository, assignments teacherAssignmentCounter, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, assignments: assignments, validator: validate, logger: logger}
}

// List returns every teacher.
func (s *TeacherService) List(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, nil
}

// Get returns a teacher by id.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid teacher id")
	}
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// Create registers a new teacher after uniqueness checks.
func (s *TeacherService) Create(ctx context.Context, req TeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	teacher, err := s.buildTeacher(req)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByID(ctx, teacher.TeacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate teacher id")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("teacher %s already exists", teacher.TeacherID))
	}

	taken, err := s.repo.ExistsByEmail(ctx, teacher.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate teacher email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
	}

	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	s.logger.Info("teacher created", zap.String("teacher_id", teacher.TeacherID))
	return teacher, nil
}

// Update fully replaces a teacher document keyed by its id.
func (s *TeacherService) Update(ctx context.Context, id string, req TeacherRequest) (*models.Teacher, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid teacher id")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	teacher, err := s.buildTeacher(req)
	if err != nil {
		return nil, err
	}
	teacher.TeacherID = id

	if !strings.EqualFold(teacher.Email, existing.Email) {
		taken, err := s.repo.ExistsByEmail(ctx, teacher.Email, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate teacher email")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
		}
	}

	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	s.logger.Info("teacher updated", zap.String("teacher_id", id))
	return teacher, nil
}

// Delete removes a teacher unless assignments still reference it.
func (s *TeacherService) Delete(ctx context.Context, id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "invalid teacher id")
	}
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate teacher id")
	}
	if !exists {
		return "", appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}

	count, err := s.assignments.CountByTeacher(ctx, id)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher assignments")
	}
	if count > 0 {
		return "", appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("teacher %s still has %d assignments", id, count))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}
	s.logger.Info("teacher deleted", zap.String("teacher_id", id))
	return fmt.Sprintf("Teacher %s deleted successfully", id), nil
}

func (s *TeacherService) buildTeacher(req TeacherRequest) (*models.Teacher, error) {
	hireDate, err := normalizeDate(req.HireDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid hire_date")
	}
	status := models.TeacherStatus(req.Status)
	if status == "" {
		status = models.TeacherActive
	}
	return &models.Teacher{
		TeacherID:      req.TeacherID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		ContactNumber:  req.ContactNumber,
		Email:          req.Email,
		Address:        req.Address,
		HireDate:       hireDate,
		Specialization: req.Specialization,
		Status:         status,
	}, nil
}
