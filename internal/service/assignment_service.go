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

type assignmentRepository interface {
	List(ctx context.Context) ([]models.TeacherAssignment, error)
	FindByID(ctx context.Context, id string) (*models.TeacherAssignment, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, assignment *models.TeacherAssignment) error
	Update(ctx context.Context, assignment *models.TeacherAssignment) error
	Delete(ctx context.Context, id string) error
}

type teacherChecker interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
}

type classChecker interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
}

// AssignmentRequest is the full assignment document used by create and
// update.
type AssignmentRequest struct {
	AssignmentID   string `json:"assignment_id" validate:"required"`
	TeacherID      string `json:"teacher_id" validate:"required"`
	ClassID        string `json:"class_id" validate:"required"`
	AssignmentDate string `json:"assignment_date" validate:"required"`
}

// AssignmentService handles teacher assignment use-cases.
type AssignmentService struct {
	repo      assignmentRepository
	teachers  teacherChecker
	classes   classChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(repo assignmentRepository, teachers teacherChecker, classes classChecker, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, teachers: teachers, classes: classes, validator: validate, logger: logger}
}

// List returns every teacher assignment.
func (s *AssignmentService) List(ctx context.Context) ([]models.TeacherAssignment, error) {
	assignments, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// Get returns an assignment by id.
func (s *AssignmentService) Get(ctx context.Context, id string) (*models.TeacherAssignment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid assignment id")
	}
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// Create registers a new assignment. Both ends of the link must exist.
func (s *AssignmentService) Create(ctx context.Context, req AssignmentRequest) (*models.TeacherAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	exists, err := s.repo.ExistsByID(ctx, req.AssignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate assignment id")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("assignment %s already exists", req.AssignmentID))
	}

	if err := s.checkReferences(ctx, req.TeacherID, req.ClassID); err != nil {
		return nil, err
	}

	assignment, err := buildAssignment(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	s.logger.Info("assignment created",
		zap.String("assignment_id", assignment.AssignmentID),
		zap.String("teacher_id", assignment.TeacherID),
		zap.String("class_id", assignment.ClassID))
	return assignment, nil
}

// Update fully replaces an assignment document keyed by its id.
func (s *AssignmentService) Update(ctx context.Context, id string, req AssignmentRequest) (*models.TeacherAssignment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid assignment id")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate assignment id")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}

	if err := s.checkReferences(ctx, req.TeacherID, req.ClassID); err != nil {
		return nil, err
	}

	assignment, err := buildAssignment(req)
	if err != nil {
		return nil, err
	}
	assignment.AssignmentID = id
	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}
	s.logger.Info("assignment updated", zap.String("assignment_id", id))
	return assignment, nil
}

// Delete removes an assignment. Assignments have no dependents.
func (s *AssignmentService) Delete(ctx context.Context, id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "invalid assignment id")
	}
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate assignment id")
	}
	if !exists {
		return "", appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	s.logger.Info("assignment deleted", zap.String("assignment_id", id))
	return fmt.Sprintf("Assignment %s deleted successfully", id), nil
}

func (s *AssignmentService) checkReferences(ctx context.Context, teacherID, classID string) error {
	found, err := s.teachers.ExistsByID(ctx, teacherID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate teacher id")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
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

func buildAssignment(req AssignmentRequest) (*models.TeacherAssignment, error) {
	date, err := normalizeDate(req.AssignmentDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment_date")
	}
	return &models.TeacherAssignment{
		AssignmentID:   req.AssignmentID,
		TeacherID:      req.TeacherID,
		ClassID:        req.ClassID,
		AssignmentDate: date,
	}, nil
}
