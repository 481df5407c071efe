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

type gradeRepository interface {
	List(ctx context.Context) ([]models.Grade, error)
	FindByID(ctx context.Context, id string) (*models.Grade, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id string) error
}

// GradeRequest is the full grade document used by create and update.
type GradeRequest struct {
	GradeID   string  `json:"grade_id" validate:"required"`
	StudentID string  `json:"student_id" validate:"required"`
	ClassID   string  `json:"class_id" validate:"required"`
	SubjectID string  `json:"subject_id" validate:"required"`
	Score     float64 `json:"score" validate:"min=0,max=100"`
	Date      string  `json:"date" validate:"required"`
}

// GradeService handles grade use-cases.
type GradeService struct {
	repo      gradeRepository
	students  studentChecker
	classes   classChecker
	subjects  subjectChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs the grade service.
func NewGradeService(repo gradeRepository, students studentChecker, classes classChecker, subjects subjectChecker, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{repo: repo, students: students, classes: classes, subjects: subjects, validator: validate, logger: logger}
}

// List returns every grade.
func (s *GradeService) List(ctx context.Context) ([]models.Grade, error) {
	grades, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// Get returns a grade by id.
func (s *GradeService) Get(ctx context.Context, id string) (*models.Grade, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid grade id")
	}
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	return grade, nil
}

// Create registers a new grade. All three referenced rows must exist.
func (s *GradeService) Create(ctx context.Context, req GradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	exists, err := s.repo.ExistsByID(ctx, req.GradeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate grade id")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("grade %s already exists", req.GradeID))
	}

	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	grade, err := buildGrade(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade")
	}
	s.logger.Info("grade created",
		zap.String("grade_id", grade.GradeID),
		zap.String("student_id", grade.StudentID),
		zap.Float64("score", grade.Score))
	return grade, nil
}

// Update fully replaces a grade document keyed by its id.
func (s *GradeService) Update(ctx context.Context, id string, req GradeRequest) (*models.Grade, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid grade id")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate grade id")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
	}

	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	grade, err := buildGrade(req)
	if err != nil {
		return nil, err
	}
	grade.GradeID = id
	if err := s.repo.Update(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}
	s.logger.Info("grade updated", zap.String("grade_id", id))
	return grade, nil
}

// Delete removes a grade.
func (s *GradeService) Delete(ctx context.Context, id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "invalid grade id")
	}
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate grade id")
	}
	if !exists {
		return "", appErrors.Clone(appErrors.ErrNotFound, "grade not found")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grade")
	}
	s.logger.Info("grade deleted", zap.String("grade_id", id))
	return fmt.Sprintf("Grade %s deleted successfully", id), nil
}

func (s *GradeService) checkReferences(ctx context.Context, req GradeRequest) error {
	found, err := s.students.ExistsByID(ctx, req.StudentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student id")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	found, err = s.classes.ExistsByID(ctx, req.ClassID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate class id")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	found, err = s.subjects.ExistsByID(ctx, req.SubjectID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate subject id")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}
	return nil
}

func buildGrade(req GradeRequest) (*models.Grade, error) {
	date, err := normalizeDate(req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}
	return &models.Grade{
		GradeID:   req.GradeID,
		StudentID: req.StudentID,
		ClassID:   req.ClassID,
		SubjectID: req.SubjectID,
		Score:     req.Score,
		Date:      date,
	}, nil
}
