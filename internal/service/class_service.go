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

type classRepository interface {
	List(ctx context.Context) ([]models.Class, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error
}

type subjectChecker interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
}

// classRefCounter counts rows in a dependent collection that reference a
// class.
type classRefCounter interface {
	CountByClass(ctx context.Context, classID string) (int, error)
}

type classAssignmentFinder interface {
	FirstByClass(ctx context.Context, classID string) (*models.TeacherAssignment, error)
	CountByClass(ctx context.Context, classID string) (int, error)
}

type classAttendanceReader interface {
	DistinctStudentsByClass(ctx context.Context, classID string) ([]string, error)
	CountByClass(ctx context.Context, classID string) (int, error)
}

type studentBatchFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Student, error)
}

// ClassRequest is the full class document used by create and update.
type ClassRequest struct {
	ClassID    string  `json:"class_id" validate:"required"`
	ClassName  string  `json:"class_name" validate:"required"`
	SubjectID  string  `json:"subject_id" validate:"required"`
	Day        string  `json:"day" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime  string  `json:"start_time" validate:"required"`
	EndTime    string  `json:"end_time" validate:"required"`
	RoomNumber *string `json:"room_number" validate:"omitempty"`
	Capacity   int     `json:"capacity" validate:"required,gt=0"`
	Status     string  `json:"status" validate:"omitempty,oneof=Ongoing Completed Cancelled"`
}

// ClassService handles class use-cases, including the roster view.
type ClassService struct {
	repo        classRepository
	subjects    subjectChecker
	assignments classAssignmentFinder
	payments    classRefCounter
	attendance  classAttendanceReader
	grades      classRefCounter
	students    studentBatchFinder
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewClassService constructs the class service.
func NewClassService(
	repo classRepository,
	subjects subjectChecker,
	assignments classAssignmentFinder,
	payments classRefCounter,
	attendance classAttendanceReader,
	grades classRefCounter,
	students studentBatchFinder,
	validate *validator.Validate,
	logger *zap.Logger,
) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{
		repo:        repo,
		subjects:    subjects,
		assignments: assignments,
		payments:    payments,
		attendance:  attendance,
		grades:      grades,
		students:    students,
		validator:   validate,
		logger:      logger,
	}
}

// List returns every class.
func (s *ClassService) List(ctx context.Context) ([]models.Class, error) {
	classes, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// Get returns a class by id.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid class id")
	}
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// Create registers a new class. The referenced subject must already exist.
func (s *ClassService) Create(ctx context.Context, req ClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	exists, err := s.repo.ExistsByID(ctx, req.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate class id")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("class %s already exists", req.ClassID))
	}

	if err := s.checkSubject(ctx, req.SubjectID); err != nil {
		return nil, err
	}

	class := buildClass(req)
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	s.logger.Info("class created", zap.String("class_id", class.ClassID), zap.String("subject_id", class.SubjectID))
	return class, nil
}

// Update fully replaces a class document keyed by its id.
func (s *ClassService) Update(ctx context.Context, id string, req ClassRequest) (*models.Class, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid class id")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate class id")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	if err := s.checkSubject(ctx, req.SubjectID); err != nil {
		return nil, err
	}

	class := buildClass(req)
	class.ClassID = id
	if err := s.repo.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	s.logger.Info("class updated", zap.String("class_id", id))
	return class, nil
}

// Delete removes a class unless dependent rows still reference it.
func (s *ClassService) Delete(ctx context.Context, id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "invalid class id")
	}
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate class id")
	}
	if !exists {
		return "", appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	checks := []struct {
		name  string
		count func(context.Context, string) (int, error)
	}{
		{"teacher assignments", s.assignments.CountByClass},
		{"payments", s.payments.CountByClass},
		{"attendance records", s.attendance.CountByClass},
		{"grades", s.grades.CountByClass},
	}
	for _, check := range checks {
		count, err := check.count(ctx, id)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class dependents")
		}
		if count > 0 {
			return "", appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("class %s still has %d %s", id, count, check.name))
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	s.logger.Info("class deleted", zap.String("class_id", id))
	return fmt.Sprintf("Class %s deleted successfully", id), nil
}

// Roster composes a class with its teacher assignment and the students that
// appear in its attendance history.
func (s *ClassService) Roster(ctx context.Context, id string) (*models.ClassRoster, error) {
	class, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	roster := &models.ClassRoster{Class: *class, Students: []models.Student{}}

	assignment, err := s.assignments.FirstByClass(ctx, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class assignment")
	}
	roster.TeacherAssignment = assignment

	studentIDs, err := s.attendance.DistinctStudentsByClass(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class attendance")
	}
	if len(studentIDs) > 0 {
		students, err := s.students.FindByIDs(ctx, studentIDs)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class students")
		}
		roster.Students = students
	}
	return roster, nil
}

func (s *ClassService) checkSubject(ctx context.Context, subjectID string) error {
	found, err := s.subjects.ExistsByID(ctx, subjectID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate subject id")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}
	return nil
}

func buildClass(req ClassRequest) *models.Class {
	status := models.ClassStatus(req.Status)
	if status == "" {
		status = models.ClassOngoing
	}
	return &models.Class{
		ClassID:    req.ClassID,
		ClassName:  req.ClassName,
		SubjectID:  req.SubjectID,
		Day:        req.Day,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		RoomNumber: req.RoomNumber,
		Capacity:   req.Capacity,
		Status:     status,
	}
}
