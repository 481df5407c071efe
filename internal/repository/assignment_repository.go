package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ruchikageeminda97/tms-api/internal/models"
)

// AssignmentRepository manages persistence for teacher assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = `assignment_id, teacher_id, class_id, assignment_date`

// List returns all assignments in storage order.
func (r *AssignmentRepository) List(ctx context.Context) ([]models.TeacherAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM teacher_assignments`, assignmentColumns)
	assignments := []models.TeacherAssignment{}
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// FindByID fetches an assignment by its natural key.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.TeacherAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM teacher_assignments WHERE assignment_id = $1`, assignmentColumns)
	var assignment models.TeacherAssignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// FirstByClass returns the first assignment referencing a class, or
// sql.ErrNoRows when there is none. Aggregate views use it as "the" teacher.
func (r *AssignmentRepository) FirstByClass(ctx context.Context, classID string) (*models.TeacherAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM teacher_assignments WHERE class_id = $1 LIMIT 1`, assignmentColumns)
	var assignment models.TeacherAssignment
	if err := r.db.GetContext(ctx, &assignment, query, classID); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ExistsByID checks whether an assignment id is present.
func (r *AssignmentRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	const query = `SELECT 1 FROM teacher_assignments WHERE assignment_id = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check assignment id: %w", err)
	}
	return true, nil
}

// CountByTeacher reports how many assignments reference a teacher.
func (r *AssignmentRepository) CountByTeacher(ctx context.Context, teacherID string) (int, error) {
	const query = `SELECT COUNT(*) FROM teacher_assignments WHERE teacher_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, teacherID); err != nil {
		return 0, fmt.Errorf("count assignments by teacher: %w", err)
	}
	return count, nil
}

// CountByClass reports how many assignments reference a class.
func (r *AssignmentRepository) CountByClass(ctx context.Context, classID string) (int, error) {
	const query = `SELECT COUNT(*) FROM teacher_assignments WHERE class_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classID); err != nil {
		return 0, fmt.Errorf("count assignments by class: %w", err)
	}
	return count, nil
}

// Create inserts a new assignment record.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.TeacherAssignment) error {
	const query = `INSERT INTO teacher_assignments (assignment_id, teacher_id, class_id, assignment_date)
        VALUES (:assignment_id, :teacher_id, :class_id, :assignment_date)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Update fully replaces an existing assignment document.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.TeacherAssignment) error {
	const query = `UPDATE teacher_assignments SET teacher_id = :teacher_id, class_id = :class_id, assignment_date = :assignment_date WHERE assignment_id = :assignment_id`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment row.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM teacher_assignments WHERE assignment_id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}
