package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ruchikageeminda97/tms-api/internal/models"
)

// AttendanceRepository manages persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `attendance_id, student_id, class_id, date, status`

// List returns all attendance rows in storage order.
func (r *AttendanceRepository) List(ctx context.Context) ([]models.Attendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance`, attendanceColumns)
	records := []models.Attendance{}
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// FindByID fetches an attendance row by its natural key.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.Attendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance WHERE attendance_id = $1`, attendanceColumns)
	var record models.Attendance
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByClassAndDate returns a class's attendance for a given date.
func (r *AttendanceRepository) ListByClassAndDate(ctx context.Context, classID, date string) ([]models.Attendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance WHERE class_id = $1 AND date = $2`, attendanceColumns)
	records := []models.Attendance{}
	if err := r.db.SelectContext(ctx, &records, query, classID, date); err != nil {
		return nil, fmt.Errorf("list attendance for class %s: %w", classID, err)
	}
	return records, nil
}

// DistinctStudentsByClass returns the ids of students with any attendance in
// the class.
func (r *AttendanceRepository) DistinctStudentsByClass(ctx context.Context, classID string) ([]string, error) {
	const query = `SELECT DISTINCT student_id FROM attendance WHERE class_id = $1`
	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, classID); err != nil {
		return nil, fmt.Errorf("list attendance students for class %s: %w", classID, err)
	}
	return ids, nil
}

// ExistsByID checks whether an attendance id is present.
func (r *AttendanceRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	const query = `SELECT 1 FROM attendance WHERE attendance_id = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check attendance id: %w", err)
	}
	return true, nil
}

// CountByStudent reports how many attendance rows reference a student.
func (r *AttendanceRepository) CountByStudent(ctx context.Context, studentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM attendance WHERE student_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID); err != nil {
		return 0, fmt.Errorf("count attendance by student: %w", err)
	}
	return count, nil
}

// CountByClass reports how many attendance rows reference a class.
func (r *AttendanceRepository) CountByClass(ctx context.Context, classID string) (int, error) {
	const query = `SELECT COUNT(*) FROM attendance WHERE class_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classID); err != nil {
		return 0, fmt.Errorf("count attendance by class: %w", err)
	}
	return count, nil
}

// Create inserts a new attendance record.
func (r *AttendanceRepository) Create(ctx context.Context, record *models.Attendance) error {
	const query = `INSERT INTO attendance (attendance_id, student_id, class_id, date, status)
        VALUES (:attendance_id, :student_id, :class_id, :date, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// Update fully replaces an existing attendance document.
func (r *AttendanceRepository) Update(ctx context.Context, record *models.Attendance) error {
	const query = `UPDATE attendance SET student_id = :student_id, class_id = :class_id, date = :date, status = :status WHERE attendance_id = :attendance_id`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	return nil
}

// Delete removes an attendance row.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM attendance WHERE attendance_id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return nil
}
