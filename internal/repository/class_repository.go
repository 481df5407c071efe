package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ruchikageeminda97/tms-api/internal/models"
)

// ClassRepository manages persistence for class records.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

const classColumns = `class_id, class_name, subject_id, day, start_time, end_time, room_number, capacity, status`

// RawClass mirrors a class row with every repairable column nullable.
// The repair job scans these and backfills missing values.
type RawClass struct {
	ClassID    string  `db:"class_id"`
	ClassName  *string `db:"class_name"`
	SubjectID  *string `db:"subject_id"`
	Day        *string `db:"day"`
	StartTime  *string `db:"start_time"`
	EndTime    *string `db:"end_time"`
	RoomNumber *string `db:"room_number"`
	Capacity   *int    `db:"capacity"`
	Status     *string `db:"status"`
}

// List returns all classes in storage order.
func (r *ClassRepository) List(ctx context.Context) ([]models.Class, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes`, classColumns)
	classes := []models.Class{}
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// ListRaw returns every class row with nullable columns, in storage order.
func (r *ClassRepository) ListRaw(ctx context.Context) ([]RawClass, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes`, classColumns)
	rows := []RawClass{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list raw classes: %w", err)
	}
	return rows, nil
}

// ListByDayAndStatus returns the raw class rows scheduled for the given day.
// Rows are raw because day-scoped aggregate views tolerate missing fields.
func (r *ClassRepository) ListByDayAndStatus(ctx context.Context, day string, status models.ClassStatus) ([]RawClass, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes WHERE day = $1 AND status = $2`, classColumns)
	rows := []RawClass{}
	if err := r.db.SelectContext(ctx, &rows, query, day, status); err != nil {
		return nil, fmt.Errorf("list classes for day %s: %w", day, err)
	}
	return rows, nil
}

// FindByID fetches a class by its natural key.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes WHERE class_id = $1`, classColumns)
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// ExistsByID checks whether a class id is present.
func (r *ClassRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	const query = `SELECT 1 FROM classes WHERE class_id = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check class id: %w", err)
	}
	return true, nil
}

// CountBySubject reports how many classes reference a subject.
func (r *ClassRepository) CountBySubject(ctx context.Context, subjectID string) (int, error) {
	const query = `SELECT COUNT(*) FROM classes WHERE subject_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, subjectID); err != nil {
		return 0, fmt.Errorf("count classes by subject: %w", err)
	}
	return count, nil
}

// Create inserts a new class record.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	const query = `INSERT INTO classes (class_id, class_name, subject_id, day, start_time, end_time, room_number, capacity, status)
        VALUES (:class_id, :class_name, :subject_id, :day, :start_time, :end_time, :room_number, :capacity, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update fully replaces an existing class document.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	const query = `UPDATE classes SET class_name = :class_name, subject_id = :subject_id, day = :day, start_time = :start_time, end_time = :end_time, room_number = :room_number, capacity = :capacity, status = :status WHERE class_id = :class_id`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

// Delete removes a class row.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM classes WHERE class_id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return nil
}

// BackfillFields writes the provided column values for a class row. Only the
// given columns are touched; callers pass columns already verified missing so
// reruns never overwrite present values.
func (r *ClassRepository) BackfillFields(ctx context.Context, classID string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	columns := make([]string, 0, len(fields))
	for column := range fields {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	assignments := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns)+1)
	for i, column := range columns {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, i+1))
		args = append(args, fields[column])
	}
	args = append(args, classID)

	query := fmt.Sprintf(`UPDATE classes SET %s WHERE class_id = $%d`, strings.Join(assignments, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("backfill class %s: %w", classID, err)
	}
	return nil
}
