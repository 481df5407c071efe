package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruchikageeminda97/tms-api/internal/models"
)

func TestClassRepositoryListByDayAndStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	rows := sqlmock.NewRows([]string{"class_id", "class_name", "subject_id", "day", "start_time", "end_time", "room_number", "capacity", "status"}).
		AddRow("CLS001", "Combined Maths", "SUB001", "Saturday", "08:00", "10:00", nil, 30, "Ongoing").
		AddRow("CLS002", nil, nil, "Saturday", nil, nil, nil, nil, "Ongoing")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT class_id, class_name, subject_id, day, start_time, end_time, room_number, capacity, status FROM classes WHERE day = $1 AND status = $2")).
		WithArgs("Saturday", "Ongoing").
		WillReturnRows(rows)

	classes, err := repo.ListByDayAndStatus(context.Background(), "Saturday", models.ClassOngoing)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, "Combined Maths", *classes[0].ClassName)
	assert.Nil(t, classes[1].ClassName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryBackfillFields(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	// Columns are sorted so the generated statement is deterministic.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE classes SET class_name = $1, day = $2 WHERE class_id = $3")).
		WithArgs("Unnamed Class", "Monday", "CLS002").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.BackfillFields(context.Background(), "CLS002", map[string]interface{}{
		"day":        "Monday",
		"class_name": "Unnamed Class",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryBackfillFieldsNoop(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	require.NoError(t, repo.BackfillFields(context.Background(), "CLS001", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("INSERT INTO classes").
		WithArgs("CLS001", "Combined Maths", "SUB001", "Saturday", "08:00", "10:00", nil, 30, "Ongoing").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &models.Class{
		ClassID:   "CLS001",
		ClassName: "Combined Maths",
		SubjectID: "SUB001",
		Day:       "Saturday",
		StartTime: "08:00",
		EndTime:   "10:00",
		Capacity:  30,
		Status:    models.ClassOngoing,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCountBySubject(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM classes WHERE subject_id = $1")).
		WithArgs("SUB001").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountBySubject(context.Background(), "SUB001")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
