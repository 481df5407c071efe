package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepositoryEntityCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	tables := []struct {
		name  string
		count int
	}{
		{"students", 10},
		{"teachers", 4},
		{"subjects", 6},
		{"classes", 8},
		{"teacher_assignments", 8},
		{"payments", 120},
		{"attendance", 300},
		{"grades", 90},
	}
	for _, table := range tables {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM " + table.name)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(table.count))
	}

	counts, err := repo.EntityCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, counts.Students)
	assert.Equal(t, 8, counts.Classes)
	assert.Equal(t, 120, counts.Payments)
	assert.Equal(t, 90, counts.Grades)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRepositorySumPaidOn(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(amount), 0) FROM payments WHERE payment_date = $1 AND status = $2")).
		WithArgs("2024-03-05", "Paid").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(7500.0))

	total, err := repo.SumPaidOn(context.Background(), "2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, 7500.0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
