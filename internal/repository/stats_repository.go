package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ruchikageeminda97/tms-api/internal/models"
)

// StatsRepository serves the read-only aggregate queries. The individual
// counts are independent statements, so they are not snapshot-consistent
// with each other when writes race the read.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs a StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// EntityCounts returns the cardinality of each entity collection.
func (r *StatsRepository) EntityCounts(ctx context.Context) (*models.EntityCounts, error) {
	counts := &models.EntityCounts{}
	targets := []struct {
		table string
		dest  *int
	}{
		{"students", &counts.Students},
		{"teachers", &counts.Teachers},
		{"subjects", &counts.Subjects},
		{"classes", &counts.Classes},
		{"teacher_assignments", &counts.TeacherAssignments},
		{"payments", &counts.Payments},
		{"attendance", &counts.Attendance},
		{"grades", &counts.Grades},
	}
	for _, target := range targets {
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, target.table)
		if err := r.db.GetContext(ctx, target.dest, query); err != nil {
			return nil, fmt.Errorf("count %s: %w", target.table, err)
		}
	}
	return counts, nil
}

// SumPaidOn sums the amounts of Paid payments dated the given day.
func (r *StatsRepository) SumPaidOn(ctx context.Context, date string) (float64, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE payment_date = $1 AND status = $2`
	var total float64
	if err := r.db.GetContext(ctx, &total, query, date, models.PaymentPaid); err != nil {
		return 0, fmt.Errorf("sum payments on %s: %w", date, err)
	}
	return total, nil
}
