package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ruchikageeminda97/tms-api/internal/models"
)

// PaymentRepository manages persistence for payment records.
//
// Payments carry a surrogate row id alongside the PAYnnn identifier because
// the identifier is allocated without transactional isolation: duplicates and
// malformed values can exist until the repair job reassigns them, so
// payment_id cannot be the primary key.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `payment_id, student_id, class_id, amount, payment_date, month, year, status`

// RawPayment mirrors a payment row including its surrogate id, with a
// nullable payment_id so the repair job can see malformed rows.
type RawPayment struct {
	RowID     int64   `db:"id"`
	PaymentID *string `db:"payment_id"`
}

// List returns all payments in storage order.
func (r *PaymentRepository) List(ctx context.Context) ([]models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments ORDER BY id`, paymentColumns)
	payments := []models.Payment{}
	if err := r.db.SelectContext(ctx, &payments, query); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// ListForPeriod returns payments filtered by optional month and year.
func (r *PaymentRepository) ListForPeriod(ctx context.Context, month, year string) ([]models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE 1=1`, paymentColumns)
	args := []interface{}{}
	if month != "" {
		args = append(args, month)
		query += fmt.Sprintf(` AND month = $%d`, len(args))
	}
	if year != "" {
		args = append(args, year)
		query += fmt.Sprintf(` AND year = $%d`, len(args))
	}
	query += ` ORDER BY id`
	payments := []models.Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, fmt.Errorf("list payments for period: %w", err)
	}
	return payments, nil
}

// ListRaw returns every payment row id with its identifier, in storage order.
func (r *PaymentRepository) ListRaw(ctx context.Context) ([]RawPayment, error) {
	const query = `SELECT id, payment_id FROM payments ORDER BY id`
	rows := []RawPayment{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list raw payments: %w", err)
	}
	return rows, nil
}

// FindByID fetches a payment by its PAYnnn identifier.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE payment_id = $1 LIMIT 1`, paymentColumns)
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// ExistsByID checks whether a payment identifier is taken.
func (r *PaymentRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	const query = `SELECT 1 FROM payments WHERE payment_id = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check payment id: %w", err)
	}
	return true, nil
}

// LatestID returns the greatest well-formed PAYnnn identifier, or
// sql.ErrNoRows when none exists. Zero padding makes longer ids sort higher.
func (r *PaymentRepository) LatestID(ctx context.Context) (string, error) {
	const query = `SELECT payment_id FROM payments WHERE payment_id ~ '^PAY[0-9]+$' ORDER BY LENGTH(payment_id) DESC, payment_id DESC LIMIT 1`
	var id string
	if err := r.db.GetContext(ctx, &id, query); err != nil {
		return "", err
	}
	return id, nil
}

// CountByStudent reports how many payments reference a student.
func (r *PaymentRepository) CountByStudent(ctx context.Context, studentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM payments WHERE student_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID); err != nil {
		return 0, fmt.Errorf("count payments by student: %w", err)
	}
	return count, nil
}

// CountByClass reports how many payments reference a class.
func (r *PaymentRepository) CountByClass(ctx context.Context, classID string) (int, error) {
	const query = `SELECT COUNT(*) FROM payments WHERE class_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classID); err != nil {
		return 0, fmt.Errorf("count payments by class: %w", err)
	}
	return count, nil
}

// Create inserts a new payment record.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	const query = `INSERT INTO payments (payment_id, student_id, class_id, amount, payment_date, month, year, status)
        VALUES (:payment_id, :student_id, :class_id, :amount, :payment_date, :month, :year, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// Update fully replaces an existing payment document keyed by payment_id.
func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	const query = `UPDATE payments SET student_id = :student_id, class_id = :class_id, amount = :amount, payment_date = :payment_date, month = :month, year = :year, status = :status WHERE payment_id = :payment_id`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return nil
}

// Delete removes a payment row.
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM payments WHERE payment_id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}

// ReassignID rewrites the identifier of the row addressed by its surrogate id.
// Used by the repair job only.
func (r *PaymentRepository) ReassignID(ctx context.Context, rowID int64, paymentID string) error {
	const query = `UPDATE payments SET payment_id = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, paymentID, rowID); err != nil {
		return fmt.Errorf("reassign payment id for row %d: %w", rowID, err)
	}
	return nil
}
