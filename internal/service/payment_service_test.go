package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ruchikageeminda97/tms-api/internal/models"
)

type mockPaymentRepo struct {
	items    map[string]*models.Payment
	latest   string
	existErr error
}

func (m *mockPaymentRepo) List(ctx context.Context) ([]models.Payment, error) {
	out := []models.Payment{}
	for _, p := range m.items {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockPaymentRepo) ListForPeriod(ctx context.Context, month, year string) ([]models.Payment, error) {
	out := []models.Payment{}
	for _, p := range m.items {
		if (month == "" || p.Month == month) && (year == "" || p.Year == year) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	if p, ok := m.items[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPaymentRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	if m.existErr != nil {
		return false, m.existErr
	}
	_, ok := m.items[id]
	return ok, nil
}

func (m *mockPaymentRepo) LatestID(ctx context.Context) (string, error) {
	if m.latest == "" {
		return "", sql.ErrNoRows
	}
	return m.latest, nil
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	if m.items == nil {
		m.items = make(map[string]*models.Payment)
	}
	cp := *payment
	m.items[payment.PaymentID] = &cp
	return nil
}

func (m *mockPaymentRepo) Update(ctx context.Context, payment *models.Payment) error {
	cp := *payment
	m.items[payment.PaymentID] = &cp
	return nil
}

func (m *mockPaymentRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func validPaymentRequest() PaymentRequest {
	return PaymentRequest{
		StudentID:   "STU001",
		ClassID:     "CLS001",
		Amount:      4500,
		PaymentDate: "2024-03-05",
		Month:       "March",
		Year:        "2024",
	}
}

func newPaymentService(repo *mockPaymentRepo) *PaymentService {
	return NewPaymentService(repo, &stubChecker{exists: true}, &stubChecker{exists: true}, validator.New(), zap.NewNop())
}

func TestPaymentServiceCreateAllocatesFirstID(t *testing.T) {
	repo := &mockPaymentRepo{}
	svc := newPaymentService(repo)

	payment, err := svc.Create(context.Background(), validPaymentRequest())
	require.NoError(t, err)
	assert.Equal(t, "PAY001", payment.PaymentID)
	assert.Equal(t, models.PaymentPending, payment.Status)
}

func TestPaymentServiceCreateContinuesSequence(t *testing.T) {
	repo := &mockPaymentRepo{
		items:  map[string]*models.Payment{"PAY007": {PaymentID: "PAY007"}},
		latest: "PAY007",
	}
	svc := newPaymentService(repo)

	payment, err := svc.Create(context.Background(), validPaymentRequest())
	require.NoError(t, err)
	assert.Equal(t, "PAY008", payment.PaymentID)
}

func TestPaymentServiceCreateSkipsTakenCandidate(t *testing.T) {
	// A row above the reported latest forces the allocator to probe forward.
	repo := &mockPaymentRepo{
		items: map[string]*models.Payment{
			"PAY002": {PaymentID: "PAY002"},
			"PAY003": {PaymentID: "PAY003"},
		},
		latest: "PAY001",
	}
	svc := newPaymentService(repo)

	payment, err := svc.Create(context.Background(), validPaymentRequest())
	require.NoError(t, err)
	assert.Equal(t, "PAY004", payment.PaymentID)
}

func TestPaymentServiceCreateAllocatorExhausted(t *testing.T) {
	items := make(map[string]*models.Payment)
	for i := 1; i <= 15; i++ {
		id := fmt.Sprintf("PAY%03d", i)
		items[id] = &models.Payment{PaymentID: id}
	}
	repo := &mockPaymentRepo{items: items, latest: "PAY001"}
	svc := newPaymentService(repo)

	_, err := svc.Create(context.Background(), validPaymentRequest())
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
}

func TestPaymentServiceCreateUnknownStudent(t *testing.T) {
	repo := &mockPaymentRepo{}
	svc := NewPaymentService(repo, &stubChecker{exists: false}, &stubChecker{exists: true}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), validPaymentRequest())
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.Empty(t, repo.items)
}

func TestPaymentServiceCreateRejectsNonPositiveAmount(t *testing.T) {
	svc := newPaymentService(&mockPaymentRepo{})

	req := validPaymentRequest()
	req.Amount = 0
	_, err := svc.Create(context.Background(), req)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestPaymentServiceListForPeriod(t *testing.T) {
	repo := &mockPaymentRepo{items: map[string]*models.Payment{
		"PAY001": {PaymentID: "PAY001", Month: "March", Year: "2024"},
		"PAY002": {PaymentID: "PAY002", Month: "April", Year: "2024"},
	}}
	svc := newPaymentService(repo)

	payments, err := svc.List(context.Background(), "March", "2024")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "PAY001", payments[0].PaymentID)
}

func TestPaymentServiceUpdateNotFound(t *testing.T) {
	svc := newPaymentService(&mockPaymentRepo{})

	_, err := svc.Update(context.Background(), "PAY404", validPaymentRequest())
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestPaymentServiceUpdateKeepsID(t *testing.T) {
	repo := &mockPaymentRepo{items: map[string]*models.Payment{
		"PAY001": {PaymentID: "PAY001", Amount: 1000},
	}}
	svc := newPaymentService(repo)

	req := validPaymentRequest()
	req.Status = "Paid"
	payment, err := svc.Update(context.Background(), "PAY001", req)
	require.NoError(t, err)
	assert.Equal(t, "PAY001", payment.PaymentID)
	assert.Equal(t, models.PaymentPaid, payment.Status)
}

func TestPaymentServiceDelete(t *testing.T) {
	repo := &mockPaymentRepo{items: map[string]*models.Payment{
		"PAY001": {PaymentID: "PAY001"},
	}}
	svc := newPaymentService(repo)

	msg, err := svc.Delete(context.Background(), "PAY001")
	require.NoError(t, err)
	assert.Contains(t, msg, "PAY001")
	assert.Empty(t, repo.items)
}
