package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ruchikageeminda97/tms-api/internal/models"
)

type mockAttendanceRepo struct {
	items map[string]*models.Attendance
}

func (m *mockAttendanceRepo) List(ctx context.Context) ([]models.Attendance, error) {
	out := []models.Attendance{}
	for _, a := range m.items {
		out = append(out, *a)
	}
	return out, nil
}

func (m *mockAttendanceRepo) FindByID(ctx context.Context, id string) (*models.Attendance, error) {
	if a, ok := m.items[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAttendanceRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, ok := m.items[id]
	return ok, nil
}

func (m *mockAttendanceRepo) Create(ctx context.Context, record *models.Attendance) error {
	if m.items == nil {
		m.items = make(map[string]*models.Attendance)
	}
	cp := *record
	m.items[record.AttendanceID] = &cp
	return nil
}

func (m *mockAttendanceRepo) Update(ctx context.Context, record *models.Attendance) error {
	cp := *record
	m.items[record.AttendanceID] = &cp
	return nil
}

func (m *mockAttendanceRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func validAttendanceRequest() AttendanceRequest {
	return AttendanceRequest{
		AttendanceID: "ATT001",
		StudentID:    "STU001",
		ClassID:      "CLS001",
		Date:         "2024-03-02",
		Status:       "Present",
	}
}

func TestAttendanceServiceCreate(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, &stubChecker{exists: true}, &stubChecker{exists: true}, validator.New(), zap.NewNop())

	record, err := svc.Create(context.Background(), validAttendanceRequest())
	require.NoError(t, err)
	assert.Equal(t, "ATT001", record.AttendanceID)
	assert.Equal(t, models.AttendanceStatus("Present"), record.Status)
}

func TestAttendanceServiceCreateRequiresStatus(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, &stubChecker{exists: true}, &stubChecker{exists: true}, validator.New(), zap.NewNop())

	req := validAttendanceRequest()
	req.Status = ""
	_, err := svc.Create(context.Background(), req)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestAttendanceServiceCreateRejectsUnknownStatus(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, &stubChecker{exists: true}, &stubChecker{exists: true}, validator.New(), zap.NewNop())

	req := validAttendanceRequest()
	req.Status = "Late"
	_, err := svc.Create(context.Background(), req)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestAttendanceServiceCreateUnknownStudent(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, &stubChecker{exists: false}, &stubChecker{exists: true}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), validAttendanceRequest())
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestAttendanceServiceUpdateNotFound(t *testing.T) {
	svc := NewAttendanceService(&mockAttendanceRepo{}, &stubChecker{exists: true}, &stubChecker{exists: true}, validator.New(), zap.NewNop())

	_, err := svc.Update(context.Background(), "ATT404", validAttendanceRequest())
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}
