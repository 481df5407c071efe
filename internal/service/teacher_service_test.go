package service

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ruchikageeminda97/tms-api/internal/models"
)

type mockTeacherRepo struct {
	items      map[string]*models.Teacher
	emailIndex map[string]string
}

func (m *mockTeacherRepo) List(ctx context.Context) ([]models.Teacher, error) {
	out := []models.Teacher{}
	for _, t := range m.items {
		out = append(out, *t)
	}
	return out, nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := m.items[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, ok := m.items[id]
	return ok, nil
}

func (m *mockTeacherRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	if owner, ok := m.emailIndex[strings.ToLower(email)]; ok {
		if excludeID == "" || owner != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	if m.items == nil {
		m.items = make(map[string]*models.Teacher)
	}
	cp := *teacher
	m.items[teacher.TeacherID] = &cp
	return nil
}

func (m *mockTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	cp := *teacher
	m.items[teacher.TeacherID] = &cp
	return nil
}

func (m *mockTeacherRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func validTeacherRequest() TeacherRequest {
	return TeacherRequest{
		TeacherID:      "TCH001",
		FirstName:      "Sunil",
		LastName:       "Fernando",
		ContactNumber:  "0719876543",
		Email:          "sunil@example.com",
		Address:        "45 Temple Road",
		HireDate:       "2020-06-01",
		Specialization: "Mathematics",
	}
}

func TestTeacherServiceCreate(t *testing.T) {
	repo := &mockTeacherRepo{}
	svc := NewTeacherService(repo, &stubCounter{}, validator.New(), zap.NewNop())

	teacher, err := svc.Create(context.Background(), validTeacherRequest())
	require.NoError(t, err)
	assert.Equal(t, "TCH001", teacher.TeacherID)
	assert.Equal(t, models.TeacherActive, teacher.Status)
}

func TestTeacherServiceCreateDuplicateEmail(t *testing.T) {
	repo := &mockTeacherRepo{emailIndex: map[string]string{"sunil@example.com": "TCH999"}}
	svc := NewTeacherService(repo, &stubCounter{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), validTeacherRequest())
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

func TestTeacherServiceDeleteBlockedByAssignments(t *testing.T) {
	repo := &mockTeacherRepo{items: map[string]*models.Teacher{"TCH001": {TeacherID: "TCH001"}}}
	svc := NewTeacherService(repo, &stubCounter{count: 3}, validator.New(), zap.NewNop())

	_, err := svc.Delete(context.Background(), "TCH001")
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
	assert.Len(t, repo.items, 1)
}

func TestTeacherServiceDelete(t *testing.T) {
	repo := &mockTeacherRepo{items: map[string]*models.Teacher{"TCH001": {TeacherID: "TCH001"}}}
	svc := NewTeacherService(repo, &stubCounter{}, validator.New(), zap.NewNop())

	msg, err := svc.Delete(context.Background(), "TCH001")
	require.NoError(t, err)
	assert.Contains(t, msg, "TCH001")
	assert.Empty(t, repo.items)
}

func TestTeacherServiceUpdateNotFound(t *testing.T) {
	svc := NewTeacherService(&mockTeacherRepo{}, &stubCounter{}, validator.New(), zap.NewNop())

	_, err := svc.Update(context.Background(), "TCH404", validTeacherRequest())
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}
