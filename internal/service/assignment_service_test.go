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

type mockAssignmentRepo struct {
	items map[string]*models.TeacherAssignment
}

func (m *mockAssignmentRepo) List(ctx context.Context) ([]models.TeacherAssignment, error) {
	out := []models.TeacherAssignment{}
	for _, a := range m.items {
		out = append(out, *a)
	}
	return out, nil
}

func (m *mockAssignmentRepo) FindByID(ctx context.Context, id string) (*models.TeacherAssignment, error) {
	if a, ok := m.items[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAssignmentRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, ok := m.items[id]
	return ok, nil
}

func (m *mockAssignmentRepo) Create(ctx context.Context, assignment *models.TeacherAssignment) error {
	if m.items == nil {
		m.items = make(map[string]*models.TeacherAssignment)
	}
	cp := *assignment
	m.items[assignment.AssignmentID] = &cp
	return nil
}

func (m *mockAssignmentRepo) Update(ctx context.Context, assignment *models.TeacherAssignment) error {
	cp := *assignment
	m.items[assignment.AssignmentID] = &cp
	return nil
}

func (m *mockAssignmentRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func validAssignmentRequest() AssignmentRequest {
	return AssignmentRequest{
		AssignmentID:   "ASG001",
		TeacherID:      "TCH001",
		ClassID:        "CLS001",
		AssignmentDate: "2024-02-01",
	}
}

func TestAssignmentServiceCreate(t *testing.T) {
	repo := &mockAssignmentRepo{}
	svc := NewAssignmentService(repo, &stubChecker{exists: true}, &stubChecker{exists: true}, validator.New(), zap.NewNop())

	assignment, err := svc.Create(context.Background(), validAssignmentRequest())
	require.NoError(t, err)
	assert.Equal(t, "ASG001", assignment.AssignmentID)
	assert.Equal(t, "2024-02-01", assignment.AssignmentDate)
}

func TestAssignmentServiceCreateUnknownTeacher(t *testing.T) {
	repo := &mockAssignmentRepo{}
	svc := NewAssignmentService(repo, &stubChecker{exists: false}, &stubChecker{exists: true}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), validAssignmentRequest())
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.Empty(t, repo.items)
}

func TestAssignmentServiceCreateUnknownClass(t *testing.T) {
	repo := &mockAssignmentRepo{}
	svc := NewAssignmentService(repo, &stubChecker{exists: true}, &stubChecker{exists: false}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), validAssignmentRequest())
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestAssignmentServiceCreateDuplicateID(t *testing.T) {
	repo := &mockAssignmentRepo{items: map[string]*models.TeacherAssignment{"ASG001": {AssignmentID: "ASG001"}}}
	svc := NewAssignmentService(repo, &stubChecker{exists: true}, &stubChecker{exists: true}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), validAssignmentRequest())
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

func TestAssignmentServiceDelete(t *testing.T) {
	repo := &mockAssignmentRepo{items: map[string]*models.TeacherAssignment{"ASG001": {AssignmentID: "ASG001"}}}
	svc := NewAssignmentService(repo, &stubChecker{exists: true}, &stubChecker{exists: true}, validator.New(), zap.NewNop())

	msg, err := svc.Delete(context.Background(), "ASG001")
	require.NoError(t, err)
	assert.Contains(t, msg, "ASG001")
	assert.Empty(t, repo.items)
}
