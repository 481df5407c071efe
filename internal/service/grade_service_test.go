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

type mockGradeRepo struct {
	items map[string]*models.Grade
}

func (m *mockGradeRepo) List(ctx context.Context) ([]models.Grade, error) {
	out := []models.Grade{}
	for _, g := range m.items {
		out = append(out, *g)
	}
	return out, nil
}

func (m *mockGradeRepo) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	if g, ok := m.items[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, ok := m.items[id]
	return ok, nil
}

func (m *mockGradeRepo) Create(ctx context.Context, grade *models.Grade) error {
	if m.items == nil {
		m.items = make(map[string]*models.Grade)
	}
	cp := *grade
	m.items[grade.GradeID] = &cp
	return nil
}

func (m *mockGradeRepo) Update(ctx context.Context, grade *models.Grade) error {
	cp := *grade
	m.items[grade.GradeID] = &cp
	return nil
}

func (m *mockGradeRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func validGradeRequest() GradeRequest {
	return GradeRequest{
		GradeID:   "GRD001",
		StudentID: "STU001",
		ClassID:   "CLS001",
		SubjectID: "SUB001",
		Score:     87.5,
		Date:      "2024-03-10",
	}
}

func newGradeService(repo *mockGradeRepo) *GradeService {
	return NewGradeService(repo, &stubChecker{exists: true}, &stubChecker{exists: true}, &stubChecker{exists: true}, validator.New(), zap.NewNop())
}

func TestGradeServiceCreate(t *testing.T) {
	repo := &mockGradeRepo{}
	svc := newGradeService(repo)

	grade, err := svc.Create(context.Background(), validGradeRequest())
	require.NoError(t, err)
	assert.Equal(t, "GRD001", grade.GradeID)
	assert.Equal(t, 87.5, grade.Score)
}

func TestGradeServiceCreateAcceptsBoundaryScores(t *testing.T) {
	repo := &mockGradeRepo{}
	svc := newGradeService(repo)

	req := validGradeRequest()
	req.Score = 0
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	req.GradeID = "GRD002"
	req.Score = 100
	_, err = svc.Create(context.Background(), req)
	require.NoError(t, err)
}

func TestGradeServiceCreateRejectsScoreAboveRange(t *testing.T) {
	svc := newGradeService(&mockGradeRepo{})

	req := validGradeRequest()
	req.Score = 101
	_, err := svc.Create(context.Background(), req)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestGradeServiceCreateUnknownSubject(t *testing.T) {
	repo := &mockGradeRepo{}
	svc := NewGradeService(repo, &stubChecker{exists: true}, &stubChecker{exists: true}, &stubChecker{exists: false}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), validGradeRequest())
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.Empty(t, repo.items)
}

func TestGradeServiceDelete(t *testing.T) {
	repo := &mockGradeRepo{items: map[string]*models.Grade{"GRD001": {GradeID: "GRD001"}}}
	svc := newGradeService(repo)

	msg, err := svc.Delete(context.Background(), "GRD001")
	require.NoError(t, err)
	assert.Contains(t, msg, "GRD001")
	assert.Empty(t, repo.items)
}
