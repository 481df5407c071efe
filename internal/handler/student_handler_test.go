package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ruchikageeminda97/tms-api/internal/models"
	"github.com/ruchikageeminda97/tms-api/internal/service"
)

type fakeStudentRepo struct {
	items map[string]*models.Student
}

func (f *fakeStudentRepo) List(ctx context.Context) ([]models.Student, error) {
	out := []models.Student{}
	for _, s := range f.items {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := f.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudentRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, ok := f.items[id]
	return ok, nil
}

func (f *fakeStudentRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return false, nil
}

func (f *fakeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if f.items == nil {
		f.items = make(map[string]*models.Student)
	}
	cp := *student
	f.items[student.StudentID] = &cp
	return nil
}

func (f *fakeStudentRepo) Update(ctx context.Context, student *models.Student) error {
	cp := *student
	f.items[student.StudentID] = &cp
	return nil
}

func (f *fakeStudentRepo) Delete(ctx context.Context, id string) error {
	delete(f.items, id)
	return nil
}

type fakeCounter struct{ count int }

func (f *fakeCounter) CountByStudent(ctx context.Context, id string) (int, error) {
	return f.count, nil
}

type studentEnvelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newStudentHandler(repo *fakeStudentRepo, counter *fakeCounter) *StudentHandler {
	svc := service.NewStudentService(repo, counter, counter, counter, nil, zap.NewNop())
	return NewStudentHandler(svc)
}

func TestStudentHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeStudentRepo{}
	handler := newStudentHandler(repo, &fakeCounter{})

	body := `{
		"student_id": "STU001",
		"first_name": "Amara",
		"last_name": "Perera",
		"date_of_birth": "2008-04-12",
		"gender": "Female",
		"contact_number": "0771234567",
		"email": "amara@example.com",
		"address": "12 Lake Road",
		"enrollment_date": "2024-01-15"
	}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/students", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.items, 1)

	var envelope studentEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var student models.Student
	require.NoError(t, json.Unmarshal(envelope.Data, &student))
	assert.Equal(t, "STU001", student.StudentID)
}

func TestStudentHandlerCreateMalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStudentHandler(&fakeStudentRepo{}, &fakeCounter{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/students", strings.NewReader("{not json"))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStudentHandler(&fakeStudentRepo{}, &fakeCounter{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/students/STU404", nil)
	c.Params = gin.Params{{Key: "id", Value: "STU404"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudentHandlerDeleteConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeStudentRepo{items: map[string]*models.Student{"STU001": {StudentID: "STU001"}}}
	handler := newStudentHandler(repo, &fakeCounter{count: 2})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/students/STU001", nil)
	c.Params = gin.Params{{Key: "id", Value: "STU001"}}

	handler.Delete(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Len(t, repo.items, 1)
}

func TestStudentHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeStudentRepo{items: map[string]*models.Student{"STU001": {StudentID: "STU001"}}}
	handler := newStudentHandler(repo, &fakeCounter{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodDelete, "/students/STU001", nil)
	c.Params = gin.Params{{Key: "id", Value: "STU001"}}

	handler.Delete(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope studentEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Contains(t, envelope.Message, "STU001")
	assert.Empty(t, repo.items)
}
