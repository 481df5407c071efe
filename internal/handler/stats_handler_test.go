package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ruchikageeminda97/tms-api/internal/models"
	"github.com/ruchikageeminda97/tms-api/internal/repository"
	"github.com/ruchikageeminda97/tms-api/internal/service"
	"github.com/ruchikageeminda97/tms-api/pkg/config"
)

type fakeStatsRepo struct {
	counts models.EntityCounts
	paid   float64
}

func (f *fakeStatsRepo) EntityCounts(ctx context.Context) (*models.EntityCounts, error) {
	cp := f.counts
	return &cp, nil
}

func (f *fakeStatsRepo) SumPaidOn(ctx context.Context, date string) (float64, error) {
	return f.paid, nil
}

type fakeDayClasses struct {
	rows    []repository.RawClass
	lastDay string
}

func (f *fakeDayClasses) ListByDayAndStatus(ctx context.Context, day string, status models.ClassStatus) ([]repository.RawClass, error) {
	f.lastDay = day
	return f.rows, nil
}

type fakeDayAttendance struct{}

func (f *fakeDayAttendance) ListByClassAndDate(ctx context.Context, classID, date string) ([]models.Attendance, error) {
	return nil, nil
}

type fakeAssignmentLookup struct{}

func (f *fakeAssignmentLookup) FirstByClass(ctx context.Context, classID string) (*models.TeacherAssignment, error) {
	return nil, sql.ErrNoRows
}

func newStatsHandlerFixture(repo *fakeStatsRepo, classes *fakeDayClasses) *StatsHandler {
	svc := service.NewStatsService(repo, classes, &fakeDayAttendance{}, &fakeAssignmentLookup{},
		nil, nil, config.StatsConfig{}, zap.NewNop())
	return NewStatsHandler(svc)
}

func TestStatsHandlerCounts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStatsHandlerFixture(&fakeStatsRepo{counts: models.EntityCounts{Students: 7}}, &fakeDayClasses{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/stats/counts", nil)

	handler.Counts(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope studentEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var counts models.EntityCounts
	require.NoError(t, json.Unmarshal(envelope.Data, &counts))
	assert.Equal(t, 7, counts.Students)
}

func TestStatsHandlerTodayClassesPassesDay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	classes := &fakeDayClasses{}
	handler := newStatsHandlerFixture(&fakeStatsRepo{}, classes)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/stats/today-classes?day=Saturday", nil)

	handler.TodayClasses(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Saturday", classes.lastDay)
}

func TestStatsHandlerTodayIncome(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStatsHandlerFixture(&fakeStatsRepo{paid: 12500}, &fakeDayClasses{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/stats/today-income", nil)

	handler.TodayIncome(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope studentEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var income models.TodayIncome
	require.NoError(t, json.Unmarshal(envelope.Data, &income))
	assert.Equal(t, 12500.0, income.TodayIncome)
}
