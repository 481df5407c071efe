package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ruchikageeminda97/tms-api/internal/models"
	"github.com/ruchikageeminda97/tms-api/internal/repository"
	"github.com/ruchikageeminda97/tms-api/pkg/config"
	appErrors "github.com/ruchikageeminda97/tms-api/pkg/errors"
)

const (
	statsCountsKey     = "stats:counts"
	statsIncomeKeyFmt  = "stats:today_income:%s"
	statsClassesKeyFmt = "stats:today_classes:%s"
	statsKeyPattern    = "stats:*"
)

type statsRepository interface {
	EntityCounts(ctx context.Context) (*models.EntityCounts, error)
	SumPaidOn(ctx context.Context, date string) (float64, error)
}

type dayClassLister interface {
	ListByDayAndStatus(ctx context.Context, day string, status models.ClassStatus) ([]repository.RawClass, error)
}

type dayAttendanceLister interface {
	ListByClassAndDate(ctx context.Context, classID, date string) ([]models.Attendance, error)
}

type assignmentLookup interface {
	FirstByClass(ctx context.Context, classID string) (*models.TeacherAssignment, error)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// StatsService serves the aggregate views. Results are cached in Redis for a
// short TTL; every successful mutation elsewhere invalidates the whole
// stats keyspace.
type StatsService struct {
	stats       statsRepository
	classes     dayClassLister
	attendance  dayAttendanceLister
	assignments assignmentLookup
	cache       statsCache
	metrics     *MetricsService
	cfg         config.StatsConfig
	logger      *zap.Logger
}

// NewStatsService constructs the stats service. cache and metrics may be
// nil, which disables caching and cache instrumentation respectively.
func NewStatsService(
	stats statsRepository,
	classes dayClassLister,
	attendance dayAttendanceLister,
	assignments assignmentLookup,
	cache statsCache,
	metrics *MetricsService,
	cfg config.StatsConfig,
	logger *zap.Logger,
) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		stats:       stats,
		classes:     classes,
		attendance:  attendance,
		assignments: assignments,
		cache:       cache,
		metrics:     metrics,
		cfg:         cfg,
		logger:      logger,
	}
}

// Counts returns the row count of every entity collection.
func (s *StatsService) Counts(ctx context.Context) (*models.EntityCounts, error) {
	var cached models.EntityCounts
	if s.cacheGet(ctx, statsCountsKey, &cached) {
		return &cached, nil
	}

	counts, err := s.stats.EntityCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count entities")
	}
	s.cacheSet(ctx, statsCountsKey, counts)
	return counts, nil
}

// TodayIncome sums the Paid payments dated today.
func (s *StatsService) TodayIncome(ctx context.Context) (*models.TodayIncome, error) {
	date := today()
	key := fmt.Sprintf(statsIncomeKeyFmt, date)

	var cached models.TodayIncome
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	total, err := s.stats.SumPaidOn(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum today's income")
	}
	income := &models.TodayIncome{TodayIncome: total, Date: date}
	s.cacheSet(ctx, key, income)
	return income, nil
}

// TodayClasses returns the Ongoing classes scheduled for the given weekday
// (defaulting to today's), each joined with today's attendance and its
// teacher assignment. Rows with unusable core fields are skipped with a
// warning rather than failing the whole view.
func (s *StatsService) TodayClasses(ctx context.Context, day string) (*models.TodayClassesResponse, error) {
	date := today()
	if day == "" {
		day = time.Now().Weekday().String()
	}
	key := fmt.Sprintf(statsClassesKeyFmt, date+":"+day)

	var cached models.TodayClassesResponse
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	rows, err := s.classes.ListByDayAndStatus(ctx, day, models.ClassOngoing)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list today's classes")
	}

	response := &models.TodayClassesResponse{TodayClasses: []models.TodayClass{}, Date: date}
	for _, row := range rows {
		entry, ok := s.buildTodayClass(row)
		if !ok {
			continue
		}

		attendance, err := s.attendance.ListByClassAndDate(ctx, row.ClassID, date)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load today's attendance")
		}
		entry.Attendance = attendance

		assignment, err := s.assignments.FirstByClass(ctx, row.ClassID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher assignment")
		}
		entry.TeacherAssignment = assignment

		response.TodayClasses = append(response.TodayClasses, *entry)
	}

	s.cacheSet(ctx, key, response)
	return response, nil
}

// Invalidate drops every cached stats entry. Called after successful writes.
func (s *StatsService) Invalidate(ctx context.Context) {
	if s.cache == nil || !s.cfg.CacheEnabled {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, statsKeyPattern); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}
}

// buildTodayClass converts a raw row into the view entry. Rows missing the
// name, subject or day fields are unusable and reported false.
func (s *StatsService) buildTodayClass(row repository.RawClass) (*models.TodayClass, bool) {
	if row.ClassName == nil || row.SubjectID == nil || row.Day == nil || row.Status == nil {
		s.logger.Warn("skipping class with missing fields", zap.String("class_id", row.ClassID))
		return nil, false
	}
	return &models.TodayClass{
		ClassID:    row.ClassID,
		ClassName:  *row.ClassName,
		SubjectID:  *row.SubjectID,
		Day:        *row.Day,
		StartTime:  row.StartTime,
		EndTime:    row.EndTime,
		RoomNumber: row.RoomNumber,
		Capacity:   row.Capacity,
		Status:     models.ClassStatus(*row.Status),
		Attendance: []models.Attendance{},
	}, true
}

func (s *StatsService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil || !s.cfg.CacheEnabled {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		s.metrics.RecordCacheOperation(true)
		return true
	}
	s.metrics.RecordCacheOperation(false)
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("stats cache read failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (s *StatsService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil || !s.cfg.CacheEnabled {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("stats cache write failed", zap.String("key", key), zap.Error(err))
	}
}
