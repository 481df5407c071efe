package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ruchikageeminda97/tms-api/internal/service"
	"github.com/ruchikageeminda97/tms-api/pkg/response"
)

// StatsHandler exposes the aggregate view endpoints.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler constructs StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Counts godoc
// @Summary Row counts per entity collection
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/counts [get]
func (h *StatsHandler) Counts(c *gin.Context) {
	counts, err := h.stats.Counts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counts)
}

// TodayIncome godoc
// @Summary Sum of Paid payments dated today
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/today-income [get]
func (h *StatsHandler) TodayIncome(c *gin.Context) {
	income, err := h.stats.TodayIncome(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, income)
}

// TodayClasses godoc
// @Summary Ongoing classes for a weekday with today's attendance
// @Tags Stats
// @Produce json
// @Param day query string false "Weekday name, defaults to today's"
// @Success 200 {object} response.Envelope
// @Router /stats/today-classes [get]
func (h *StatsHandler) TodayClasses(c *gin.Context) {
	classes, err := h.stats.TodayClasses(c.Request.Context(), c.Query("day"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes)
}
