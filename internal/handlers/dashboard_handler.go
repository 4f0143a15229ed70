package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"servicelog/internal/models"
	"servicelog/internal/observability"
	"servicelog/internal/services"
)

// DashboardHandler serves the aggregated dashboard views. Every endpoint
// fetches the full live table through the cache and reduces it in memory.
//
// Fetch failures degrade per view: the response keeps its shape with zero
// data and carries an error field, so the dashboard renders "no data" instead
// of breaking. Hard transport failures on write endpoints still return 5xx.
type DashboardHandler struct {
	data    *services.DataService
	reports *services.ReportService
	logger  *observability.Logger
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(data *services.DataService, reports *services.ReportService, logger *observability.Logger) *DashboardHandler {
	return &DashboardHandler{data: data, reports: reports, logger: logger}
}

// loadCalls fetches the live table, logging failures. The bool reports
// whether data is usable; callers then emit a degraded payload.
func (h *DashboardHandler) loadCalls(c *gin.Context) ([]models.ServiceCall, bool) {
	calls, err := h.data.ServiceLogs(c.Request.Context())
	if err != nil {
		h.logger.Error(c.Request.Context(), "Failed to load service calls for dashboard", err, map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		_ = c.Error(err)
		return nil, false
	}
	return calls, true
}

// GetSummary handles GET /v1/dashboard/summary
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	calls, ok := h.loadCalls(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"total":                0,
			"status_counts":        gin.H{},
			"last_30_days":         0,
			"prior_30_days":        0,
			"trend_delta":          0,
			"mean_resolution_days": 0,
			"error":                "data unavailable",
		})
		return
	}
	c.JSON(http.StatusOK, h.reports.Summary(calls, time.Now()))
}

// GetUrgent handles GET /v1/dashboard/urgent
func (h *DashboardHandler) GetUrgent(c *gin.Context) {
	calls, ok := h.loadCalls(c)
	if !ok {
		empty := services.UrgentList{Entries: []services.UrgentEntry{}}
		c.JSON(http.StatusOK, gin.H{"overdue": empty, "on_hold": empty, "error": "data unavailable"})
		return
	}
	now := time.Now()
	c.JSON(http.StatusOK, gin.H{
		"overdue": h.reports.OverdueCalls(calls, now),
		"on_hold": h.reports.OnHoldCalls(calls, now),
	})
}

// GetTrends handles GET /v1/dashboard/trends
func (h *DashboardHandler) GetTrends(c *gin.Context) {
	calls, ok := h.loadCalls(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"daily":            []services.DailyCount{},
			"weekly_by_status": []services.WeeklyStatusCount{},
			"error":            "data unavailable",
		})
		return
	}
	now := time.Now()
	c.JSON(http.StatusOK, gin.H{
		"daily":            h.reports.DailySeries(calls, now),
		"weekly_by_status": h.reports.WeeklyStatusSeries(calls, now),
	})
}

// GetDistributions handles GET /v1/dashboard/distributions
func (h *DashboardHandler) GetDistributions(c *gin.Context) {
	calls, ok := h.loadCalls(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"call_types":        []services.CategoryCount{},
			"warranty_statuses": []services.CategoryCount{},
			"error":             "data unavailable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"call_types":        h.reports.CallTypeDistribution(calls),
		"warranty_statuses": h.reports.WarrantyDistribution(calls),
	})
}

// GetTechnicianRollup handles GET /v1/dashboard/technicians
func (h *DashboardHandler) GetTechnicianRollup(c *gin.Context) {
	calls, ok := h.loadCalls(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"rollup": []services.Rollup{}, "error": "data unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rollup": h.reports.TechnicianRollup(calls, time.Now())})
}

// GetCustomerRollup handles GET /v1/dashboard/customers
func (h *DashboardHandler) GetCustomerRollup(c *gin.Context) {
	calls, ok := h.loadCalls(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"rollup": []services.Rollup{}, "error": "data unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rollup": h.reports.CustomerRollup(calls, time.Now())})
}

// GetRecentActivity handles GET /v1/dashboard/recent
func (h *DashboardHandler) GetRecentActivity(c *gin.Context) {
	calls, ok := h.loadCalls(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"calls": []models.ServiceCall{}, "error": "data unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": h.reports.RecentActivity(calls)})
}

// GetInstrumentInsights handles GET /v1/dashboard/instruments
func (h *DashboardHandler) GetInstrumentInsights(c *gin.Context) {
	calls, callsOK := h.loadCalls(c)

	instruments, err := h.data.Instruments(c.Request.Context())
	if err != nil {
		h.logger.Error(c.Request.Context(), "Failed to load instruments for dashboard", err, nil)
		_ = c.Error(err)
	}

	payload := gin.H{
		"warranty_expiring": []models.Instrument{},
	}
	if callsOK {
		if top, found := h.reports.MostServicedInstrument(calls); found {
			payload["most_serviced"] = top
		}
	}
	if err == nil {
		payload["warranty_expiring"] = h.reports.WarrantyExpiringSoon(instruments, time.Now())
	}
	if err != nil || !callsOK {
		payload["error"] = "data unavailable"
	}
	c.JSON(http.StatusOK, payload)
}

// Refresh handles POST /v1/dashboard/refresh
func (h *DashboardHandler) Refresh(c *gin.Context) {
	h.data.Refresh(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"cache_version": h.data.CacheVersion()})
}
