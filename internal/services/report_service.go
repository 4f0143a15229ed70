package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"servicelog/internal/config"
	"servicelog/internal/models"
	"servicelog/internal/observability"
)

// ReportService computes the dashboard views. Every method is a pure function
// over an in-memory record slice with an explicit now, so views are
// deterministic and testable without a store.
type ReportService struct {
	cfg    *config.DashboardConfig
	logger *observability.Logger
}

// NewReportService creates a ReportService with the given thresholds.
func NewReportService(cfg *config.DashboardConfig, logger *observability.Logger) *ReportService {
	return &ReportService{cfg: cfg, logger: logger}
}

// SummaryReport is the KPI header of the dashboard.
type SummaryReport struct {
	Total              int                   `json:"total"`
	StatusCounts       map[models.Status]int `json:"status_counts"`
	Last30Days         int                   `json:"last_30_days"`
	Prior30Days        int                   `json:"prior_30_days"`
	TrendDelta         int                   `json:"trend_delta"`
	MeanResolutionDays float64               `json:"mean_resolution_days"`
}

// Summary computes status counts, the month-over-month logging trend, and the
// mean resolution time over Solved calls after the outlier clamp.
func (r *ReportService) Summary(calls []models.ServiceCall, now time.Time) SummaryReport {
	report := SummaryReport{
		StatusCounts: make(map[models.Status]int, len(models.AllStatuses)),
	}
	for _, s := range models.AllStatuses {
		report.StatusCounts[s] = 0
	}

	window := r.cfg.TrendWindowDaysOrDefault()
	windowStart := now.AddDate(0, 0, -window)
	priorStart := now.AddDate(0, 0, -2*window)
	clamp := r.cfg.ResolutionClampDaysOrDefault()

	var resolutionSum, resolutionCount int
	for i := range calls {
		c := &calls[i]
		report.Total++
		report.StatusCounts[c.Status]++

		if !c.DateLogged.IsZero() {
			logged := c.DateLogged.Time
			switch {
			case logged.After(windowStart):
				report.Last30Days++
			case logged.After(priorStart):
				report.Prior30Days++
			}
		}

		if days, ok := c.ResolutionDays(); ok && days >= 0 && days <= clamp {
			resolutionSum += days
			resolutionCount++
		}
	}

	report.TrendDelta = report.Last30Days - report.Prior30Days
	if resolutionCount > 0 {
		report.MeanResolutionDays = float64(resolutionSum) / float64(resolutionCount)
	}
	return report
}

// UrgentEntry is one row of an urgent list.
type UrgentEntry struct {
	Call     models.ServiceCall `json:"call"`
	DaysOpen int                `json:"days_open"`
}

// UrgentList is a truncated urgent view plus how many rows fell off the end.
type UrgentList struct {
	Entries  []UrgentEntry `json:"entries"`
	Overflow int           `json:"overflow"`
}

// OverdueCalls lists Open calls whose days open exceed the overdue threshold,
// longest-open first, truncated to the display cap.
func (r *ReportService) OverdueCalls(calls []models.ServiceCall, now time.Time) UrgentList {
	threshold := r.cfg.OverdueAfterDaysOrDefault()

	entries := []UrgentEntry{}
	for i := range calls {
		c := &calls[i]
		if c.Status != models.StatusOpen {
			continue
		}
		days := c.DaysOpen(now)
		if days > threshold {
			entries = append(entries, UrgentEntry{Call: *c, DaysOpen: days})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DaysOpen > entries[j].DaysOpen
	})
	return truncateUrgent(entries, r.cfg.UrgentDisplayCountOrDefault())
}

// OnHoldCalls lists On_Hold calls longest-waiting first (oldest last_updated),
// truncated to the display cap.
func (r *ReportService) OnHoldCalls(calls []models.ServiceCall, now time.Time) UrgentList {
	entries := []UrgentEntry{}
	for i := range calls {
		c := &calls[i]
		if c.Status != models.StatusOnHold {
			continue
		}
		entries = append(entries, UrgentEntry{Call: *c, DaysOpen: c.DaysOpen(now)})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Call.LastUpdated.Before(entries[j].Call.LastUpdated.Time)
	})
	return truncateUrgent(entries, r.cfg.UrgentDisplayCountOrDefault())
}

func truncateUrgent(entries []UrgentEntry, limit int) UrgentList {
	if len(entries) <= limit {
		return UrgentList{Entries: entries}
	}
	return UrgentList{Entries: entries[:limit], Overflow: len(entries) - limit}
}

// DailyCount is one day of the logging time series.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DailySeries counts calls logged per day within the trailing series window.
// Days without any calls are omitted; an empty table yields an empty series.
func (r *ReportService) DailySeries(calls []models.ServiceCall, now time.Time) []DailyCount {
	windowStart := now.AddDate(0, 0, -r.cfg.SeriesWindowDaysOrDefault())

	counts := map[string]int{}
	for i := range calls {
		c := &calls[i]
		if c.DateLogged.IsZero() {
			continue
		}
		logged := c.DateLogged.Time
		if logged.Before(windowStart) || logged.After(now) {
			continue
		}
		counts[logged.Format(time.DateOnly)]++
	}

	series := make([]DailyCount, 0, len(counts))
	for day, n := range counts {
		series = append(series, DailyCount{Date: day, Count: n})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series
}

// WeeklyStatusCount is one (ISO week, status) bucket of the weekly series.
type WeeklyStatusCount struct {
	Week   string        `json:"week"`
	Status models.Status `json:"status"`
	Count  int           `json:"count"`
}

// WeeklyStatusSeries counts calls logged per (ISO week, status) within the
// trailing series window, ordered by week then status.
func (r *ReportService) WeeklyStatusSeries(calls []models.ServiceCall, now time.Time) []WeeklyStatusCount {
	windowStart := now.AddDate(0, 0, -r.cfg.SeriesWindowDaysOrDefault())

	type bucket struct {
		week   string
		status models.Status
	}
	counts := map[bucket]int{}
	for i := range calls {
		c := &calls[i]
		if c.DateLogged.IsZero() {
			continue
		}
		logged := c.DateLogged.Time
		if logged.Before(windowStart) || logged.After(now) {
			continue
		}
		year, week := logged.ISOWeek()
		counts[bucket{week: fmt.Sprintf("%d-W%02d", year, week), status: c.Status}]++
	}

	series := make([]WeeklyStatusCount, 0, len(counts))
	for b, n := range counts {
		series = append(series, WeeklyStatusCount{Week: b.week, Status: b.status, Count: n})
	}
	sort.Slice(series, func(i, j int) bool {
		if series[i].Week != series[j].Week {
			return series[i].Week < series[j].Week
		}
		return series[i].Status < series[j].Status
	})
	return series
}

// CategoryCount is one bucket of a categorical distribution. Missing values
// keep their own bucket with an empty Value rather than being dropped.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CallTypeDistribution counts calls per call_type.
func (r *ReportService) CallTypeDistribution(calls []models.ServiceCall) []CategoryCount {
	return distribution(calls, func(c *models.ServiceCall) string { return c.CallType })
}

// WarrantyDistribution counts calls per warranty_status.
func (r *ReportService) WarrantyDistribution(calls []models.ServiceCall) []CategoryCount {
	return distribution(calls, func(c *models.ServiceCall) string { return c.WarrantyStatus })
}

func distribution(calls []models.ServiceCall, key func(*models.ServiceCall) string) []CategoryCount {
	counts := map[string]int{}
	for i := range calls {
		counts[strings.TrimSpace(key(&calls[i]))]++
	}

	result := make([]CategoryCount, 0, len(counts))
	for value, n := range counts {
		result = append(result, CategoryCount{Value: value, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Value < result[j].Value
	})
	return result
}

// Rollup is one group of the per-technician or per-customer aggregation.
type Rollup struct {
	Name         string  `json:"name"`
	Total        int     `json:"total"`
	Solved       int     `json:"solved"`
	MeanDaysOpen float64 `json:"mean_days_open"`
}

// TechnicianRollup aggregates calls per technician, highest volume first,
// truncated to the rollup limit.
func (r *ReportService) TechnicianRollup(calls []models.ServiceCall, now time.Time) []Rollup {
	return r.rollup(calls, now, func(c *models.ServiceCall) string { return c.TechnicianName })
}

// CustomerRollup aggregates calls per customer, highest volume first,
// truncated to the rollup limit.
func (r *ReportService) CustomerRollup(calls []models.ServiceCall, now time.Time) []Rollup {
	return r.rollup(calls, now, func(c *models.ServiceCall) string { return c.CustomerName })
}

func (r *ReportService) rollup(calls []models.ServiceCall, now time.Time, key func(*models.ServiceCall) string) []Rollup {
	type agg struct {
		total    int
		solved   int
		daysOpen int
	}
	groups := map[string]*agg{}
	for i := range calls {
		c := &calls[i]
		name := strings.TrimSpace(key(c))
		g, ok := groups[name]
		if !ok {
			g = &agg{}
			groups[name] = g
		}
		g.total++
		if c.Status == models.StatusSolved {
			g.solved++
		}
		g.daysOpen += c.DaysOpen(now)
	}

	result := make([]Rollup, 0, len(groups))
	for name, g := range groups {
		result = append(result, Rollup{
			Name:         name,
			Total:        g.total,
			Solved:       g.solved,
			MeanDaysOpen: float64(g.daysOpen) / float64(g.total),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Total != result[j].Total {
			return result[i].Total > result[j].Total
		}
		return result[i].Name < result[j].Name
	})

	if limit := r.cfg.RollupLimitOrDefault(); len(result) > limit {
		result = result[:limit]
	}
	return result
}

// RecentActivity returns the most recently updated calls, newest first,
// truncated to the recent-activity limit.
func (r *ReportService) RecentActivity(calls []models.ServiceCall) []models.ServiceCall {
	recent := make([]models.ServiceCall, len(calls))
	copy(recent, calls)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].LastUpdated.After(recent[j].LastUpdated.Time)
	})

	if limit := r.cfg.RecentLimitOrDefault(); len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}

// MostServicedInstrument returns the instrument name with the most calls and
// its count. ok is false when there are no calls.
func (r *ReportService) MostServicedInstrument(calls []models.ServiceCall) (CategoryCount, bool) {
	buckets := distribution(calls, func(c *models.ServiceCall) string { return c.InstrumentName })
	if len(buckets) == 0 {
		return CategoryCount{}, false
	}
	return buckets[0], true
}

// WarrantyExpiringSoon lists instruments whose warranty expires within the
// lookahead window, soonest first. Instruments without an expiry are skipped.
func (r *ReportService) WarrantyExpiringSoon(instruments []models.Instrument, now time.Time) []models.Instrument {
	deadline := now.AddDate(0, 0, r.cfg.WarrantyWindowDaysOrDefault())

	expiring := []models.Instrument{}
	for i := range instruments {
		inst := instruments[i]
		if inst.WarrantyExpiry == nil || inst.WarrantyExpiry.IsZero() {
			continue
		}
		expiry := inst.WarrantyExpiry.Time
		if expiry.Before(now) || expiry.After(deadline) {
			continue
		}
		expiring = append(expiring, inst)
	}
	sort.SliceStable(expiring, func(i, j int) bool {
		return expiring[i].WarrantyExpiry.Time.Before(expiring[j].WarrantyExpiry.Time)
	})
	return expiring
}
