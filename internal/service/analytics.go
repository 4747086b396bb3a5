package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/saiza/notehub/internal/cache"
	"github.com/saiza/notehub/internal/domain/audit"
	"github.com/saiza/notehub/internal/requestctx"
)

const (
	recentLogsLimit   = 20
	trafficWindowDays = 7
	statsCacheKey     = "dashboard_stats"
)

type AuditStore interface {
	Recent(ctx context.Context, n int) ([]audit.Event, error)
	All(ctx context.Context) ([]audit.Event, error)
	Between(ctx context.Context, start, end time.Time) ([]audit.Event, error)
	CountByAction(ctx context.Context, action audit.Action) (int64, error)
}

type UserCounter interface {
	Count(ctx context.Context) (int64, error)
}

type DayCount struct {
	Date  string `json:"date"` // UTC calendar day, YYYY-MM-DD
	Count int64  `json:"count"`
}

type DashboardStats struct {
	TotalUsers     int64         `json:"totalUsers"`
	RecentLogs     []audit.Event `json:"recentLogs"`
	TotalViews     int64         `json:"totalViews"`
	TotalDownloads int64         `json:"totalDownloads"`
	TrafficByDay   []DayCount    `json:"trafficByDay"`
}

type Analytics struct {
	logs     AuditStore
	users    UserCounter
	recorder EventRecorder
	stats    *cache.Cache
	log      *slog.Logger
}

func NewAnalytics(logs AuditStore, users UserCounter, recorder EventRecorder, stats *cache.Cache, log *slog.Logger) *Analytics {
	return &Analytics{
		logs:     logs,
		users:    users,
		recorder: recorder,
		stats:    stats,
		log:      log,
	}
}

// Track records one event. The actor may be anonymous; the action string must
// be a known kind.
func (s *Analytics) Track(ctx context.Context, actor audit.Actor, actionLabel, noteID, details string) error {
	action, err := audit.ParseAction(actionLabel)

	if err != nil {
		return err
	}

	s.recorder.Record(action, actor, noteID, details, ipFrom(ctx))

	return nil
}

// DashboardStats assembles the admin dashboard aggregates. The result is
// cached briefly so dashboard auto-refresh doesn't hammer the log store.
func (s *Analytics) DashboardStats(ctx context.Context) (DashboardStats, error) {
	if s.stats != nil {
		if v, ok := s.stats.Get(statsCacheKey); ok {
			if cached, ok := v.(DashboardStats); ok {
				return cached, nil
			}
		}
	}

	totalUsers, err := s.users.Count(ctx)

	if err != nil {
		return DashboardStats{}, err
	}

	recent, err := s.logs.Recent(ctx, recentLogsLimit)

	if err != nil {
		return DashboardStats{}, err
	}

	views, err := s.logs.CountByAction(ctx, audit.ActionViewPDF)

	if err != nil {
		return DashboardStats{}, err
	}

	downloads, err := s.logs.CountByAction(ctx, audit.ActionDownloadPDF)

	if err != nil {
		return DashboardStats{}, err
	}

	traffic, err := s.trafficByDay(ctx, time.Now().UTC())

	if err != nil {
		return DashboardStats{}, err
	}

	stats := DashboardStats{
		TotalUsers:     totalUsers,
		RecentLogs:     recent,
		TotalViews:     views,
		TotalDownloads: downloads,
		TrafficByDay:   traffic,
	}

	if s.stats != nil {
		s.stats.Set(statsCacheKey, stats)
	}

	return stats, nil
}

// trafficByDay buckets the trailing 7-day window by UTC calendar day,
// oldest day first. Days without events still appear with a zero count so
// charts don't skip columns.
func (s *Analytics) trafficByDay(ctx context.Context, now time.Time) ([]DayCount, error) {
	start := now.AddDate(0, 0, -trafficWindowDays)

	events, err := s.logs.Between(ctx, start, now)

	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, trafficWindowDays+1)

	for _, e := range events {
		counts[e.Timestamp.UTC().Format("2006-01-02")]++
	}

	out := make([]DayCount, 0, trafficWindowDays+1)

	day := start.Truncate(24 * time.Hour)
	last := now.Truncate(24 * time.Hour)

	for !day.After(last) {
		key := day.Format("2006-01-02")
		out = append(out, DayCount{Date: key, Count: counts[key]})
		day = day.AddDate(0, 0, 1)
	}

	return out, nil
}

// AllLogs returns the full audit trail, newest first.
func (s *Analytics) AllLogs(ctx context.Context) ([]audit.Event, error) {
	return s.logs.All(ctx)
}

func ipFrom(ctx context.Context) string {
	ip, ok := requestctx.ClientIPFrom(ctx)

	if !ok {
		return "unknown"
	}

	return ip
}
