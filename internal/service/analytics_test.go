package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saiza/notehub/internal/cache"
	"github.com/saiza/notehub/internal/domain/audit"
	"github.com/saiza/notehub/internal/domain/user"
	"github.com/saiza/notehub/internal/repo/memory"
	"github.com/saiza/notehub/internal/service"
)

func seedEvents(t *testing.T, logs *memory.AuditLogsRepo, actions ...audit.Action) {
	t.Helper()

	for _, a := range actions {
		_, err := logs.Insert(context.Background(), audit.Event{
			Action:    a,
			UserID:    "user-1",
			UserEmail: "alice@example.com",
			IPAddress: "127.0.0.1",
		})

		if err != nil {
			t.Fatalf("seed insert: %v", err)
		}
	}
}

func TestTrack(t *testing.T) {
	rec := &recorderStub{}
	analytics := service.NewAnalytics(memory.NewAuditLogsRepo(), memory.NewUsersRepo(), rec, nil, testLogger())

	err := analytics.Track(context.Background(), audit.Actor{ID: "user-1", Email: "alice@example.com"}, "view_pdf", "note-9", "opened")

	if err != nil {
		t.Fatalf("Track: %v", err)
	}

	got := rec.recorded()

	if len(got) != 1 || got[0] != audit.ActionViewPDF {
		t.Fatalf("recorded actions = %v, want [VIEW_PDF]", got)
	}
}

func TestTrackUnknownAction(t *testing.T) {
	rec := &recorderStub{}
	analytics := service.NewAnalytics(memory.NewAuditLogsRepo(), memory.NewUsersRepo(), rec, nil, testLogger())

	err := analytics.Track(context.Background(), audit.Actor{}, "DELETE_EVERYTHING", "", "")

	if !errors.Is(err, audit.ErrUnknownAction) {
		t.Fatalf("Track err = %v, want ErrUnknownAction", err)
	}

	if len(rec.recorded()) != 0 {
		t.Fatal("unknown action must not be recorded")
	}
}

func TestDashboardStats(t *testing.T) {
	logs := memory.NewAuditLogsRepo()
	users := memory.NewUsersRepo()
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := users.Create(ctx, email, "hash", "Someone", user.RoleUser)

		if err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	seedEvents(t, logs,
		audit.ActionViewPDF, audit.ActionViewPDF, audit.ActionViewPDF,
		audit.ActionDownloadPDF, audit.ActionDownloadPDF,
		audit.ActionLogin,
	)

	analytics := service.NewAnalytics(logs, users, &recorderStub{}, nil, testLogger())

	stats, err := analytics.DashboardStats(ctx)

	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}

	if stats.TotalUsers != 2 {
		t.Errorf("TotalUsers = %d, want 2", stats.TotalUsers)
	}

	if stats.TotalViews != 3 {
		t.Errorf("TotalViews = %d, want 3", stats.TotalViews)
	}

	if stats.TotalDownloads != 2 {
		t.Errorf("TotalDownloads = %d, want 2", stats.TotalDownloads)
	}

	if len(stats.RecentLogs) != 6 {
		t.Fatalf("RecentLogs length = %d, want 6", len(stats.RecentLogs))
	}

	// newest first: the LOGIN went in last
	if stats.RecentLogs[0].Action != audit.ActionLogin {
		t.Errorf("RecentLogs[0].Action = %q, want LOGIN", stats.RecentLogs[0].Action)
	}

	// a trailing window of 7 days spans 8 calendar-day buckets
	if len(stats.TrafficByDay) != 8 {
		t.Fatalf("TrafficByDay length = %d, want 8", len(stats.TrafficByDay))
	}

	var total int64

	for i, day := range stats.TrafficByDay {
		if day.Date == "" {
			t.Errorf("TrafficByDay[%d] has empty date", i)
		}

		if i > 0 && day.Date <= stats.TrafficByDay[i-1].Date {
			t.Errorf("TrafficByDay not ordered oldest first at %d: %q after %q", i, day.Date, stats.TrafficByDay[i-1].Date)
		}

		total += day.Count
	}

	if total != 6 {
		t.Errorf("TrafficByDay total = %d, want 6", total)
	}
}

type auditStoreFake struct {
	recent        func(ctx context.Context, n int) ([]audit.Event, error)
	all           func(ctx context.Context) ([]audit.Event, error)
	between       func(ctx context.Context, start, end time.Time) ([]audit.Event, error)
	countByAction func(ctx context.Context, action audit.Action) (int64, error)
}

func (f *auditStoreFake) Recent(ctx context.Context, n int) ([]audit.Event, error) {
	return f.recent(ctx, n)
}

func (f *auditStoreFake) All(ctx context.Context) ([]audit.Event, error) {
	return f.all(ctx)
}

func (f *auditStoreFake) Between(ctx context.Context, start, end time.Time) ([]audit.Event, error) {
	return f.between(ctx, start, end)
}

func (f *auditStoreFake) CountByAction(ctx context.Context, action audit.Action) (int64, error) {
	return f.countByAction(ctx, action)
}

// Events at the very first and very last second of a UTC day must land in
// that day's bucket, not a neighbour's.
func TestTrafficByDayUTCDayEdges(t *testing.T) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	firstSecondToday := today
	lastSecondYesterday := today.Add(-time.Second)

	store := &auditStoreFake{
		recent: func(ctx context.Context, n int) ([]audit.Event, error) {
			return nil, nil
		},
		all: func(ctx context.Context) ([]audit.Event, error) {
			return nil, nil
		},
		countByAction: func(ctx context.Context, action audit.Action) (int64, error) {
			return 0, nil
		},
		between: func(ctx context.Context, start, end time.Time) ([]audit.Event, error) {
			return []audit.Event{
				{Action: audit.ActionViewPDF, Timestamp: lastSecondYesterday},
				{Action: audit.ActionViewPDF, Timestamp: firstSecondToday},
			}, nil
		},
	}

	analytics := service.NewAnalytics(store, memory.NewUsersRepo(), &recorderStub{}, nil, testLogger())

	stats, err := analytics.DashboardStats(context.Background())

	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}

	wantToday := today.Format("2006-01-02")
	wantYesterday := today.AddDate(0, 0, -1).Format("2006-01-02")

	counts := make(map[string]int64, len(stats.TrafficByDay))

	for _, day := range stats.TrafficByDay {
		counts[day.Date] = day.Count
	}

	if counts[wantToday] != 1 {
		t.Errorf("bucket %s = %d, want 1 (00:00:00 event)", wantToday, counts[wantToday])
	}

	if counts[wantYesterday] != 1 {
		t.Errorf("bucket %s = %d, want 1 (23:59:59 event)", wantYesterday, counts[wantYesterday])
	}

	var total int64

	for _, day := range stats.TrafficByDay {
		total += day.Count
	}

	if total != 2 {
		t.Errorf("bucket total = %d, want 2 (no event double-counted or lost)", total)
	}
}

func TestDashboardStatsRecentLimit(t *testing.T) {
	logs := memory.NewAuditLogsRepo()

	for i := 0; i < 24; i++ {
		seedEvents(t, logs, audit.ActionViewPDF)
	}

	seedEvents(t, logs, audit.ActionDownloadPDF)

	analytics := service.NewAnalytics(logs, memory.NewUsersRepo(), &recorderStub{}, nil, testLogger())

	stats, err := analytics.DashboardStats(context.Background())

	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}

	if len(stats.RecentLogs) != 20 {
		t.Fatalf("RecentLogs length = %d, want the 20-entry cap", len(stats.RecentLogs))
	}

	// newest first, so the late DOWNLOAD_PDF leads
	if stats.RecentLogs[0].Action != audit.ActionDownloadPDF {
		t.Errorf("RecentLogs[0].Action = %q, want DOWNLOAD_PDF", stats.RecentLogs[0].Action)
	}
}

func TestDashboardStatsCached(t *testing.T) {
	logs := memory.NewAuditLogsRepo()
	users := memory.NewUsersRepo()
	ctx := context.Background()

	seedEvents(t, logs, audit.ActionViewPDF)

	analytics := service.NewAnalytics(logs, users, &recorderStub{}, cache.New(time.Minute), testLogger())

	first, err := analytics.DashboardStats(ctx)

	if err != nil {
		t.Fatalf("first DashboardStats: %v", err)
	}

	if first.TotalViews != 1 {
		t.Fatalf("TotalViews = %d, want 1", first.TotalViews)
	}

	seedEvents(t, logs, audit.ActionViewPDF)

	second, err := analytics.DashboardStats(ctx)

	if err != nil {
		t.Fatalf("second DashboardStats: %v", err)
	}

	// within the TTL the cached snapshot is served
	if second.TotalViews != 1 {
		t.Errorf("TotalViews = %d after cached read, want 1", second.TotalViews)
	}
}

func TestAllLogsNewestFirst(t *testing.T) {
	logs := memory.NewAuditLogsRepo()

	seedEvents(t, logs, audit.ActionSignup, audit.ActionLogin, audit.ActionViewPDF)

	analytics := service.NewAnalytics(logs, memory.NewUsersRepo(), &recorderStub{}, nil, testLogger())

	got, err := analytics.AllLogs(context.Background())

	if err != nil {
		t.Fatalf("AllLogs: %v", err)
	}

	want := []audit.Action{audit.ActionViewPDF, audit.ActionLogin, audit.ActionSignup}

	if len(got) != len(want) {
		t.Fatalf("AllLogs length = %d, want %d", len(got), len(want))
	}

	for i, a := range want {
		if got[i].Action != a {
			t.Errorf("AllLogs[%d].Action = %q, want %q", i, got[i].Action, a)
		}
	}
}
