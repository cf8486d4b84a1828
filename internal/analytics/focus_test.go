package analytics

import (
	"strings"
	"testing"
	"time"

	"github.com/goodtune/zengenius/internal/storage"
)

func TestAnalyzeFocusNoRatedSessions(t *testing.T) {
	if r := AnalyzeFocus(nil, testNow); r != nil {
		t.Errorf("expected nil report for no sessions, got %+v", r)
	}
	records := []storage.StudySession{{UserID: "u", CreatedAt: testNow}, session(0, testNow)}
	if r := AnalyzeFocus(records, testNow); r != nil {
		t.Errorf("expected nil report for unrated sessions, got %+v", r)
	}
}

func TestAnalyzeFocus(t *testing.T) {
	at := func(daysAgo, hour int) time.Time {
		d := testNow.AddDate(0, 0, -daysAgo)
		return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
	}
	records := []storage.StudySession{
		session(9, at(1, 9)),
		session(8, at(2, 10)),
		session(2, at(20, 14)),
		session(3, at(21, 19)),
	}

	r := AnalyzeFocus(records, testNow)
	if r == nil {
		t.Fatal("expected report")
	}
	if r.Average != 5.5 {
		t.Errorf("expected average 5.5, got %v", r.Average)
	}
	if r.Max != 9 || r.Min != 2 {
		t.Errorf("expected max 9 min 2, got %d/%d", r.Max, r.Min)
	}
	if r.RecentAverage != 8.5 {
		t.Errorf("expected recent average 8.5, got %v", r.RecentAverage)
	}
	if r.Trend != FocusIncrease {
		t.Errorf("expected increase, got %s", r.Trend)
	}
	if r.BestTime != "morning" {
		t.Errorf("expected morning, got %s", r.BestTime)
	}
	if r.Distribution != (FocusDistribution{Low: 2, High: 2}) {
		t.Errorf("unexpected distribution %+v", r.Distribution)
	}
	if r.RatedSessions != 4 || r.HighShare != 50 {
		t.Errorf("expected 4 rated / 50%%, got %d / %v", r.RatedSessions, r.HighShare)
	}
	if !containsInsight(r.Insights, "improving") {
		t.Errorf("expected improving insight, got %v", r.Insights)
	}
}

func TestAnalyzeFocusNoRecentSessionsIsStable(t *testing.T) {
	old := testNow.AddDate(0, 0, -30)
	r := AnalyzeFocus([]storage.StudySession{session(3, old), session(4, old)}, testNow)
	if r.Trend != FocusSteady {
		t.Errorf("expected stable, got %s", r.Trend)
	}
	if r.RecentAverage != r.Average {
		t.Errorf("expected recent average to fall back to overall, got %v vs %v", r.RecentAverage, r.Average)
	}
	if !containsInsight(r.Insights, "peak focus time") {
		t.Errorf("expected low-average hint, got %v", r.Insights)
	}
}

func TestAnalyzeFocusDecrease(t *testing.T) {
	records := []storage.StudySession{
		session(2, testNow.Add(-time.Hour)),
		session(9, testNow.AddDate(0, 0, -14)),
		session(9, testNow.AddDate(0, 0, -15)),
	}
	r := AnalyzeFocus(records, testNow)
	if r.Trend != FocusDecrease {
		t.Errorf("expected decrease, got %s", r.Trend)
	}
	if !containsInsight(r.Insights, "breaks") {
		t.Errorf("expected break advice, got %v", r.Insights)
	}
}

func TestDescribeFocus(t *testing.T) {
	tests := []struct {
		level     int
		wantLevel int
		label     string
		action    string
		warning   bool
	}{
		{-3, 1, "Very Low", "Take a break first", true},
		{1, 1, "Very Low", "Take a break first", true},
		{3, 3, "Low", "Review mode recommended", true},
		{4, 4, "Low", "Review mode recommended", false},
		{5, 5, "Medium", "Standard study session", false},
		{8, 8, "Good", "Deep learning mode", false},
		{10, 10, "Excellent", "Challenge mode activated", false},
		{42, 10, "Excellent", "Challenge mode activated", false},
	}

	for _, tt := range tests {
		got := DescribeFocus(tt.level)
		if got.Level != tt.wantLevel || got.Label != tt.label || got.Action != tt.action || got.LowWarning != tt.warning {
			t.Errorf("DescribeFocus(%d) = %+v", tt.level, got)
		}
		if got.Description == "" || got.Message == "" {
			t.Errorf("DescribeFocus(%d) missing text: %+v", tt.level, got)
		}
	}
}

func containsInsight(insights []string, fragment string) bool {
	for _, s := range insights {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}
