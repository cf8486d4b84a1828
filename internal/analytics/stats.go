// Package analytics derives dashboard statistics from study session records.
//
// Every function here is pure: it reads only its arguments and the supplied
// "now", so results are deterministic and safe to compute concurrently.
package analytics

import (
	"math"
	"time"

	"github.com/goodtune/zengenius/internal/storage"
)

// Trend describes the direction of recent focus compared to the prior window.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// UnknownMood is the distribution key used for sessions without a mood.
const UnknownMood = "Unknown"

const (
	trendWindow    = 5
	trendThreshold = 0.5
	week           = 7 * 24 * time.Hour
)

// DefaultSessionLength is the assumed duration of one study session.
const DefaultSessionLength = 30 * time.Minute

// FocusDistribution counts rated sessions per focus tier.
type FocusDistribution struct {
	Low    int `json:"low"`    // 1-3
	Medium int `json:"medium"` // 4-6
	High   int `json:"high"`   // 7-10
}

// Total returns the number of rated sessions in the distribution.
func (d FocusDistribution) Total() int {
	return d.Low + d.Medium + d.High
}

// BestTime is the time-of-day bucket with the highest mean focus.
type BestTime struct {
	Time    TimeOfDay `json:"time"`
	Average float64   `json:"average"`
}

// AggregateStats is the derived view of one user's sessions.
type AggregateStats struct {
	TotalSessions     int               `json:"total_sessions"`
	TotalFlashcards   int               `json:"total_flashcards"`
	TotalStudyHours   float64           `json:"total_study_hours"`
	AverageFocus      float64           `json:"average_focus"`
	TodaySessions     int               `json:"today_sessions"`
	WeeklyAverage     float64           `json:"weekly_average"`
	FocusTrend        Trend             `json:"focus_trend"`
	MoodDistribution  map[string]int    `json:"mood_distribution"`
	FocusDistribution FocusDistribution `json:"focus_distribution"`
	BestStudyTime     BestTime          `json:"best_study_time"`
}

// Options tunes ComputeStatsWith.
type Options struct {
	// SessionLength is used to estimate total study time.
	SessionLength time.Duration
}

// ComputeStats aggregates records using default options.
// See ComputeStatsWith.
func ComputeStats(records []storage.StudySession, now time.Time) AggregateStats {
	return ComputeStatsWith(records, now, Options{})
}

// ComputeStatsWith aggregates records for a single user.
//
// now fixes the reference instant; its location is used for the calendar day
// and for hour-of-day bucketing. Records are never re-sorted: the focus trend
// compares the last five records of the slice with the five before them, so
// the caller's ordering is part of the contract.
func ComputeStatsWith(records []storage.StudySession, now time.Time, opts Options) AggregateStats {
	if opts.SessionLength <= 0 {
		opts.SessionLength = DefaultSessionLength
	}

	stats := AggregateStats{
		TotalSessions:    len(records),
		FocusTrend:       TrendStable,
		MoodDistribution: map[string]int{},
		BestStudyTime:    BestTime{Time: Morning},
	}
	if len(records) == 0 {
		return stats
	}

	loc := now.Location()
	year, month, day := now.Date()
	weekAgo := now.Add(-week)

	var focusSum, rated, weekCount int
	for i := range records {
		r := &records[i]

		stats.TotalFlashcards += CountFlashcardMarkers(r.FlashcardText())

		if f, ok := r.RatedFocus(); ok {
			focusSum += f
			rated++
			stats.FocusDistribution.add(f)
		}

		ts := r.CreatedAt.In(loc)
		if y, m, d := ts.Date(); y == year && m == month && d == day {
			stats.TodaySessions++
		}
		if !r.CreatedAt.Before(weekAgo) {
			weekCount++
		}

		mood := r.MoodLabel()
		if mood == "" {
			mood = UnknownMood
		}
		stats.MoodDistribution[mood]++
	}

	if rated > 0 {
		stats.AverageFocus = round1(float64(focusSum) / float64(rated))
	}
	stats.WeeklyAverage = round1(float64(weekCount) / 7)
	stats.TotalStudyHours = float64(len(records)) * opts.SessionLength.Hours()
	stats.FocusTrend = computeTrend(records)
	stats.BestStudyTime = bestStudyTime(records, loc)

	return stats
}

func (d *FocusDistribution) add(focus int) {
	switch {
	case focus <= 3:
		d.Low++
	case focus <= 6:
		d.Medium++
	default:
		d.High++
	}
}

// computeTrend compares the last trendWindow records against the
// trendWindow records preceding them, by position.
func computeTrend(records []storage.StudySession) Trend {
	n := len(records)
	if n == 0 {
		return TrendStable
	}

	recentStart := max(n-trendWindow, 0)
	previousStart := max(recentStart-trendWindow, 0)

	recent := meanFocusZeroed(records[recentStart:])
	previous := recent
	if recentStart > previousStart {
		previous = meanFocusZeroed(records[previousStart:recentStart])
	}

	switch {
	case recent > previous+trendThreshold:
		return TrendImproving
	case recent < previous-trendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// meanFocusZeroed averages focus over records, counting unrated as 0.
func meanFocusZeroed(records []storage.StudySession) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum int
	for i := range records {
		f, _ := records[i].RatedFocus()
		sum += f
	}
	return float64(sum) / float64(len(records))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
