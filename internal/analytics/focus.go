package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/goodtune/zengenius/internal/storage"
)

// FocusDirection compares the last week of focus with the overall average.
type FocusDirection string

const (
	FocusIncrease FocusDirection = "increase"
	FocusDecrease FocusDirection = "decrease"
	FocusSteady   FocusDirection = "stable"
)

// FocusReport summarizes rated focus for the dashboard analytics card.
type FocusReport struct {
	Average       float64           `json:"average"`
	Max           int               `json:"max"`
	Min           int               `json:"min"`
	RecentAverage float64           `json:"recent_average"`
	Trend         FocusDirection    `json:"trend"`
	Distribution  FocusDistribution `json:"distribution"`
	BestTime      string            `json:"best_time"`
	RatedSessions int               `json:"rated_sessions"`
	HighShare     float64           `json:"high_share_pct"`
	Insights      []string          `json:"insights"`
}

// AnalyzeFocus builds a FocusReport, or returns nil when no session has a
// rated focus.
//
// Unlike ComputeStats this report uses three coarse buckets (morning before
// noon, afternoon before 17:00, evening otherwise) and compares the last
// seven days against the overall rated average.
func AnalyzeFocus(records []storage.StudySession, now time.Time) *FocusReport {
	var levels []int
	for i := range records {
		if f, ok := records[i].RatedFocus(); ok {
			levels = append(levels, f)
		}
	}
	if len(levels) == 0 {
		return nil
	}

	report := &FocusReport{
		Max:           levels[0],
		Min:           levels[0],
		RatedSessions: len(levels),
	}
	var sum int
	for _, f := range levels {
		sum += f
		report.Max = max(report.Max, f)
		report.Min = min(report.Min, f)
		report.Distribution.add(f)
	}
	avg := float64(sum) / float64(len(levels))

	weekAgo := now.Add(-week)
	var recentSum, recentCount int
	for i := range records {
		if records[i].CreatedAt.After(weekAgo) {
			f, _ := records[i].RatedFocus()
			recentSum += f
			recentCount++
		}
	}
	recent := avg
	if recentCount > 0 {
		recent = float64(recentSum) / float64(recentCount)
	}

	switch {
	case recent > avg:
		report.Trend = FocusIncrease
	case recent < avg:
		report.Trend = FocusDecrease
	default:
		report.Trend = FocusSteady
	}

	report.Average = round1(avg)
	report.RecentAverage = round1(recent)
	report.BestTime = coarseBestTime(records, now.Location())
	report.HighShare = math.Round(float64(report.Distribution.High) / float64(len(levels)) * 100)
	report.Insights = focusInsights(report)

	return report
}

func coarseBestTime(records []storage.StudySession, loc *time.Location) string {
	order := []string{"morning", "afternoon", "evening"}
	buckets := make(map[string]focusAccumulator, len(order))
	for i := range records {
		hour := records[i].CreatedAt.In(loc).Hour()
		slot := "evening"
		if hour < 12 {
			slot = "morning"
		} else if hour < 17 {
			slot = "afternoon"
		}
		f, _ := records[i].RatedFocus()
		acc := buckets[slot]
		acc.count++
		acc.total += f
		buckets[slot] = acc
	}

	best := ""
	bestAverage := -1.0
	for _, slot := range order {
		acc, ok := buckets[slot]
		if !ok {
			continue
		}
		if avg := acc.mean(); avg > bestAverage {
			bestAverage = avg
			best = slot
		}
	}
	if best == "" {
		return "morning"
	}
	return best
}

func focusInsights(r *FocusReport) []string {
	insights := []string{
		fmt.Sprintf("Your best focus time is in the %s", r.BestTime),
		fmt.Sprintf("You have %d high-focus sessions (%.0f%% of total)", r.Distribution.High, r.HighShare),
	}
	switch r.Trend {
	case FocusIncrease:
		insights = append(insights, "Your focus is improving! Keep up the good work!")
	case FocusDecrease:
		insights = append(insights, "Consider taking more breaks or adjusting your study environment")
	}
	if r.Average < 5 {
		insights = append(insights, fmt.Sprintf("Try studying during your peak focus time (%s) for better results", r.BestTime))
	}
	return insights
}

// FocusLevel describes a single focus rating for display.
type FocusLevel struct {
	Level       int    `json:"level"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Action      string `json:"action"`
	Message     string `json:"message"`
	LowWarning  bool   `json:"low_warning"`
}

// DescribeFocus returns the label and recommendation for a focus rating.
// Values outside 1-10 are clamped.
func DescribeFocus(level int) FocusLevel {
	level = min(max(level, storage.MinFocus), storage.MaxFocus)
	fl := FocusLevel{Level: level, LowWarning: level <= 3}

	switch {
	case level <= 2:
		fl.Label = "Very Low"
		fl.Description = "Consider taking a break or doing light review"
	case level <= 4:
		fl.Label = "Low"
		fl.Description = "Good for reviewing familiar material"
	case level <= 6:
		fl.Label = "Medium"
		fl.Description = "Perfect for moderate study sessions"
	case level <= 8:
		fl.Label = "Good"
		fl.Description = "Great for learning new concepts"
	default:
		fl.Label = "Excellent"
		fl.Description = "Ideal for challenging material"
	}

	switch {
	case level <= 2:
		fl.Action = "Take a break first"
		fl.Message = "Your focus is quite low. Consider taking a 10-minute break, having some water, or doing light stretching."
	case level <= 4:
		fl.Action = "Review mode recommended"
		fl.Message = "Your focus is low. This is perfect for reviewing flashcards or familiar material."
	case level <= 6:
		fl.Action = "Standard study session"
		fl.Message = "You have moderate focus. Good for general study sessions and PDF summarization."
	case level <= 8:
		fl.Action = "Deep learning mode"
		fl.Message = "Great focus level! Perfect for learning new concepts and creating detailed flashcards."
	default:
		fl.Action = "Challenge mode activated"
		fl.Message = "Excellent focus! This is ideal for tackling challenging material and complex topics."
	}

	return fl
}
