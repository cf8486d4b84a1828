package analytics

import (
	"time"

	"github.com/goodtune/zengenius/internal/storage"
)

// TimeOfDay is a fixed hour range used for bucketing sessions.
type TimeOfDay string

const (
	Morning   TimeOfDay = "Morning"   // 06:00-11:59
	Afternoon TimeOfDay = "Afternoon" // 12:00-16:59
	Evening   TimeOfDay = "Evening"   // 17:00-21:59
	Night     TimeOfDay = "Night"     // 22:00-05:59
)

// bucketOrder is also the tie-break order for bestStudyTime.
var bucketOrder = []TimeOfDay{Morning, Afternoon, Evening, Night}

// BucketFor maps an hour of day (0-23) to its bucket.
func BucketFor(hour int) TimeOfDay {
	switch {
	case hour >= 6 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 22:
		return Evening
	default:
		return Night
	}
}

type focusAccumulator struct {
	count int
	total int
}

func (a focusAccumulator) mean() float64 {
	if a.count == 0 {
		return 0
	}
	return float64(a.total) / float64(a.count)
}

// bestStudyTime returns the bucket with the strictly highest mean focus,
// counting unrated sessions as 0. Ties keep the earlier bucket in
// bucketOrder; with no positive mean the result is Morning / 0.
func bestStudyTime(records []storage.StudySession, loc *time.Location) BestTime {
	buckets := make(map[TimeOfDay]focusAccumulator, len(bucketOrder))
	for i := range records {
		slot := BucketFor(records[i].CreatedAt.In(loc).Hour())
		f, _ := records[i].RatedFocus()
		acc := buckets[slot]
		acc.count++
		acc.total += f
		buckets[slot] = acc
	}

	best := BestTime{Time: Morning}
	var bestAverage float64
	for _, slot := range bucketOrder {
		acc, ok := buckets[slot]
		if !ok {
			continue
		}
		if avg := acc.mean(); avg > bestAverage {
			bestAverage = avg
			best.Time = slot
		}
	}
	best.Average = round1(bestAverage)
	return best
}
