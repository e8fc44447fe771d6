package crowd

import (
	"math"

	"campus-crowd-backend/internal/model"
)

// LevelCounts is the number of locations at each crowd level.
type LevelCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// Total is the number of counted locations.
func (c LevelCounts) Total() int {
	return c.Low + c.Medium + c.High
}

// CountByLevel tallies locations per crowd level. Unrecognised levels are ignored.
func CountByLevel(locations []model.Location) LevelCounts {
	var counts LevelCounts
	for _, loc := range locations {
		switch loc.CrowdLevel {
		case model.CrowdLevelLow:
			counts.Low++
		case model.CrowdLevelMedium:
			counts.Medium++
		case model.CrowdLevelHigh:
			counts.High++
		}
	}
	return counts
}

// OccupancyPercent is the current count as a rounded percentage of capacity.
// It is informational only and does not feed the crowd level.
func OccupancyPercent(loc model.Location) int {
	if loc.Capacity <= 0 {
		return 0
	}
	return int(math.Round(float64(loc.CurrentCount) * 100 / float64(loc.Capacity)))
}

// Summary describes the busiest and quietest hour of one day.
type Summary struct {
	Day           string `json:"day"`
	PeakHour      int    `json:"peakHour"`
	PeakCount     int    `json:"peakCount"`
	QuietestHour  int    `json:"quietestHour"`
	QuietestCount int    `json:"quietestCount"`
}

// DaySummary scans the samples of day. Ties keep the earliest hour. ok is
// false when no sample belongs to day.
func DaySummary(samples []model.HistoricalSample, day string) (s Summary, ok bool) {
	s.Day = day
	for _, sample := range samples {
		if sample.Day != day {
			continue
		}
		if !ok {
			s.PeakHour, s.PeakCount = sample.Hour, sample.Count
			s.QuietestHour, s.QuietestCount = sample.Hour, sample.Count
			ok = true
			continue
		}
		if sample.Count > s.PeakCount {
			s.PeakHour, s.PeakCount = sample.Hour, sample.Count
		}
		if sample.Count < s.QuietestCount {
			s.QuietestHour, s.QuietestCount = sample.Hour, sample.Count
		}
	}
	return s, ok
}

// ForDay returns the samples of a single day, in hour order.
func ForDay(samples []model.HistoricalSample, day string) []model.HistoricalSample {
	out := make([]model.HistoricalSample, 0, HoursPerDay)
	for _, sample := range samples {
		if sample.Day == day {
			out = append(out, sample)
		}
	}
	return out
}
