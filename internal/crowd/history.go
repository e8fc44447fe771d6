// Package crowd holds the pure crowd computations: synthetic occupancy
// history, location filtering and the dashboard aggregates.
package crowd

import (
	"math"
	"math/rand"

	"campus-crowd-backend/internal/model"
)

// Days is the fixed order in which the generator emits days.
var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

const (
	FirstHour = 7
	LastHour  = 22

	// HoursPerDay is the number of samples generated for each day.
	HoursPerDay = LastHour - FirstHour + 1

	weekendFactor = 0.6
)

// Rand is the random source used for jitter. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// DefaultRand draws from the process-wide generator and is safe for
// concurrent use.
var DefaultRand Rand = globalRand{}

// GenerateHistory resolves the type of locationID in locations and returns a
// synthetic week of hourly samples for it. An unknown id is not an error: it
// gets the generic curve.
func GenerateHistory(locations []model.Location, locationID string, r Rand) []model.HistoricalSample {
	var locType model.LocationType
	for _, loc := range locations {
		if loc.ID == locationID {
			locType = loc.Type
			break
		}
	}
	return GenerateWeek(locType, r)
}

// GenerateWeek returns HoursPerDay samples for each day in Days, day-major
// and hour-minor. A nil r uses DefaultRand.
func GenerateWeek(locType model.LocationType, r Rand) []model.HistoricalSample {
	if r == nil {
		r = DefaultRand
	}

	samples := make([]model.HistoricalSample, 0, len(Days)*HoursPerDay)
	for _, day := range Days {
		for hour := FirstHour; hour <= LastHour; hour++ {
			base := baseCount(locType, hour, r)
			if IsWeekend(day) {
				base *= weekendFactor
			}
			samples = append(samples, model.HistoricalSample{
				Hour:  hour,
				Count: roundCount(base),
				Day:   day,
			})
		}
	}
	return samples
}

// IsWeekend reports whether day is Saturday or Sunday.
func IsWeekend(day string) bool {
	return day == "Saturday" || day == "Sunday"
}

func baseCount(locType model.LocationType, hour int, r Rand) float64 {
	h := float64(hour)
	switch locType {
	case model.LocationTypeLibrary:
		switch {
		case hour < 12:
			return 200 + h*30
		case hour < 18:
			return 500 + (h-12)*40
		default:
			return 600 - (h-18)*50
		}
	case model.LocationTypeDining:
		switch {
		case hour == 12 || hour == 13:
			return 400 + r.Float64()*100
		case hour == 18 || hour == 19:
			return 350 + r.Float64()*100
		default:
			return 100 + r.Float64()*150
		}
	case model.LocationTypeGym:
		switch {
		case hour >= 16 && hour <= 20:
			return 200 + r.Float64()*150
		case hour >= 7 && hour <= 10:
			return 150 + r.Float64()*100
		default:
			return 50 + r.Float64()*80
		}
	default:
		return 100 + r.Float64()*200
	}
}

func roundCount(v float64) int {
	n := int(math.Round(v))
	if n < 0 {
		return 0
	}
	return n
}
