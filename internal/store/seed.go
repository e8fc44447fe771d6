package store

import (
	"time"

	"campus-crowd-backend/internal/model"
)

// SeedLocations returns the demo campus locations in display order.
func SeedLocations() []model.Location {
	return []model.Location{
		{
			ID:           "1",
			Position:     1,
			Name:         "Hayden Library",
			Type:         model.LocationTypeLibrary,
			CrowdLevel:   model.CrowdLevelHigh,
			CurrentCount: 847,
			Capacity:     1200,
			Description:  "Main campus library with study spaces and research materials",
			Latitude:     33.4255,
			Longitude:    -111.9400,
		},
		{
			ID:           "2",
			Position:     2,
			Name:         "Memorial Union Dining",
			Type:         model.LocationTypeDining,
			CrowdLevel:   model.CrowdLevelMedium,
			CurrentCount: 324,
			Capacity:     500,
			Description:  "Central dining hall with multiple food options",
			Latitude:     33.4242,
			Longitude:    -111.9410,
		},
		{
			ID:           "3",
			Position:     3,
			Name:         "Sun Devil Fitness Complex",
			Type:         model.LocationTypeGym,
			CrowdLevel:   model.CrowdLevelLow,
			CurrentCount: 89,
			Capacity:     400,
			Description:  "State-of-the-art fitness center with cardio and weight equipment",
			Latitude:     33.4268,
			Longitude:    -111.9425,
		},
		{
			ID:           "4",
			Position:     4,
			Name:         "Noble Library Study Rooms",
			Type:         model.LocationTypeStudy,
			CrowdLevel:   model.CrowdLevelMedium,
			CurrentCount: 67,
			Capacity:     120,
			Description:  "Quiet study rooms and collaborative spaces",
			Latitude:     33.4240,
			Longitude:    -111.9380,
		},
		{
			ID:           "5",
			Position:     5,
			Name:         "Tempe Student Union",
			Type:         model.LocationTypeOther,
			CrowdLevel:   model.CrowdLevelLow,
			CurrentCount: 156,
			Capacity:     800,
			Description:  "Student activities center with lounges and meeting spaces",
			Latitude:     33.4220,
			Longitude:    -111.9395,
		},
	}
}

// SeedVouches returns the demo crowd reports, timestamped relative to now.
func SeedVouches(now time.Time) []model.Vouch {
	comment := func(s string) *string { return &s }
	return []model.Vouch{
		{
			ID:         "1",
			LocationID: "1",
			UserID:     "user1",
			CrowdLevel: model.CrowdLevelHigh,
			Comment:    comment("Packed! No seats available on the main floor."),
			Timestamp:  now.Add(-15 * time.Minute),
			Helpful:    12,
		},
		{
			ID:         "2",
			LocationID: "1",
			UserID:     "user2",
			CrowdLevel: model.CrowdLevelHigh,
			Comment:    comment("Try the upper floors for quieter spots."),
			Timestamp:  now.Add(-45 * time.Minute),
			Helpful:    8,
		},
		{
			ID:         "3",
			LocationID: "2",
			UserID:     "user3",
			CrowdLevel: model.CrowdLevelMedium,
			Comment:    comment("Short lines, good selection available."),
			Timestamp:  now.Add(-30 * time.Minute),
			Helpful:    5,
		},
	}
}
