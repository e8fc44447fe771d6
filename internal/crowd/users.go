package crowd

import (
	"slices"
	"time"

	"campus-crowd-backend/internal/model"
)

// Badge thresholds.
const (
	HelpfulScoutVotes     = 10
	CampusExplorerPlaces  = 5
	ConsistencyStreakDays = 7
	NightOwlHour          = 21
)

// Badge ids, in display order.
const (
	BadgeFirstVouch      = "first-vouch"
	BadgeHelpfulScout    = "helpful-scout"
	BadgeCampusExplorer  = "campus-explorer"
	BadgeConsistencyKing = "consistency-king"
	BadgeNightOwl        = "night-owl"
)

// Badge is an achievement a reporter has or has not earned. EarnedAt is the
// report that completed it; it stays nil for badges earned through votes,
// which carry no timestamp.
type Badge struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Earned      bool       `json:"earned"`
	EarnedAt    *time.Time `json:"earnedAt,omitempty"`
}

// UserStats summarises one reporter's contributions.
type UserStats struct {
	UserID           string  `json:"userId"`
	VouchCount       int     `json:"vouchCount"`
	HelpfulVotes     int     `json:"helpfulVotes"`
	LocationsVisited int     `json:"locationsVisited"`
	BadgesEarned     int     `json:"badgesEarned"`
	Badges           []Badge `json:"badges"`
}

// StatsForUser computes the stats and badges of userID from its reports.
// Reports by other users are ignored. Night Owl and Consistency King use the
// wall clock and calendar days of tz; nil means UTC.
func StatsForUser(userID string, vouches []model.Vouch, tz *time.Location) UserStats {
	if tz == nil {
		tz = time.UTC
	}

	own := make([]model.Vouch, 0, len(vouches))
	for _, v := range vouches {
		if v.UserID == userID {
			own = append(own, v)
		}
	}
	slices.SortStableFunc(own, func(a, b model.Vouch) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	stats := UserStats{UserID: userID, VouchCount: len(own)}

	var firstVouch, explorer, streak, nightOwl *time.Time
	visited := make(map[string]bool)
	var lastDay time.Time
	run := 0
	for _, v := range own {
		at := v.Timestamp
		stats.HelpfulVotes += v.Helpful

		if firstVouch == nil {
			firstVouch = &at
		}

		if !visited[v.LocationID] {
			visited[v.LocationID] = true
			if len(visited) == CampusExplorerPlaces {
				explorer = &at
			}
		}

		local := at.In(tz)
		if nightOwl == nil && local.Hour() >= NightOwlHour {
			nightOwl = &at
		}

		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tz)
		switch {
		case run == 0:
			run = 1
		case day.Equal(lastDay):
		case day.Equal(lastDay.AddDate(0, 0, 1)):
			run++
		default:
			run = 1
		}
		lastDay = day
		if streak == nil && run >= ConsistencyStreakDays {
			streak = &at
		}
	}
	stats.LocationsVisited = len(visited)

	stats.Badges = []Badge{
		newBadge(BadgeFirstVouch, "First Vouch", "Made your first crowd report", firstVouch != nil, firstVouch),
		newBadge(BadgeHelpfulScout, "Helpful Scout", "Received 10+ helpful votes", stats.HelpfulVotes >= HelpfulScoutVotes, nil),
		newBadge(BadgeCampusExplorer, "Campus Explorer", "Vouched at 5+ different locations", explorer != nil, explorer),
		newBadge(BadgeConsistencyKing, "Consistency King", "Vouch daily for a week", streak != nil, streak),
		newBadge(BadgeNightOwl, "Night Owl", "Vouch after 9 PM", nightOwl != nil, nightOwl),
	}
	for _, b := range stats.Badges {
		if b.Earned {
			stats.BadgesEarned++
		}
	}
	return stats
}

func newBadge(id, name, description string, earned bool, at *time.Time) Badge {
	return Badge{ID: id, Name: name, Description: description, Earned: earned, EarnedAt: at}
}
