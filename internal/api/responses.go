package api

import (
	"time"

	"campus-crowd-backend/internal/crowd"
	"campus-crowd-backend/internal/model"
)

type coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LocationResponse is the API shape of a location.
type LocationResponse struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Type               string      `json:"type"`
	CrowdLevel         string      `json:"crowdLevel"`
	CurrentCount       int         `json:"currentCount"`
	Capacity           int         `json:"capacity"`
	CapacityPercentage int         `json:"capacityPercentage"`
	Description        string      `json:"description"`
	Coordinates        coordinates `json:"coordinates"`
	CountUpdatedAt     *time.Time  `json:"countUpdatedAt,omitempty"`
	DistanceMeters     *float64    `json:"distanceMeters,omitempty"`
}

func newLocationResponse(loc model.Location) LocationResponse {
	return LocationResponse{
		ID:                 loc.ID,
		Name:               loc.Name,
		Type:               string(loc.Type),
		CrowdLevel:         string(loc.CrowdLevel),
		CurrentCount:       loc.CurrentCount,
		Capacity:           loc.Capacity,
		CapacityPercentage: crowd.OccupancyPercent(loc),
		Description:        loc.Description,
		Coordinates:        coordinates{Lat: loc.Latitude, Lng: loc.Longitude},
		CountUpdatedAt:     loc.CountUpdatedAt,
	}
}

func newLocationResponses(locations []model.Location) []LocationResponse {
	out := make([]LocationResponse, 0, len(locations))
	for _, loc := range locations {
		out = append(out, newLocationResponse(loc))
	}
	return out
}

// VouchResponse is the API shape of a crowd report.
type VouchResponse struct {
	ID         string    `json:"id"`
	LocationID string    `json:"locationId"`
	UserID     string    `json:"userId"`
	CrowdLevel string    `json:"crowdLevel"`
	Comment    *string   `json:"comment,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Helpful    int       `json:"helpful"`
}

func newVouchResponse(v model.Vouch) VouchResponse {
	return VouchResponse{
		ID:         v.ID,
		LocationID: v.LocationID,
		UserID:     v.UserID,
		CrowdLevel: string(v.CrowdLevel),
		Comment:    v.Comment,
		Timestamp:  v.Timestamp,
		Helpful:    v.Helpful,
	}
}

// HistoryResponse carries generated samples and, for a single day, its summary.
type HistoryResponse struct {
	LocationID string                   `json:"locationId"`
	Day        string                   `json:"day,omitempty"`
	Samples    []model.HistoricalSample `json:"samples"`
	Summary    *crowd.Summary           `json:"summary,omitempty"`
}

// SummaryResponse is the dashboard tally of locations per crowd level.
type SummaryResponse struct {
	crowd.LevelCounts
	Total int `json:"total"`
}
