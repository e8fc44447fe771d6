package model

import "time"

// LocationType is the category of a campus location.
type LocationType string

const (
	LocationTypeLibrary LocationType = "library"
	LocationTypeDining  LocationType = "dining"
	LocationTypeGym     LocationType = "gym"
	LocationTypeStudy   LocationType = "study"
	LocationTypeOther   LocationType = "other"
)

// CrowdLevel is the coarse crowd tier shown for a location.
type CrowdLevel string

const (
	CrowdLevelLow    CrowdLevel = "low"
	CrowdLevelMedium CrowdLevel = "medium"
	CrowdLevelHigh   CrowdLevel = "high"
)

// CrowdLevels lists the tiers in ascending order.
var CrowdLevels = []CrowdLevel{CrowdLevelLow, CrowdLevelMedium, CrowdLevelHigh}

// Location is a campus place whose crowd is tracked.
//
// CrowdLevel is set independently of CurrentCount/Capacity and is never
// derived from them. Position fixes the listing order.
type Location struct {
	ID             string       `gorm:"primaryKey;size:64"`
	Position       int          `gorm:"not null;default:0;index"`
	Name           string       `gorm:"size:256;not null"`
	Type           LocationType `gorm:"size:32;not null"`
	CrowdLevel     CrowdLevel   `gorm:"size:16;not null"`
	CurrentCount   int          `gorm:"not null"`
	Capacity       int          `gorm:"not null"`
	Description    string       `gorm:"size:1024"`
	Latitude       float64      `gorm:"not null"`
	Longitude      float64      `gorm:"not null"`
	CountUpdatedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
