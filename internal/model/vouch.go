package model

import "time"

// Vouch is a user-submitted report of a location's crowd level.
// Records are append-only except for the Helpful counter.
type Vouch struct {
	ID         string     `gorm:"primaryKey;size:64"`
	LocationID string     `gorm:"index;size:64;not null"`
	UserID     string     `gorm:"size:128;not null;index"`
	CrowdLevel CrowdLevel `gorm:"size:16;not null"`
	Comment    *string    `gorm:"size:512"`
	Timestamp  time.Time  `gorm:"column:submitted_at;index;not null"`
	Helpful    int        `gorm:"not null;default:0"`
}
