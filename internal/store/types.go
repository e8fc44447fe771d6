package store

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Reading is a single occupant count reported by the upstream feed.
type Reading struct {
	LocationID string `json:"locationId"`
	Count      int    `json:"count"`
}
