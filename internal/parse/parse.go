// Package parse validates and normalises user-supplied query and body values.
package parse

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"campus-crowd-backend/internal/crowd"
	"campus-crowd-backend/internal/model"
)

// MaxCommentLength is the longest accepted vouch comment, in characters.
const MaxCommentLength = 150

// CrowdLevel parses a crowd tier, ignoring case and surrounding space.
func CrowdLevel(raw string) (model.CrowdLevel, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, level := range model.CrowdLevels {
		if s == string(level) {
			return level, nil
		}
	}
	return "", fmt.Errorf("invalid crowd level %q: want low, medium or high", raw)
}

// LevelFilter parses the level filter of a location listing. Empty input
// means no filtering and yields crowd.AllLevels.
func LevelFilter(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" || s == crowd.AllLevels {
		return crowd.AllLevels, nil
	}
	level, err := CrowdLevel(s)
	if err != nil {
		return "", fmt.Errorf("invalid level filter %q: want all, low, medium or high", raw)
	}
	return string(level), nil
}

// Day returns the canonical English name of a weekday ("monday" -> "Monday").
func Day(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	for _, day := range crowd.Days {
		if strings.EqualFold(s, day) {
			return day, nil
		}
	}
	return "", fmt.Errorf("invalid day %q", raw)
}

// Comment trims a vouch comment. Blank comments become nil.
func Comment(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil, nil
	}
	if n := utf8.RuneCountInString(s); n > MaxCommentLength {
		return nil, fmt.Errorf("comment is %d characters long, the limit is %d", n, MaxCommentLength)
	}
	return &s, nil
}
