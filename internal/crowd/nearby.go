package crowd

import (
	"cmp"
	"slices"

	"github.com/golang/geo/s2"

	"campus-crowd-backend/internal/model"
)

// EarthRadiusMeters is the mean Earth radius used for distances.
const EarthRadiusMeters = 6371008.8

// NearbyLocation pairs a location with its distance from a reference point.
type NearbyLocation struct {
	Location       model.Location
	DistanceMeters float64
}

// Nearby orders locations by great-circle distance from (lat, lng). Equal
// distances keep source order. limit <= 0 returns every location.
func Nearby(locations []model.Location, lat, lng float64, limit int) []NearbyLocation {
	origin := s2.LatLngFromDegrees(lat, lng)

	result := make([]NearbyLocation, 0, len(locations))
	for _, loc := range locations {
		p := s2.LatLngFromDegrees(loc.Latitude, loc.Longitude)
		result = append(result, NearbyLocation{
			Location:       loc,
			DistanceMeters: origin.Distance(p).Radians() * EarthRadiusMeters,
		})
	}

	slices.SortStableFunc(result, func(a, b NearbyLocation) int {
		return cmp.Compare(a.DistanceMeters, b.DistanceMeters)
	})

	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result
}
