package api

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campus-crowd-backend/internal/crowd"
	"campus-crowd-backend/internal/model"
	"campus-crowd-backend/internal/parse"
)

// GetLocations lists locations, optionally narrowed by ?search= and ?level=.
func (h *Handler) GetLocations(c *gin.Context) {
	level, err := parse.LevelFilter(c.Query("level"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	locations, err := h.store.AllLocations(c.Request.Context())
	if err != nil {
		h.respondStoreError(c, err, "")
		return
	}

	filtered := crowd.Filter(locations, c.Query("search"), level)
	c.JSON(http.StatusOK, newLocationResponses(filtered))
}

// GetLocation returns a single location.
func (h *Handler) GetLocation(c *gin.Context) {
	loc, err := h.store.FindLocationByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondStoreError(c, err, "location not found")
		return
	}
	c.JSON(http.StatusOK, newLocationResponse(*loc))
}

// GetHistory returns a synthetic week of hourly counts for a location.
// With ?day= only that day's samples are returned, with a peak/quiet summary.
func (h *Handler) GetHistory(c *gin.Context) {
	id := c.Param("id")

	var day string
	if raw := c.Query("day"); raw != "" {
		var err error
		if day, err = parse.Day(raw); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	locations, err := h.store.AllLocations(c.Request.Context())
	if err != nil {
		h.respondStoreError(c, err, "")
		return
	}
	if !containsLocation(locations, id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "location not found"})
		return
	}

	samples := crowd.GenerateHistory(locations, id, h.rand)
	resp := HistoryResponse{LocationID: id, Samples: samples}
	if day != "" {
		resp.Day = day
		resp.Samples = crowd.ForDay(samples, day)
		if summary, ok := crowd.DaySummary(samples, day); ok {
			resp.Summary = &summary
		}
	}
	c.JSON(http.StatusOK, resp)
}

func containsLocation(locations []model.Location, id string) bool {
	for _, loc := range locations {
		if loc.ID == id {
			return true
		}
	}
	return false
}

// GetSummary tallies locations per crowd level for the dashboard.
func (h *Handler) GetSummary(c *gin.Context) {
	locations, err := h.store.AllLocations(c.Request.Context())
	if err != nil {
		h.respondStoreError(c, err, "")
		return
	}
	counts := crowd.CountByLevel(locations)
	c.JSON(http.StatusOK, SummaryResponse{LevelCounts: counts, Total: counts.Total()})
}

// GetNearby lists locations by distance from ?lat= and ?lng=.
func (h *Handler) GetNearby(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || math.IsNaN(lat) || lat < -90 || lat > 90 {
		badRequest(c, "lat must be a number between -90 and 90")
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil || math.IsNaN(lng) || lng < -180 || lng > 180 {
		badRequest(c, "lng must be a number between -180 and 180")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
	}

	locations, err := h.store.AllLocations(c.Request.Context())
	if err != nil {
		h.respondStoreError(c, err, "")
		return
	}

	nearby := crowd.Nearby(locations, lat, lng, limit)
	out := make([]LocationResponse, 0, len(nearby))
	for _, n := range nearby {
		resp := newLocationResponse(n.Location)
		distance := n.DistanceMeters
		resp.DistanceMeters = &distance
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, out)
}
