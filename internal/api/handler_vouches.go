package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-crowd-backend/internal/model"
	"campus-crowd-backend/internal/notification"
	"campus-crowd-backend/internal/parse"
)

type postVouchRequest struct {
	UserID     string  `json:"userId" binding:"required"`
	CrowdLevel string  `json:"crowdLevel" binding:"required"`
	Comment    *string `json:"comment"`
}

func vouchesPath(locationID string) string {
	return "/api/locations/" + locationID + "/vouches"
}

// GetVouches lists the reports for a location, newest first.
func (h *Handler) GetVouches(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.store.FindLocationByID(c.Request.Context(), id); err != nil {
		h.respondStoreError(c, err, "location not found")
		return
	}

	vouches, err := h.store.VouchesForLocation(c.Request.Context(), id)
	if err != nil {
		h.respondStoreError(c, err, "")
		return
	}

	out := make([]VouchResponse, 0, len(vouches))
	for _, v := range vouches {
		out = append(out, newVouchResponse(v))
	}
	c.JSON(http.StatusOK, out)
}

// PostVouch records a crowd report. The location's own crowd level and
// count are not changed by a report.
func (h *Handler) PostVouch(c *gin.Context) {
	id := c.Param("id")

	var req postVouchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	level, err := parse.CrowdLevel(req.CrowdLevel)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	comment, err := parse.Comment(req.Comment)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	if _, err := h.store.FindLocationByID(c.Request.Context(), id); err != nil {
		h.respondStoreError(c, err, "location not found")
		return
	}

	vouch := model.Vouch{
		LocationID: id,
		UserID:     req.UserID,
		CrowdLevel: level,
		Comment:    comment,
	}
	if err := h.store.CreateVouch(c.Request.Context(), &vouch); err != nil {
		h.respondStoreError(c, err, "")
		return
	}

	if h.metrics != nil {
		h.metrics.VouchesSubmitted.WithLabelValues(string(level)).Inc()
	}
	if h.cache != nil {
		h.cache.InvalidatePrefix(vouchesPath(id))
	}
	if h.notifier != nil && !h.notifier.Dispatch(notification.Job{LocationID: id, CrowdLevel: level}) {
		h.logger.Debug("notification not queued", zap.String("location_id", id))
	}

	c.JSON(http.StatusCreated, newVouchResponse(vouch))
}

// MarkHelpful increments a report's helpful counter.
func (h *Handler) MarkHelpful(c *gin.Context) {
	vouch, err := h.store.MarkVouchHelpful(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondStoreError(c, err, "vouch not found")
		return
	}
	if h.cache != nil {
		h.cache.InvalidatePrefix(vouchesPath(vouch.LocationID))
	}
	c.JSON(http.StatusOK, newVouchResponse(*vouch))
}
