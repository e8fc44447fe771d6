package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-crowd-backend/internal/crowd"
)

// GetUserStats returns a reporter's contribution stats and badges. A user
// with no reports gets zero stats rather than a 404.
func (h *Handler) GetUserStats(c *gin.Context) {
	userID := c.Param("id")

	vouches, err := h.store.VouchesByUser(c.Request.Context(), userID)
	if err != nil {
		h.respondStoreError(c, err, "")
		return
	}

	c.JSON(http.StatusOK, crowd.StatsForUser(userID, vouches, h.tz))
}
