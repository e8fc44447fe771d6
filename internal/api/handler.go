package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-crowd-backend/internal/crowd"
	"campus-crowd-backend/internal/mw"
	"campus-crowd-backend/internal/notification"
	"campus-crowd-backend/internal/store"
)

// Notifier queues push notifications for new crowd reports.
type Notifier interface {
	Dispatch(job notification.Job) bool
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	webpush  *webpush.Options
	notifier Notifier
	cache    *mw.ResponseCache
	metrics  *mw.Metrics
	rand     crowd.Rand
	tz       *time.Location
	logger   *zap.Logger
}

// NewHandler creates a new API handler. Optional dependencies may be nil.
func NewHandler(s store.Store, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		webpush: webpushOptions,
		rand:    crowd.DefaultRand,
		tz:      time.UTC,
		logger:  zap.NewNop(),
	}
}

// respondStoreError maps store errors to HTTP responses.
func (h *Handler) respondStoreError(c *gin.Context, err error, notFoundMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
		return
	}
	_ = c.Error(err)
	h.logger.Error("store operation failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
