// Package ingest polls an upstream occupancy feed and writes the reported
// occupant counts into the location read model.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"campus-crowd-backend/config"
	"campus-crowd-backend/internal/store"
)

// CountWriter is the store operation the poller needs.
type CountWriter interface {
	UpdateCurrentCounts(ctx context.Context, now time.Time, readings []store.Reading) (int, error)
}

// Service orchestrates the polling of the occupancy feed.
type Service struct {
	cfg      *config.IngestConfig
	store    CountWriter
	client   *http.Client
	logger   *zap.Logger
	onUpdate func(updated int)
	now      func() time.Time
}

// NewService creates and initializes a new ingestion service.
func NewService(cfg *config.IngestConfig, store CountWriter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	var transport http.RoundTripper = &http.Transport{}
	if cfg.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.HTTPProxy)
		if err != nil {
			logger.Warn("invalid proxy URL, feed requests will not use a proxy",
				zap.String("proxy", cfg.HTTPProxy), zap.Error(err))
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &Service{
		cfg:   cfg,
		store: store,
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// OnUpdate registers fn to run after a cycle changed at least one location.
func (s *Service) OnUpdate(fn func(updated int)) {
	s.onUpdate = fn
}

// Run polls the feed until ctx is cancelled. It returns immediately when
// ingestion is disabled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		s.logger.Info("occupancy ingestion is disabled")
		return
	}
	s.logger.Info("starting occupancy ingestion", zap.Duration("interval", s.cfg.Interval))

	s.PollOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("occupancy ingestion shutting down")
			return
		case <-timer.C:
			s.PollOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// PollOnce fetches every page of the feed and stores the counts. It returns
// the number of locations updated.
func (s *Service) PollOnce(ctx context.Context) int {
	now := s.now()

	var readings []store.Reading
	pageSize := s.cfg.Request.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	var fetchErr error
	for page := 1; ; page++ {
		resp, err := s.fetchPage(ctx, page, pageSize)
		if err != nil {
			s.logger.Warn("failed to fetch feed page", zap.Int("page", page), zap.Error(err))
			fetchErr = err
			break
		}
		if resp.Data.Total == 0 || len(resp.Data.Items) == 0 {
			break
		}
		readings = append(readings, resp.Data.Items...)

		// The feed may serve smaller pages than requested.
		served := pageSize
		if resp.Data.PageSize > 0 {
			served = resp.Data.PageSize
		}
		if page*served >= resp.Data.Total {
			break
		}
	}

	// A failed fetch with nothing retrieved must not touch stored counts.
	if fetchErr != nil && len(readings) == 0 {
		s.logger.Warn("ingestion cycle aborted, no readings retrieved")
		return 0
	}
	if len(readings) == 0 {
		s.logger.Debug("ingestion cycle finished, feed was empty")
		return 0
	}

	updated, err := s.store.UpdateCurrentCounts(ctx, now, readings)
	if err != nil {
		s.logger.Error("failed to store readings", zap.Error(err))
		return 0
	}

	s.logger.Info("ingestion cycle finished",
		zap.Int("readings", len(readings)), zap.Int("updated", updated))
	if updated > 0 && s.onUpdate != nil {
		s.onUpdate(updated)
	}
	return updated
}

// fetchPage fetches a single page of readings from the feed.
func (s *Service) fetchPage(ctx context.Context, page, pageSize int) (*FeedResponse, error) {
	payload := make(map[string]any, len(s.cfg.Request.Payload)+2)
	for k, v := range s.cfg.Request.Payload {
		payload[k] = v
	}
	payload["page"] = page
	payload["pageSize"] = pageSize

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Request.URL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range s.cfg.Request.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var feedResp FeedResponse
	if err := json.Unmarshal(body, &feedResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal feed response: %w", err)
	}

	if feedResp.Code != 0 {
		return nil, fmt.Errorf("feed returned non-zero application code: %d", feedResp.Code)
	}

	return &feedResp, nil
}
