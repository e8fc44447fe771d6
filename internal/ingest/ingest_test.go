package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-crowd-backend/config"
	"campus-crowd-backend/internal/store"
)

// mockWriter is a mock implementation of CountWriter.
type mockWriter struct {
	UpdateFunc func(ctx context.Context, now time.Time, readings []store.Reading) (int, error)
	calls      int
}

func (m *mockWriter) UpdateCurrentCounts(ctx context.Context, now time.Time, readings []store.Reading) (int, error) {
	m.calls++
	return m.UpdateFunc(ctx, now, readings)
}

// pagedFeed serves readings in pages of pageSize.
func pagedFeed(t *testing.T, readings []store.Reading, pageSize int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("X-Token"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "campus", body["scope"])
		page := int(body["page"].(float64))

		start := (page - 1) * pageSize
		end := min(start+pageSize, len(readings))
		var items []store.Reading
		if start < len(readings) {
			items = readings[start:end]
		}

		json.NewEncoder(w).Encode(FeedResponse{
			Code: 0,
			Data: FeedPage{Page: page, PageSize: pageSize, Total: len(readings), Items: items},
		})
	}))
}

func testConfig(url string, pageSize int) *config.IngestConfig {
	return &config.IngestConfig{
		Enabled:  true,
		Interval: time.Minute,
		Request: config.IngestRequest{
			URL:      url,
			PageSize: pageSize,
			Headers:  map[string]string{"X-Token": "secret"},
			Payload:  map[string]any{"scope": "campus"},
		},
	}
}

func TestService_PollOnce_Pages(t *testing.T) {
	readings := []store.Reading{
		{LocationID: "1", Count: 900},
		{LocationID: "2", Count: 410},
		{LocationID: "3", Count: 120},
	}
	server := pagedFeed(t, readings, 2)
	defer server.Close()

	var got []store.Reading
	writer := &mockWriter{UpdateFunc: func(ctx context.Context, now time.Time, rs []store.Reading) (int, error) {
		got = rs
		return len(rs), nil
	}}

	svc := NewService(testConfig(server.URL, 2), writer, nil)
	notified := 0
	svc.OnUpdate(func(updated int) { notified = updated })

	assert.Equal(t, 3, svc.PollOnce(context.Background()))
	assert.Equal(t, readings, got)
	assert.Equal(t, 3, notified)
}

func TestService_PollOnce_FeedCapsPageSize(t *testing.T) {
	readings := []store.Reading{
		{LocationID: "1", Count: 900},
		{LocationID: "2", Count: 410},
		{LocationID: "3", Count: 120},
		{LocationID: "4", Count: 60},
		{LocationID: "5", Count: 150},
	}
	const served = 2

	var requested []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		page := int(body["page"].(float64))
		requested = append(requested, int(body["pageSize"].(float64)))

		start := (page - 1) * served
		end := min(start+served, len(readings))
		var items []store.Reading
		if start < len(readings) {
			items = readings[start:end]
		}
		json.NewEncoder(w).Encode(FeedResponse{
			Data: FeedPage{Page: page, PageSize: served, Total: len(readings), Items: items},
		})
	}))
	defer server.Close()

	var got []store.Reading
	writer := &mockWriter{UpdateFunc: func(ctx context.Context, now time.Time, rs []store.Reading) (int, error) {
		got = rs
		return len(rs), nil
	}}

	// PageSize left unset: the default is what goes on the wire.
	svc := NewService(testConfig(server.URL, 0), writer, nil)
	assert.Equal(t, 5, svc.PollOnce(context.Background()))
	assert.Equal(t, readings, got)
	assert.Equal(t, []int{100, 100, 100}, requested)
}

func TestService_PollOnce_FetchErrorDoesNotWrite(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	writer := &mockWriter{UpdateFunc: func(ctx context.Context, now time.Time, rs []store.Reading) (int, error) {
		t.Fatal("store must not be called")
		return 0, nil
	}}

	svc := NewService(testConfig(server.URL, 10), writer, nil)
	assert.Equal(t, 0, svc.PollOnce(context.Background()))
	assert.Equal(t, 0, writer.calls)
}

func TestService_PollOnce_ApplicationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(FeedResponse{Code: 7, Message: "maintenance"})
	}))
	defer server.Close()

	writer := &mockWriter{UpdateFunc: func(ctx context.Context, now time.Time, rs []store.Reading) (int, error) {
		return 0, nil
	}}

	svc := NewService(testConfig(server.URL, 10), writer, nil)
	assert.Equal(t, 0, svc.PollOnce(context.Background()))
	assert.Equal(t, 0, writer.calls)
}

func TestService_PollOnce_StoreError(t *testing.T) {
	server := pagedFeed(t, []store.Reading{{LocationID: "1", Count: 5}}, 10)
	defer server.Close()

	writer := &mockWriter{UpdateFunc: func(ctx context.Context, now time.Time, rs []store.Reading) (int, error) {
		return 0, errors.New("disk full")
	}}

	svc := NewService(testConfig(server.URL, 10), writer, nil)
	svc.OnUpdate(func(int) { t.Fatal("OnUpdate must not run after a store error") })
	assert.Equal(t, 0, svc.PollOnce(context.Background()))
	assert.Equal(t, 1, writer.calls)
}

func TestService_Run_DisabledReturns(t *testing.T) {
	svc := NewService(&config.IngestConfig{Enabled: false}, &mockWriter{}, nil)

	done := make(chan struct{})
	go func() {
		svc.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return when ingestion is disabled")
	}
}

func TestService_Run_StopsOnCancel(t *testing.T) {
	server := pagedFeed(t, []store.Reading{{LocationID: "1", Count: 5}}, 10)
	defer server.Close()

	polled := make(chan struct{}, 1)
	writer := &mockWriter{UpdateFunc: func(ctx context.Context, now time.Time, rs []store.Reading) (int, error) {
		select {
		case polled <- struct{}{}:
		default:
		}
		return 1, nil
	}}

	svc := NewService(testConfig(server.URL, 10), writer, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	select {
	case <-polled:
	case <-time.After(time.Second):
		t.Fatal("Run did not poll immediately")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
