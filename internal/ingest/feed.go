package ingest

import "campus-crowd-backend/internal/store"

// FeedPage is one page of data from the upstream occupancy feed.
type FeedPage struct {
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
	Total    int             `json:"total"`
	Items    []store.Reading `json:"items"`
}

// FeedResponse models the top-level structure of the feed's response.
type FeedResponse struct {
	Code    int      `json:"code"`
	Message string   `json:"message,omitempty"`
	Data    FeedPage `json:"data"`
}
