package model

// HistoricalSample is one synthetic hourly occupancy estimate.
type HistoricalSample struct {
	Hour  int    `json:"hour"`
	Count int    `json:"count"`
	Day   string `json:"day"`
}
