package domain

import "encoding/json"

// StatsResponse is an upstream analytics reply as received
type StatsResponse struct {
	StatusCode int
	Body       json.RawMessage
}

// EventStat is one entry of the upstream linkEventStats list.
// Count arrives as a quoted int64 but plain numbers are accepted too.
type EventStat struct {
	Event string      `json:"event"`
	Count json.Number `json:"count"`
}

// ClickStats is the body served by the stats endpoint
type ClickStats struct {
	Count        int64           `json:"count"`
	StatusCode   int             `json:"status_code"`
	ResponseJSON json.RawMessage `json:"response_json"`
}
