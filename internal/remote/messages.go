// ABOUTME: JSON messages of the remote trigger API
// ABOUTME: Requests from clients and hello/grid/result/error replies
package remote

import (
	"github.com/Sendspin/soundboard-go/internal/store"
)

// Message types
const (
	TypeHello   = "hello"
	TypeList    = "list"
	TypeGrid    = "grid"
	TypeTrigger = "trigger"
	TypeResult  = "result"
	TypeError   = "error"
)

// Request is sent by clients. A trigger names a button by label or by row and col.
type Request struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Label string `json:"label,omitempty"`
	Row   *int   `json:"row,omitempty"`
	Col   *int   `json:"col,omitempty"`
}

// Hello is sent once after the connection is upgraded
type Hello struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Product  string `json:"product"`
	Version  string `json:"version"`
}

// Grid answers a list request
type Grid struct {
	Type    string         `json:"type"`
	ID      string         `json:"id,omitempty"`
	Config  string         `json:"config,omitempty"`
	Rows    int            `json:"rows"`
	Cols    int            `json:"cols"`
	Buttons []store.Button `json:"buttons"`
}

// Result reports how a triggered playback ended
type Result struct {
	Type       string `json:"type"`
	ID         string `json:"id,omitempty"`
	Label      string `json:"label,omitempty"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
	Hint       string `json:"hint,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Error reports a request that could not be handled
type Error struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}
