package ws

import (
	"encoding/json"
)

const (
	EventAnalyzeRequest = "analyze_request"
	EventMoveRequest    = "move_request"
)

type Incoming struct {
	Event string          `json:"event"`
	ID    int             `json:"id"`
	Data  json.RawMessage `json:"data"`
}

// Outgoing answers the Incoming message with the same ID. Error is set instead of Data when
// the engine rejected the request, the connection stays open in that case.
type Outgoing struct {
	ID    int    `json:"id"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}
