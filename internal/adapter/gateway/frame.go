package gateway

import (
	"encoding/json"

	"agentchat/internal/domain"
)

// FrameType identifies the kind of frame sent over the WebSocket connection.
type FrameType string

const (
	FrameTypeRequest  FrameType = "request"
	FrameTypeResponse FrameType = "response"
	FrameTypeEvent    FrameType = "event"
)

// Frame is the envelope exchanged between client and server over WebSocket.
type Frame struct {
	Type    FrameType        `json:"type"`
	ID      uint64           `json:"id,omitempty"`     // request/response correlation ID
	Method  string           `json:"method,omitempty"` // request only
	Payload json.RawMessage  `json:"payload,omitempty"`
	Error   string           `json:"error,omitempty"` // response only
	Code    domain.ErrorCode `json:"code,omitempty"`  // set alongside Error
}

func responseFrame(id uint64, result json.RawMessage, err error) Frame {
	f := Frame{Type: FrameTypeResponse, ID: id, Payload: result}
	if err != nil {
		f.Error = err.Error()
		f.Code = domain.ErrorCodeOf(err)
	}
	return f
}
