package net

import "signpad/internal/sample"

// Reply types sent from the pad server to a remote device.
const (
	ReplyHello    = "hello"
	ReplyState    = "state"
	ReplySaved    = "saved"
	ReplyDisabled = "disabled"
	ReplyError    = "error"
)

// Reply is the server's answer to each inbound event. Inbound messages are
// sample.Event values encoded as JSON.
type Reply struct {
	Type       string `json:"type"`
	Session    string `json:"session,omitempty"`
	State      string `json:"state,omitempty"`
	HasContent bool   `json:"has_content"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Data       string `json:"data,omitempty"` // PNG data URI on ReplySaved
	Error      string `json:"error,omitempty"`
}

// Script is a recorded sequence of input events, as replayed by the CLI.
type Script struct {
	Bounds sample.Rect    `json:"bounds"`
	Events []sample.Event `json:"events"`
}
