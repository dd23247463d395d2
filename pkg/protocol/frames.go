// Package protocol defines the frames carried on the converter's
// current-time event stream (text/event-stream). Each frame is one SSE event:
// the frame type is the event name and the JSON payload is the data line.
package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// FrameType identifies the type of stream frame.
type FrameType string

const (
	// Stream lifecycle
	FrameTypeStreamOpen    FrameType = "stream_open"
	FrameTypeStreamClosing FrameType = "stream_closing"

	// Periodic refresh
	FrameTypeCurrentTime FrameType = "current_time"

	// Errors
	FrameTypeError FrameType = "error"
)

// ErrMalformedFrame is returned by ReadFrame for events it cannot decode.
var ErrMalformedFrame = errors.New("malformed stream frame")

// Frame is the base structure for all stream frames.
type Frame struct {
	Type    FrameType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// StreamOpen is sent first, before any current_time frame.
type StreamOpen struct {
	StreamID          string `json:"stream_id"`
	RefreshIntervalMs int64  `json:"refresh_interval_ms"`
	OffsetHours       int    `json:"offset_hours"`
}

// StreamClosing is sent when the server ends the stream.
type StreamClosing struct {
	Reason string `json:"reason"`
}

// CurrentTime carries one refresh of the current-time fields.
type CurrentTime struct {
	OffsetHours int    `json:"offset_hours"`
	Local       string `json:"local"`
	Zone        string `json:"zone"`
	UTC         string `json:"utc"`
	FileTime    string `json:"filetime"`
	UnixTime    string `json:"unixtime"`
}

// Error is sent by the server to report an error.
type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// NewFrame creates a Frame with the given type and payload.
func NewFrame(frameType FrameType, payload any) (*Frame, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		var err error
		payloadBytes, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return &Frame{
		Type:    frameType,
		Payload: payloadBytes,
	}, nil
}

// ParsePayload unmarshals the frame payload into the given struct.
func (f *Frame) ParsePayload(v any) error {
	if f.Payload == nil {
		return nil
	}
	return json.Unmarshal(f.Payload, v)
}

// WriteSSE writes f as one server-sent event. A frame without payload gets
// an empty JSON object as data so every event has a data line.
func (f *Frame) WriteSSE(w io.Writer) error {
	data := []byte(f.Payload)
	if len(data) == 0 {
		data = []byte("{}")
	}
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", f.Type, data)
	return err
}

// ReadFrame reads the next server-sent event from r. Comment lines and
// unknown fields are skipped. It returns io.EOF when the stream ends between
// events.
func ReadFrame(r *bufio.Reader) (*Frame, error) {
	var (
		event string
		data  bytes.Buffer
		seen  bool
	)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && !seen && line == "" {
				return nil, io.EOF
			}
			if errors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			if !seen {
				continue
			}
			break
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		seen = true

		name, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch name {
		case "event":
			event = value
		case "data":
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(value)
		}
	}

	if event == "" {
		return nil, fmt.Errorf("%w: missing event name", ErrMalformedFrame)
	}
	if !json.Valid(data.Bytes()) {
		return nil, fmt.Errorf("%w: %s data is not JSON", ErrMalformedFrame, event)
	}
	return &Frame{Type: FrameType(event), Payload: json.RawMessage(data.Bytes())}, nil
}
