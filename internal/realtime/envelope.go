package realtime

import (
	"encoding/json"
	"fmt"
)

// Envelope types handled by the session's receive loop.
const (
	TypePing        = "ping"
	TypePong        = "pong"
	TypeAck         = "ack"
	TypeError       = "error"
	TypeEventUpdate = "event_update"
	TypeInboxUpdate = "inbox_update"
)

// Error payload details.
const (
	DetailInvalidMessage = "invalid_message"
	DetailUnknownType    = "unknown_type"
	DetailRateLimited    = "rate_limited"
)

// CloseLivenessTimeout is the application close code sent when a connection
// stops answering liveness probes.
const CloseLivenessTimeout = 4000

// Envelope is the wire-level unit of communication. Every frame exchanged
// over a connection, in either direction, is exactly one envelope.
type Envelope struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// NewEnvelope builds an envelope with a non-nil payload.
func NewEnvelope(msgType string, payload map[string]any) Envelope {
	if payload == nil {
		payload = map[string]any{}
	}
	return Envelope{Type: msgType, Payload: payload}
}

// ErrorEnvelope builds the standard error reply.
func ErrorEnvelope(detail string) Envelope {
	return Envelope{Type: TypeError, Payload: map[string]any{"detail": detail}}
}

// AckEnvelope builds the acknowledgement reply for client-originated
// domain notifications.
func AckEnvelope(receivedType string) Envelope {
	return Envelope{Type: TypeAck, Payload: map[string]any{"received_type": receivedType, "status": "ok"}}
}

// DecodeEnvelope parses an inbound frame. A frame that is not a JSON object
// with a non-empty string type is rejected.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("malformed frame: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("frame has no type")
	}
	if env.Payload == nil {
		env.Payload = map[string]any{}
	}
	return env, nil
}

// Marshal serializes the envelope into a single transport frame.
func (e Envelope) Marshal() ([]byte, error) {
	if e.Payload == nil {
		e.Payload = map[string]any{}
	}
	return json.Marshal(e)
}
