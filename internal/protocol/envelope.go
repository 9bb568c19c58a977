package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/YourBr0ther/deskmate-sub001/internal/geometry"
)

// EventType is the reserved "type" value of an envelope.
type EventType string

// Envelope is one JSON text frame on the channel.
type Envelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Outbound is implemented by every payload the client may send.
type Outbound interface {
	EventType() EventType
}

// Decode parses a frame into its envelope. The data payload is left raw.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("decoding envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("decoding envelope: missing type")
	}
	return env, nil
}

// Encode wraps data in an envelope of the given type.
func Encode(typ EventType, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", typ, err)
	}
	b, err := json.Marshal(Envelope{Type: typ, Data: raw})
	if err != nil {
		return nil, fmt.Errorf("encoding %s envelope: %w", typ, err)
	}
	return b, nil
}

// EncodeMessage encodes an outbound payload under its own event type.
func EncodeMessage[T Outbound](msg T) ([]byte, error) {
	return Encode(msg.EventType(), msg)
}

// Payload decodes an envelope's data into T. A missing payload decodes to
// the zero value.
func Payload[T any](data json.RawMessage) (T, error) {
	var v T
	if len(data) == 0 || string(data) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decoding payload: %w", err)
	}
	return v, nil
}

// Position is a point on the wire. Legacy senders mark grid coordinates
// with "unit":"grid"; everything else is pixels.
type Position struct {
	X    float64       `json:"x"`
	Y    float64       `json:"y"`
	Unit geometry.Unit `json:"unit,omitempty"`
}

// Pixels returns the position in pixel space.
func (p Position) Pixels() geometry.Position {
	return geometry.NormalizePosition(geometry.Position{X: p.X, Y: p.Y}, p.Unit)
}

// FromPixels builds a wire position from a pixel position.
func FromPixels(p geometry.Position) Position {
	return Position{X: p.X, Y: p.Y}
}

// Size is a width/height pair on the wire, with the same unit rule as
// Position.
type Size struct {
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Unit   geometry.Unit `json:"unit,omitempty"`
}

func (s Size) Pixels() geometry.Size {
	return geometry.NormalizeSize(geometry.Size{Width: s.Width, Height: s.Height}, s.Unit)
}

// NullableString tells an absent field apart from an explicit null.
type NullableString struct {
	Set   bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

func (n NullableString) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}
