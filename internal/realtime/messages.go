package realtime

import (
	"encoding/json"
	"fmt"
	"time"
)

// Change types carried on the wire.
const (
	ChangeInsert = "insert"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)

// ChangeEvent describes one committed mutation of a user's records. The
// record payload stays raw JSON until the consumer normalizes it into a
// canonical type; producers are free to use either naming convention.
type ChangeEvent struct {
	Table      string          `json:"table"`
	ChangeType string          `json:"change_type"`
	UserID     string          `json:"user_id"`
	Record     json.RawMessage `json:"record"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewChangeEvent builds an event for a record, serializing the record as
// its payload.
func NewChangeEvent(table, changeType, userID string, record any) (*ChangeEvent, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return &ChangeEvent{
		Table:      table,
		ChangeType: changeType,
		UserID:     userID,
		Record:     payload,
		Timestamp:  time.Now(),
	}, nil
}

// ToJSON converts the event to JSON bytes.
func (e *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ChangeEventFromJSON creates an event from JSON bytes.
func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// DecodeRecord unmarshals the raw payload into a loose map for boundary
// normalization.
func (e *ChangeEvent) DecodeRecord() (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(e.Record, &raw); err != nil {
		return nil, fmt.Errorf("decode record payload: %w", err)
	}
	return raw, nil
}
