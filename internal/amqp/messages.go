package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidMessage marks a delivery that can never be processed.
var ErrInvalidMessage = errors.New("invalid record sync message")

// RecordSyncMessage asks the worker to copy one stored record to the sheet.
// Only the id and version travel; the worker reads the record from SQLite.
type RecordSyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordSyncMessage(id, version int64) *RecordSyncMessage {
	return &RecordSyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordSyncMessageFromJSON decodes a delivery body. Malformed bodies and
// non-positive record ids are reported as ErrInvalidMessage.
func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.ID <= 0 {
		return nil, fmt.Errorf("%w: record id %d", ErrInvalidMessage, msg.ID)
	}
	return &msg, nil
}
