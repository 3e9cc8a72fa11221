package amqp

import (
	"encoding/json"
	"time"
)

// RegistrationSyncMessage asks the worker to push one locally-stored
// registration to the spreadsheet. It carries only the local row id; the
// worker fetches the full record from sqlite.
type RegistrationSyncMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRegistrationSyncMessage(id int64) *RegistrationSyncMessage {
	return &RegistrationSyncMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *RegistrationSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RegistrationSyncMessageFromJSON(data []byte) (*RegistrationSyncMessage, error) {
	var msg RegistrationSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
