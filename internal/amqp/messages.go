package amqp

import (
	"encoding/json"
	"time"
)

// SubscriptionEventMessage is the wire form of a ledger mutation. It carries
// identifiers only; consumers reload the blob from storage for the full
// record.
type SubscriptionEventMessage struct {
	Action    string    `json:"action"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

func (m *SubscriptionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SubscriptionEventMessageFromJSON(data []byte) (*SubscriptionEventMessage, error) {
	var msg SubscriptionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
