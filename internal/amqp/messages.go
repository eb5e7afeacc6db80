package amqp

import (
	"encoding/json"
	"time"
)

// GroupSyncMessage tells the worker that a group changed. It carries
// only the group name and a version counter; the worker fetches the
// current snapshot from the database, so stale messages are harmless.
type GroupSyncMessage struct {
	Group     string    `json:"group"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewGroupSyncMessage(group string, version int64) *GroupSyncMessage {
	return &GroupSyncMessage{
		Group:     group,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *GroupSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func GroupSyncMessageFromJSON(data []byte) (*GroupSyncMessage, error) {
	var msg GroupSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
