package audit

import "time"

// TopicMappingChanged carries every successful mapping mutation.
const TopicMappingChanged = "mapping.changed"

// Action names the mutation that produced an event.
type Action string

const (
	ActionCreated    Action = "created"
	ActionUpdated    Action = "updated"
	ActionRemoved    Action = "removed"
	ActionRemovedAll Action = "removed_all"
)

// MappingChanged is emitted after a mapping mutation succeeds.
// Token and LongURL are empty for ActionRemovedAll; Count holds the number removed.
type MappingChanged struct {
	Action     Action    `json:"action"`
	Token      string    `json:"token,omitempty"`
	LongURL    string    `json:"longUrl,omitempty"`
	Count      int       `json:"count,omitempty"`
	RequestID  string    `json:"requestId,omitempty"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	OccurredAt time.Time `json:"occurredAt"`
}
