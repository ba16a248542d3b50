package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"legisbase/internal/core"
)

// BillLookupMessage is the wire form of a core.LookupEvent.
type BillLookupMessage struct {
	Kind        string    `json:"kind"`
	BillIDs     []int     `json:"billIds"`
	Search      string    `json:"search,omitempty"`
	Tag         string    `json:"tag,omitempty"`
	Found       bool      `json:"found"`
	ResultCount int       `json:"resultCount"`
	RequestID   string    `json:"requestId,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewBillLookupMessage converts an event. A zero event time is replaced
// with the current time.
func NewBillLookupMessage(ev core.LookupEvent) *BillLookupMessage {
	ts := ev.At
	if ts.IsZero() {
		ts = time.Now()
	}
	ids := ev.BillIDs
	if ids == nil {
		ids = []int{}
	}
	return &BillLookupMessage{
		Kind:        string(ev.Kind),
		BillIDs:     append([]int(nil), ids...),
		Search:      ev.Search,
		Tag:         ev.Tag,
		Found:       ev.Found,
		ResultCount: ev.ResultCount,
		RequestID:   ev.RequestID,
		Timestamp:   ts.UTC(),
	}
}

// Event converts the message back to a core.LookupEvent.
func (m *BillLookupMessage) Event() core.LookupEvent {
	return core.LookupEvent{
		Kind:        core.LookupKind(m.Kind),
		BillIDs:     append([]int(nil), m.BillIDs...),
		Search:      m.Search,
		Tag:         m.Tag,
		Found:       m.Found,
		ResultCount: m.ResultCount,
		RequestID:   m.RequestID,
		At:          m.Timestamp,
	}
}

// Validate rejects messages the worker cannot store.
func (m *BillLookupMessage) Validate() error {
	if !core.LookupKind(m.Kind).IsValid() {
		return fmt.Errorf("unknown lookup kind %q", m.Kind)
	}
	if m.Kind == string(core.LookupGet) && len(m.BillIDs) != 1 {
		return errors.New("get lookup must reference exactly one bill")
	}
	if m.ResultCount < 0 {
		return fmt.Errorf("negative result count %d", m.ResultCount)
	}
	if m.Timestamp.IsZero() {
		return errors.New("missing timestamp")
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *BillLookupMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BillLookupMessageFromJSON decodes and validates a message.
func BillLookupMessageFromJSON(data []byte) (*BillLookupMessage, error) {
	var msg BillLookupMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
