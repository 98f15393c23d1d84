package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Notification types emitted by the ticket-tracking backend. The set is
// open: unrecognized values are legal and rendered generically.
const (
	TypeTicketAssignment = "ticket_assignment"
	TypeTicketStatus     = "ticket_status"
	TypeTicketComment    = "ticket_comment"
	TypeProjectCreation  = "project_creation"
	TypeDeadlineWarning  = "deadline_warning"
	TypeDeadlineExceeded = "deadline_exceeded"
	TypeWelcome          = "welcome"
	TypeAnnouncement     = "announcement"
	TypeInfo             = "info"
	TypeConnection       = "connection"
)

// DefaultSender is attributed to events that arrive without a sender.
const DefaultSender = "system"

// Notification is a single delivered event shown to the user. Read is
// monotonic: once marked true it never reverts through the public API.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender"`
	Read      bool      `json:"read"`
}

// wireEvent is the tolerant inbound frame shape; every field may be absent.
type wireEvent struct {
	ID        string          `json:"id"`
	Message   string          `json:"message"`
	Type      string          `json:"type"`
	Timestamp json.RawMessage `json:"timestamp"`
	Sender    string          `json:"sender"`
}

// DecodeWire normalizes a raw inbound frame into a Notification. Payloads
// that are not a JSON object, or that carry no message text, are wrapped
// verbatim as a generic info notification. A frame is never dropped.
func DecodeWire(payload []byte, now time.Time) Notification {
	var event wireEvent
	if err := json.Unmarshal(payload, &event); err != nil || strings.TrimSpace(event.Message) == "" {
		return Notification{
			ID:        uuid.NewString(),
			Message:   string(payload),
			Type:      TypeInfo,
			Timestamp: now,
			Sender:    DefaultSender,
		}
	}

	n := Notification{
		ID:        event.ID,
		Message:   event.Message,
		Type:      event.Type,
		Timestamp: parseTimestamp(event.Timestamp, now),
		Sender:    event.Sender,
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Type == "" {
		n.Type = TypeInfo
	}
	if n.Sender == "" {
		n.Sender = DefaultSender
	}
	return n
}

// parseTimestamp accepts RFC3339(Nano) strings or epoch milliseconds and
// falls back to the receipt time for anything else.
func parseTimestamp(raw json.RawMessage, now time.Time) time.Time {
	if len(raw) == 0 {
		return now
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if ts, err := time.Parse(time.RFC3339Nano, asString); err == nil {
			return ts
		}
		return now
	}

	var asMillis int64
	if err := json.Unmarshal(raw, &asMillis); err == nil && asMillis > 0 {
		return time.UnixMilli(asMillis)
	}

	return now
}
