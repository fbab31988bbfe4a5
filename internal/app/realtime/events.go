/*
Package realtime fans committed chat mutations out to connected WebSocket
sessions and tracks multi-session presence.

The hub addresses sessions two ways: per-user (every session the user has
open, on any device) and per-chat (sessions that explicitly joined a chat's
channel after a membership check). Transports enqueue events only after the
underlying transaction committed, so a delivered event always describes
durable state.
*/
package realtime

import (
	"encoding/json"
	"time"

	"bekgram/internal/pkg/logx"
)

// EventType names a realtime event on the wire.
type EventType string

const (
	EventChatUpdated    EventType = "chat:updated"
	EventMessageNew     EventType = "message:new"
	EventMessageDeleted EventType = "message:deleted"
	EventMessageRead    EventType = "message:read"
	EventChatDeleted    EventType = "chat:deleted"
	EventPresenceUpdate EventType = "presence:update"
)

// Event is the envelope delivered to sessions.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// Encode serializes the event for the wire. A marshal failure yields nil,
// which sessions drop.
func (e Event) Encode() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		logx.Error(err, "Failed to encode realtime event", "event_type", string(e.Type))
		return nil
	}
	return data
}

// ChatUpdated signals that a chat's list entry changed (preview, roster,
// unread counter) and should be refetched.
func ChatUpdated(chatID string, at time.Time) Event {
	return Event{Type: EventChatUpdated, Payload: struct {
		ChatID string    `json:"chatId"`
		At     time.Time `json:"at"`
	}{chatID, at}}
}

// MessageNew carries a freshly appended ledger row.
func MessageNew(message any) Event {
	return Event{Type: EventMessageNew, Payload: message}
}

// MessageDeleted signals removal of a ledger row.
func MessageDeleted(chatID, messageID string) Event {
	return Event{Type: EventMessageDeleted, Payload: struct {
		ChatID    string `json:"chatId"`
		MessageID string `json:"messageId"`
	}{chatID, messageID}}
}

// MessageRead signals that readerID swept the chat's unread messages.
func MessageRead(chatID, readerID string, count int64, at time.Time) Event {
	return Event{Type: EventMessageRead, Payload: struct {
		ChatID   string    `json:"chatId"`
		ReaderID string    `json:"readerId"`
		Count    int64     `json:"count"`
		At       time.Time `json:"at"`
	}{chatID, readerID, count, at}}
}

// ChatDeleted signals that a chat no longer exists for the recipient.
func ChatDeleted(chatID string) Event {
	return Event{Type: EventChatDeleted, Payload: struct {
		ChatID string `json:"chatId"`
	}{chatID}}
}

// PresenceUpdate announces a user's online flag to everyone connected.
func PresenceUpdate(userID string, isOnline bool, lastSeen time.Time) Event {
	return Event{Type: EventPresenceUpdate, Payload: struct {
		UserID   string    `json:"userId"`
		IsOnline bool      `json:"isOnline"`
		LastSeen time.Time `json:"lastSeen"`
	}{userID, isOnline, lastSeen}}
}
