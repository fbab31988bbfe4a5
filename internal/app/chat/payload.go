package chat

import (
	"encoding/json"
	"strings"
	"time"

	"bekgram/internal/app/db"
)

// Structured payloads ride the message ledger as JSON bodies tagged with a
// "kind" discriminator. They reuse the ordinary message machinery end to
// end: persistence, previews, read receipts, and realtime delivery.
const (
	PayloadKindGroupEvent     = "group_event"
	PayloadKindVerifyRequest  = "verify_request"
	PayloadKindVerifyDecision = "verify_decision"
)

// Group event actions.
const (
	GroupActionJoined  = "joined"
	GroupActionAdded   = "added"
	GroupActionRemoved = "removed"
)

// GroupEventPayload records a membership change as a chat message. Actor and
// target identities are denormalized so the event renders even after either
// account changes its name.
type GroupEventPayload struct {
	Kind              string    `json:"kind"`
	Action            string    `json:"action"`
	ActorID           string    `json:"actorId"`
	ActorUsername     string    `json:"actorUsername"`
	ActorDisplayName  string    `json:"actorDisplayName"`
	TargetID          string    `json:"targetId"`
	TargetUsername    string    `json:"targetUsername"`
	TargetDisplayName string    `json:"targetDisplayName"`
	At                time.Time `json:"at"`
}

// NewGroupEvent builds the ledger body for a membership change.
func NewGroupEvent(action string, actor, target *db.User, at time.Time) string {
	p := GroupEventPayload{
		Kind:              PayloadKindGroupEvent,
		Action:            action,
		ActorID:           actor.ID,
		ActorUsername:     actor.Username,
		ActorDisplayName:  actor.DisplayName,
		TargetID:          target.ID,
		TargetUsername:    target.Username,
		TargetDisplayName: target.DisplayName,
		At:                at.UTC(),
	}
	body, _ := json.Marshal(p)
	return string(body)
}

// VerifyRequestPayload is the ledger body of a verification request. The
// requester's profile is snapshotted so the reviewer sees what was submitted.
type VerifyRequestPayload struct {
	Kind        string    `json:"kind"`
	RequesterID string    `json:"requesterId"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Bio         string    `json:"bio"`
	PhoneNumber *string   `json:"phoneNumber"`
	RequestedAt time.Time `json:"requestedAt"`
}

// NewVerifyRequest builds the ledger body for a verification request.
func NewVerifyRequest(requester *db.User, at time.Time) string {
	bio := ""
	if requester.Bio != nil {
		bio = *requester.Bio
	}
	p := VerifyRequestPayload{
		Kind:        PayloadKindVerifyRequest,
		RequesterID: requester.ID,
		Username:    requester.Username,
		DisplayName: requester.DisplayName,
		Bio:         bio,
		PhoneNumber: requester.PhoneNumber,
		RequestedAt: at.UTC(),
	}
	body, _ := json.Marshal(p)
	return string(body)
}

// VerifyDecisionPayload is the ledger body of a verification verdict.
type VerifyDecisionPayload struct {
	Kind             string     `json:"kind"`
	RequesterID      string     `json:"requesterId"`
	Username         string     `json:"username"`
	ReviewerID       string     `json:"reviewerId"`
	ReviewerUsername string     `json:"reviewerUsername"`
	Approved         bool       `json:"approved"`
	BlockedUntil     *time.Time `json:"blockedUntil"`
	DecidedAt        time.Time  `json:"decidedAt"`
}

// NewVerifyDecision builds the ledger body for a verification verdict.
// blockedUntil is set only on rejection.
func NewVerifyDecision(requester, reviewer *db.User, approved bool, blockedUntil *time.Time, at time.Time) string {
	p := VerifyDecisionPayload{
		Kind:             PayloadKindVerifyDecision,
		RequesterID:      requester.ID,
		Username:         requester.Username,
		ReviewerID:       reviewer.ID,
		ReviewerUsername: reviewer.Username,
		Approved:         approved,
		BlockedUntil:     blockedUntil,
		DecidedAt:        at.UTC(),
	}
	body, _ := json.Marshal(p)
	return string(body)
}

// payloadProbe decodes just enough of a JSON body to classify it for
// preview building. Missing fields stay zero-valued.
type payloadProbe struct {
	Kind              string `json:"kind"`
	Action            string `json:"action"`
	Approved          bool   `json:"approved"`
	ActorUsername     string `json:"actorUsername"`
	ActorDisplayName  string `json:"actorDisplayName"`
	TargetUsername    string `json:"targetUsername"`
	TargetDisplayName string `json:"targetDisplayName"`
}

// probePayload attempts to classify a message body as a structured payload.
// Non-JSON bodies and JSON without a known kind return ok=false.
func probePayload(body string) (p payloadProbe, ok bool) {
	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, "{") {
		return p, false
	}
	if err := json.Unmarshal([]byte(trimmed), &p); err != nil {
		return payloadProbe{}, false
	}
	switch p.Kind {
	case PayloadKindGroupEvent, PayloadKindVerifyRequest, PayloadKindVerifyDecision:
		return p, true
	}
	return payloadProbe{}, false
}
