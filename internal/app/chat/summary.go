package chat

import (
	"strings"

	"bekgram/internal/app/db"
)

// maxSummaryLength bounds the text excerpt stored in the chat preview.
const maxSummaryLength = 300

// BuildSummary produces the denormalized one-line preview stored on the chat
// row for a message. Media kinds map to fixed labels, structured payloads to
// human-readable phrases, and plain text to a bounded excerpt.
func BuildSummary(msgType, body string) string {
	switch msgType {
	case db.MessageTypeSticker:
		return "Sticker"
	case db.MessageTypeImage:
		return "Photo"
	case db.MessageTypeVideo:
		return "Video"
	case db.MessageTypeVoice:
		return "Voice message"
	}

	if p, ok := probePayload(body); ok {
		return summarizePayload(p)
	}

	return excerpt(body)
}

func summarizePayload(p payloadProbe) string {
	switch p.Kind {
	case PayloadKindVerifyRequest:
		return "Verification request"

	case PayloadKindVerifyDecision:
		if p.Approved {
			return "Verification approved"
		}
		return "Verification rejected"

	case PayloadKindGroupEvent:
		actor := firstNonEmpty(p.ActorDisplayName, p.ActorUsername, "Admin")
		switch p.Action {
		case GroupActionJoined:
			return firstNonEmpty(p.TargetDisplayName, p.TargetUsername, "User") + " joined"
		case GroupActionAdded:
			return actor + " added " + firstNonEmpty(p.TargetDisplayName, p.TargetUsername, "member")
		case GroupActionRemoved:
			return actor + " removed " + firstNonEmpty(p.TargetDisplayName, p.TargetUsername, "member")
		}
		return "Group update"
	}

	return excerpt(p.Kind)
}

// excerpt trims the body and caps it at maxSummaryLength runes, so a
// multi-byte character is never split mid-sequence.
func excerpt(body string) string {
	trimmed := strings.TrimSpace(body)
	runes := []rune(trimmed)
	if len(runes) <= maxSummaryLength {
		return trimmed
	}
	return string(runes[:maxSummaryLength])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
