package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"bekgram/internal/app/db"
)

func TestBuildSummaryMediaLabels(t *testing.T) {
	assert.Equal(t, "Sticker", BuildSummary(db.MessageTypeSticker, "https://cdn/st.webp"))
	assert.Equal(t, "Photo", BuildSummary(db.MessageTypeImage, "https://cdn/a.jpg"))
	assert.Equal(t, "Video", BuildSummary(db.MessageTypeVideo, "https://cdn/a.mp4"))
	assert.Equal(t, "Voice message", BuildSummary(db.MessageTypeVoice, "https://cdn/a.ogg"))
}

func TestBuildSummaryPlainText(t *testing.T) {
	assert.Equal(t, "hello there", BuildSummary(db.MessageTypeText, "  hello there \n"))
}

func TestBuildSummaryLongTextIsCapped(t *testing.T) {
	long := strings.Repeat("x", 500)
	got := BuildSummary(db.MessageTypeText, long)
	assert.Len(t, got, maxSummaryLength)
}

func TestBuildSummaryCapCountsRunes(t *testing.T) {
	long := strings.Repeat("ё", 500)
	got := BuildSummary(db.MessageTypeText, long)
	assert.Equal(t, maxSummaryLength, len([]rune(got)))
	assert.True(t, strings.HasPrefix(got, "ё"))
}

func TestBuildSummaryGroupEvents(t *testing.T) {
	actor := &db.User{ID: "a1", Username: "beka", DisplayName: "Beka"}
	target := &db.User{ID: "t1", Username: "dili", DisplayName: "Dili"}

	joined := NewGroupEvent(GroupActionJoined, actor, target, testTime(t))
	assert.Equal(t, "Dili joined", BuildSummary(db.MessageTypeGroupEvent, joined))

	added := NewGroupEvent(GroupActionAdded, actor, target, testTime(t))
	assert.Equal(t, "Beka added Dili", BuildSummary(db.MessageTypeGroupEvent, added))

	removed := NewGroupEvent(GroupActionRemoved, actor, target, testTime(t))
	assert.Equal(t, "Beka removed Dili", BuildSummary(db.MessageTypeGroupEvent, removed))
}

func TestBuildSummaryGroupEventFallsBackToUsername(t *testing.T) {
	actor := &db.User{ID: "a1", Username: "beka"}
	target := &db.User{ID: "t1", Username: "dili"}

	added := NewGroupEvent(GroupActionAdded, actor, target, testTime(t))
	assert.Equal(t, "beka added dili", BuildSummary(db.MessageTypeGroupEvent, added))
}

func TestBuildSummaryVerification(t *testing.T) {
	requester := &db.User{ID: "r1", Username: "beka", DisplayName: "Beka"}
	reviewer := &db.User{ID: "v1", Username: "verify", DisplayName: "Verify"}

	request := NewVerifyRequest(requester, testTime(t))
	assert.Equal(t, "Verification request", BuildSummary(db.MessageTypeText, request))

	approved := NewVerifyDecision(requester, reviewer, true, nil, testTime(t))
	assert.Equal(t, "Verification approved", BuildSummary(db.MessageTypeText, approved))

	until := testTime(t).Add(VerificationCooldown)
	rejected := NewVerifyDecision(requester, reviewer, false, &until, testTime(t))
	assert.Equal(t, "Verification rejected", BuildSummary(db.MessageTypeText, rejected))
}

func TestBuildSummaryMalformedJSONStaysVerbatim(t *testing.T) {
	body := `{"kind": "group_event", broken`
	assert.Equal(t, body, BuildSummary(db.MessageTypeText, body))
}

func TestBuildSummaryUnknownKindStaysVerbatim(t *testing.T) {
	body := `{"kind":"poll","question":"lunch?"}`
	assert.Equal(t, body, BuildSummary(db.MessageTypeText, body))
}
