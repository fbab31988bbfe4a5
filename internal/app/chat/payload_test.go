package chat

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bekgram/internal/app/db"
)

func testTime(t *testing.T) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, "2026-03-01T12:00:00Z")
	require.NoError(t, err)
	return ts
}

func TestNewGroupEventRoundTrip(t *testing.T) {
	actor := &db.User{ID: "a1", Username: "beka", DisplayName: "Beka"}
	target := &db.User{ID: "t1", Username: "dili", DisplayName: "Dili"}

	body := NewGroupEvent(GroupActionAdded, actor, target, testTime(t))

	var p GroupEventPayload
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	assert.Equal(t, PayloadKindGroupEvent, p.Kind)
	assert.Equal(t, GroupActionAdded, p.Action)
	assert.Equal(t, "a1", p.ActorID)
	assert.Equal(t, "Beka", p.ActorDisplayName)
	assert.Equal(t, "t1", p.TargetID)
	assert.Equal(t, "dili", p.TargetUsername)
	assert.True(t, p.At.Equal(testTime(t)))
}

func TestNewVerifyRequestSnapshotsProfile(t *testing.T) {
	bio := "hi, verify me"
	phone := "+998901234567"
	requester := &db.User{
		ID: "r1", Username: "Beka", DisplayName: "Beka K",
		Bio: &bio, PhoneNumber: &phone,
	}

	body := NewVerifyRequest(requester, testTime(t))

	var p VerifyRequestPayload
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	assert.Equal(t, PayloadKindVerifyRequest, p.Kind)
	assert.Equal(t, "r1", p.RequesterID)
	assert.Equal(t, "Beka", p.Username)
	assert.Equal(t, "hi, verify me", p.Bio)
	require.NotNil(t, p.PhoneNumber)
	assert.Equal(t, phone, *p.PhoneNumber)
}

func TestNewVerifyRequestWithoutOptionalFields(t *testing.T) {
	requester := &db.User{ID: "r1", Username: "beka", DisplayName: "Beka"}

	var p VerifyRequestPayload
	require.NoError(t, json.Unmarshal([]byte(NewVerifyRequest(requester, testTime(t))), &p))

	assert.Equal(t, "", p.Bio)
	assert.Nil(t, p.PhoneNumber)
}

func TestNewVerifyDecision(t *testing.T) {
	requester := &db.User{ID: "r1", Username: "beka"}
	reviewer := &db.User{ID: "v1", Username: "verify"}

	t.Run("approved", func(t *testing.T) {
		var p VerifyDecisionPayload
		require.NoError(t, json.Unmarshal(
			[]byte(NewVerifyDecision(requester, reviewer, true, nil, testTime(t))), &p))

		assert.True(t, p.Approved)
		assert.Nil(t, p.BlockedUntil)
		assert.Equal(t, "v1", p.ReviewerID)
		assert.Equal(t, "verify", p.ReviewerUsername)
	})

	t.Run("rejected carries cooldown", func(t *testing.T) {
		until := testTime(t).Add(VerificationCooldown)

		var p VerifyDecisionPayload
		require.NoError(t, json.Unmarshal(
			[]byte(NewVerifyDecision(requester, reviewer, false, &until, testTime(t))), &p))

		assert.False(t, p.Approved)
		require.NotNil(t, p.BlockedUntil)
		assert.True(t, p.BlockedUntil.Equal(until))
	})
}

func TestProbePayload(t *testing.T) {
	_, ok := probePayload("plain text")
	assert.False(t, ok)

	_, ok = probePayload(`{"kind":"poll"}`)
	assert.False(t, ok)

	_, ok = probePayload(`{broken`)
	assert.False(t, ok)

	p, ok := probePayload(`  {"kind":"verify_request"} `)
	assert.True(t, ok)
	assert.Equal(t, PayloadKindVerifyRequest, p.Kind)
}

func TestIsVerificationAdmin(t *testing.T) {
	assert.True(t, IsVerificationAdmin("verify"))
	assert.True(t, IsVerificationAdmin("asilbek"))
	assert.False(t, IsVerificationAdmin("beka"))
}
