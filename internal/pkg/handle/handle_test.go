package handle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "bek", Normalize("  @Bek "))
	assert.Equal(t, "team_chat1", Normalize("Team_Chat1"))
	assert.Equal(t, "", Normalize("   "))
	assert.Equal(t, "bek", Normalize("@bek"))
}

func TestValid(t *testing.T) {
	valid := []string{"beka", "asilbek", "team_chat1", "a_b_", "0000"}
	for _, s := range valid {
		assert.True(t, Valid(s), s)
	}

	invalid := []string{
		"",
		"abc",                         // too short
		"Bek1",                        // uppercase must be normalized first
		"has space",
		"dash-name",
		"@name",
		"waaaaaaaaaaaaaaaaaaaaytoolong", // 25+ chars
	}
	for _, s := range invalid {
		assert.False(t, Valid(s), s)
	}
}
