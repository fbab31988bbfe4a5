package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectKeyIsOrderInsensitive(t *testing.T) {
	a := DirectKey("user-a", "user-b")
	b := DirectKey("user-b", "user-a")

	assert.Equal(t, a, b)
	assert.Equal(t, "direct:user-a_user-b", a)
}

func TestDirectKeyDistinctPairs(t *testing.T) {
	assert.NotEqual(t, DirectKey("u1", "u2"), DirectKey("u1", "u3"))
}

func TestSavedKey(t *testing.T) {
	assert.Equal(t, "saved:u42", SavedKey("u42"))
	assert.NotEqual(t, SavedKey("u1"), SavedKey("u2"))
}
