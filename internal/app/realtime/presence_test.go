package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryEdges(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Add("u1"), "first session is the online edge")
	assert.False(t, r.Add("u1"), "second session is not an edge")
	assert.Equal(t, 2, r.Count("u1"))
	assert.True(t, r.Online("u1"))

	assert.False(t, r.Remove("u1"), "one session remains")
	assert.True(t, r.Online("u1"))

	assert.True(t, r.Remove("u1"), "last session is the offline edge")
	assert.False(t, r.Online("u1"))
	assert.Equal(t, 0, r.Count("u1"))
}

func TestRegistryRemoveUntracked(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Remove("ghost"))
	assert.False(t, r.Online("ghost"))
}

func TestRegistryIsolatesUsers(t *testing.T) {
	r := NewRegistry()
	r.Add("u1")
	r.Add("u2")

	assert.True(t, r.Remove("u1"))
	assert.True(t, r.Online("u2"))
}
