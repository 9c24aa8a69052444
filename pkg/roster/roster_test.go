package roster

import (
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, username string) *Session {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})
	s := NewSession(server)
	s.Username = username
	return s
}

func TestAddRemove(t *testing.T) {
	r := New()
	alice := newSession(t, "alice")

	assert.False(t, r.Online("alice"))

	r.Add(alice)
	assert.True(t, r.Online("alice"))
	assert.Equal(t, 1, r.Len())

	r.Remove(alice)
	assert.False(t, r.Online("alice"))
	assert.Equal(t, 0, r.Len())

	// Removing an unregistered session is a no-op.
	r.Remove(alice)
	assert.Equal(t, 0, r.Len())
}

func TestMultipleSessionsPerUser(t *testing.T) {
	r := New()
	first := newSession(t, "alice")
	second := newSession(t, "alice")

	r.Add(first)
	r.Add(second)
	assert.Equal(t, 2, r.Len())
	assert.Len(t, r.Find("alice"), 2)

	r.Remove(first)
	assert.True(t, r.Online("alice"), "second session keeps the user online")

	r.Remove(second)
	assert.False(t, r.Online("alice"))
}

func TestSnapshot(t *testing.T) {
	r := New()
	alice := newSession(t, "alice")
	bob := newSession(t, "bob")
	carol := newSession(t, "carol")
	r.Add(alice)
	r.Add(bob)
	r.Add(carol)

	t.Run("named users only", func(t *testing.T) {
		got := r.Snapshot([]string{"alice", "carol", "ghost"}, uuid.Nil)
		require.Len(t, got, 2)
	})

	t.Run("excludes the origin session", func(t *testing.T) {
		got := r.Snapshot([]string{"alice", "bob"}, alice.ID)
		require.Len(t, got, 1)
		assert.Equal(t, "bob", got[0].Username)
	})

	t.Run("snapshot all", func(t *testing.T) {
		got := r.SnapshotAll(bob.ID)
		require.Len(t, got, 2)
		for _, s := range got {
			assert.NotEqual(t, bob.ID, s.ID)
		}
	})
}
