package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcammarata/wirechat/pkg/models"
)

// newTestStore creates an in-memory SQLite store.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(&Config{
		Type:   DatabaseTypeSQLite,
		SQLite: SQLiteConfig{Path: ":memory:"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestConfigValidation(t *testing.T) {
	t.Run("defaults to sqlite", func(t *testing.T) {
		cfg := &Config{}
		cfg.ApplyDefaults()
		assert.Equal(t, DatabaseTypeSQLite, cfg.Type)
		assert.NotEmpty(t, cfg.SQLite.Path)
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		_, err := New(&Config{Type: "oracle"})
		assert.Error(t, err)
	})

	t.Run("postgres requires host", func(t *testing.T) {
		cfg := &Config{Type: DatabaseTypePostgres}
		cfg.ApplyDefaults()
		assert.Error(t, cfg.Validate())
	})
}

func TestAccounts(t *testing.T) {
	s := newTestStore(t)

	t.Run("register and verify", func(t *testing.T) {
		require.NoError(t, s.AddUser("alice", "pw"))
		assert.NoError(t, s.VerifyUser("alice", "pw"))
	})

	t.Run("duplicate registration fails", func(t *testing.T) {
		assert.ErrorIs(t, s.AddUser("alice", "other"), models.ErrDuplicateUser)
	})

	t.Run("empty username fails", func(t *testing.T) {
		assert.ErrorIs(t, s.AddUser("   ", "pw"), models.ErrEmptyUsername)
	})

	t.Run("username is trimmed", func(t *testing.T) {
		require.NoError(t, s.AddUser("  bob  ", "pw"))
		assert.NoError(t, s.VerifyUser("bob", "pw"))
	})

	t.Run("password is exact match", func(t *testing.T) {
		assert.ErrorIs(t, s.VerifyUser("alice", "PW"), models.ErrBadCredential)
		assert.ErrorIs(t, s.VerifyUser("nobody", "pw"), models.ErrBadCredential)
	})

	t.Run("change password", func(t *testing.T) {
		require.NoError(t, s.ChangePassword("alice", "fresh"))
		assert.NoError(t, s.VerifyUser("alice", "fresh"))
		assert.ErrorIs(t, s.ChangePassword("nobody", "x"), models.ErrUserNotFound)
	})

	t.Run("delete user cascades edges and memberships", func(t *testing.T) {
		require.NoError(t, s.AddUser("carol", "pw"))
		require.NoError(t, s.SendFriendRequest("carol", "alice"))
		require.NoError(t, s.CreateGroup("doomed", "carol"))

		require.NoError(t, s.DeleteUser("carol"))

		assert.ErrorIs(t, s.VerifyUser("carol", "pw"), models.ErrBadCredential)
		status, err := s.FriendStatus("alice", "carol")
		require.NoError(t, err)
		assert.Equal(t, models.StatusNone, status)
		member, err := s.IsMemberOfGroup("doomed", "carol")
		require.NoError(t, err)
		assert.False(t, member)

		assert.ErrorIs(t, s.DeleteUser("carol"), models.ErrUserNotFound)
	})
}

func TestFriendshipHandshake(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddUser("alice", "pw"))
	require.NoError(t, s.AddUser("bob", "pw"))

	t.Run("request creates one pending edge", func(t *testing.T) {
		require.NoError(t, s.SendFriendRequest("alice", "bob"))

		status, err := s.FriendStatus("alice", "bob")
		require.NoError(t, err)
		assert.Equal(t, models.StatusOutgoing, status)

		status, err = s.FriendStatus("bob", "alice")
		require.NoError(t, err)
		assert.Equal(t, models.StatusIncoming, status)
	})

	t.Run("request is idempotent", func(t *testing.T) {
		assert.NoError(t, s.SendFriendRequest("alice", "bob"))
	})

	t.Run("accept mirrors both directions", func(t *testing.T) {
		require.NoError(t, s.AcceptFriendRequest("alice", "bob"))

		ab, err := s.AreFriends("alice", "bob")
		require.NoError(t, err)
		ba, err := s.AreFriends("bob", "alice")
		require.NoError(t, err)
		assert.True(t, ab)
		assert.True(t, ba)

		entries, err := s.ListFriends("bob")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "alice", entries[0].Name)
		assert.Equal(t, "accepted", entries[0].Status)
	})

	t.Run("accept without pending request fails", func(t *testing.T) {
		assert.ErrorIs(t, s.AcceptFriendRequest("bob", "alice"), models.ErrNoPendingRequest)
	})

	t.Run("unfriend deletes both directions", func(t *testing.T) {
		require.NoError(t, s.RemoveFriend("alice", "bob"))

		for _, pair := range [][2]string{{"alice", "bob"}, {"bob", "alice"}} {
			status, err := s.FriendStatus(pair[0], pair[1])
			require.NoError(t, err)
			assert.Equal(t, models.StatusNone, status)
		}
	})

	t.Run("refuse deletes the pending edge", func(t *testing.T) {
		require.NoError(t, s.SendFriendRequest("alice", "bob"))
		require.NoError(t, s.RefuseFriendRequest("alice", "bob"))

		status, err := s.FriendStatus("alice", "bob")
		require.NoError(t, err)
		assert.Equal(t, models.StatusNone, status)

		assert.ErrorIs(t, s.RefuseFriendRequest("alice", "bob"), models.ErrNoPendingRequest)
	})
}

func TestListFriendsAnnotations(t *testing.T) {
	s := newTestStore(t)
	for _, u := range []string{"alice", "bob", "carol", "dave"} {
		require.NoError(t, s.AddUser(u, "pw"))
	}

	// bob is a friend, carol has an incoming request to alice,
	// alice has an outgoing request to dave.
	require.NoError(t, s.SendFriendRequest("alice", "bob"))
	require.NoError(t, s.AcceptFriendRequest("alice", "bob"))
	require.NoError(t, s.SendFriendRequest("carol", "alice"))
	require.NoError(t, s.SendFriendRequest("alice", "dave"))

	entries, err := s.ListFriends("alice")
	require.NoError(t, err)

	byName := map[string]string{}
	for _, e := range entries {
		byName[e.Name] = e.Status
		assert.False(t, e.Online, "store must not stamp the online flag")
	}
	assert.Equal(t, map[string]string{
		"bob":   "accepted",
		"dave":  "outgoing",
		"carol": "pending",
	}, byName)
}

func TestAllUsersWithStatus(t *testing.T) {
	s := newTestStore(t)
	for _, u := range []string{"carol", "alice", "bob"} {
		require.NoError(t, s.AddUser(u, "pw"))
	}
	require.NoError(t, s.SendFriendRequest("alice", "bob"))

	list, err := s.ListAllUsersWithStatus("alice")
	require.NoError(t, err)
	require.Len(t, list, 3)

	// Alphabetical order, viewer-relative statuses.
	assert.Equal(t, models.UserStatus{Name: "alice", Status: models.StatusSelf}, list[0])
	assert.Equal(t, models.UserStatus{Name: "bob", Status: models.StatusOutgoing}, list[1])
	assert.Equal(t, models.UserStatus{Name: "carol", Status: models.StatusNone}, list[2])
}

func TestDirectMessageHistory(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveMessage("alice", "bob", "one"))
	require.NoError(t, s.SaveMessage("bob", "alice", "two"))
	require.NoError(t, s.SaveMessage("alice", "bob", "three"))

	t.Run("symmetric and ascending", func(t *testing.T) {
		ab, err := s.ConversationHistory("alice", "bob", 50)
		require.NoError(t, err)
		ba, err := s.ConversationHistory("bob", "alice", 50)
		require.NoError(t, err)

		assert.Equal(t, ab, ba)
		require.Len(t, ab, 3)
		for i := 1; i < len(ab); i++ {
			assert.Greater(t, ab[i].ID, ab[i-1].ID)
		}
		assert.Equal(t, "three", ab[2].Body)
	})

	t.Run("limit keeps the most recent", func(t *testing.T) {
		msgs, err := s.ConversationHistory("alice", "bob", 2)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "two", msgs[0].Body)
		assert.Equal(t, "three", msgs[1].Body)
	})

	t.Run("other pairs are excluded", func(t *testing.T) {
		require.NoError(t, s.SaveMessage("alice", "carol", "private"))
		msgs, err := s.ConversationHistory("alice", "bob", 50)
		require.NoError(t, err)
		for _, m := range msgs {
			assert.NotEqual(t, "private", m.Body)
		}
	})
}

func TestGroups(t *testing.T) {
	s := newTestStore(t)

	t.Run("create enrolls the owner", func(t *testing.T) {
		require.NoError(t, s.CreateGroup("team", "alice"))

		member, err := s.IsMemberOfGroup("team", "alice")
		require.NoError(t, err)
		assert.True(t, member)

		groups, err := s.ListGroupsForUser("alice")
		require.NoError(t, err)
		assert.Equal(t, []string{"team"}, groups)
	})

	t.Run("duplicate name fails", func(t *testing.T) {
		assert.ErrorIs(t, s.CreateGroup("team", "bob"), models.ErrDuplicateGroup)
	})

	t.Run("empty name fails", func(t *testing.T) {
		assert.ErrorIs(t, s.CreateGroup("  ", "alice"), models.ErrEmptyGroupName)
	})

	t.Run("add requires an existing group", func(t *testing.T) {
		assert.ErrorIs(t, s.AddUserToGroup("ghost", "bob"), models.ErrGroupNotFound)
		require.NoError(t, s.AddUserToGroup("team", "bob"))
		// Re-adding is a no-op, not a duplicate row.
		require.NoError(t, s.AddUserToGroup("team", "bob"))

		members, err := s.ListGroupMembers("team")
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, members)
	})

	t.Run("remove deletes the membership", func(t *testing.T) {
		require.NoError(t, s.RemoveUserFromGroup("team", "bob"))

		member, err := s.IsMemberOfGroup("team", "bob")
		require.NoError(t, err)
		assert.False(t, member)

		assert.ErrorIs(t, s.RemoveUserFromGroup("team", "bob"), models.ErrNotAMember)
	})

	t.Run("group history round trip", func(t *testing.T) {
		require.NoError(t, s.SaveGroupMessage("team", "alice", "hi all"))
		msgs, err := s.GroupHistory("team", 50)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "hi all", msgs[len(msgs)-1].Body)
	})
}

func TestRenderHistory(t *testing.T) {
	t.Run("line format", func(t *testing.T) {
		out := RenderHistory([]HistoryLine{
			{SentAt: 1700000000, Sender: "alice", Body: "hello"},
		}, 4095)

		require.True(t, strings.HasSuffix(out, "alice: hello\n"), "got %q", out)
		assert.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] `, out)
	})

	t.Run("truncates at a line boundary", func(t *testing.T) {
		var lines []HistoryLine
		for i := 0; i < 100; i++ {
			lines = append(lines, HistoryLine{SentAt: 1700000000, Sender: "alice", Body: strings.Repeat("x", 100)})
		}

		out := RenderHistory(lines, 4095)
		assert.LessOrEqual(t, len(out), 4095)
		assert.True(t, strings.HasSuffix(out, "...\n"))
		// Every line before the ellipsis is complete.
		body := strings.TrimSuffix(out, "...\n")
		for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
			assert.True(t, strings.HasPrefix(line, "["), "partial line %q", line)
		}
	})

	t.Run("no ellipsis when everything fits", func(t *testing.T) {
		out := RenderHistory([]HistoryLine{
			{SentAt: 1700000000, Sender: "bob", Body: "short"},
		}, 4095)
		assert.False(t, strings.Contains(out, "..."))
	})
}
