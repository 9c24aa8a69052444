package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gcammarata/wirechat/pkg/models"
)

func TestFormatFriendList(t *testing.T) {
	entries := []models.FriendEntry{
		{Name: "alice", Status: "accepted", Online: true},
		{Name: "bob", Status: "outgoing", Online: false},
		{Name: "carol", Status: "pending", Online: true},
	}
	assert.Equal(t,
		"Friends: alice: accepted, online, bob: outgoing, offline, carol: pending, online",
		formatFriendList(entries))

	assert.Equal(t, "Friends: ", formatFriendList(nil))
}

func TestFormatUserStatuses(t *testing.T) {
	users := []models.UserStatus{
		{Name: "alice", Status: models.StatusSelf},
		{Name: "bob", Status: models.StatusFriend},
		{Name: "carol", Status: models.StatusNone},
	}
	assert.Equal(t,
		"Users and status:\n- alice: self\n- bob: friend\n- carol: none\n",
		formatUserStatuses(users))
}
