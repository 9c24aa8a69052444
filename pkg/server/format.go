package server

import (
	"strings"

	"github.com/gcammarata/wirechat/pkg/models"
)

// formatFriendList renders the annotated friend listing:
//
//	Friends: alice: accepted, online, bob: pending, offline
func formatFriendList(entries []models.FriendEntry) string {
	var b strings.Builder
	b.WriteString("Friends: ")
	for i, e := range entries {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.Name)
		b.WriteString(": ")
		b.WriteString(e.Status)
		if e.Online {
			b.WriteString(", online")
		} else {
			b.WriteString(", offline")
		}
	}
	return b.String()
}

// formatUserStatuses renders the all-users listing:
//
//	Users and status:
//	- alice: self
//	- bob: friend
func formatUserStatuses(users []models.UserStatus) string {
	var b strings.Builder
	b.WriteString("Users and status:\n")
	for _, u := range users {
		b.WriteString("- ")
		b.WriteString(u.Name)
		b.WriteString(": ")
		b.WriteString(string(u.Status))
		b.WriteString("\n")
	}
	return b.String()
}
