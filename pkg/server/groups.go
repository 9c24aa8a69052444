package server

import (
	"strings"

	"github.com/gcammarata/wirechat/internal/logger"
	"github.com/gcammarata/wirechat/pkg/roster"
	"github.com/gcammarata/wirechat/pkg/store"
	"github.com/gcammarata/wirechat/pkg/wire"
)

// requireMember checks the membership gate for group-scoped requests.
// Non-members are silently ignored: no response frame is written.
func (s *Server) requireMember(sess *roster.Session, group string) bool {
	member, err := s.store.IsMemberOfGroup(group, sess.Username)
	if err != nil {
		logger.Error("membership check failed", "group", group, "username", sess.Username, "error", err)
		return false
	}
	if !member {
		logger.Debug("ignoring group request from non-member", "group", group, "username", sess.Username)
	}
	return member
}

// handleGroupCreate creates a group with the session as owner and first
// member, answering with a success flag frame.
func (s *Server) handleGroupCreate(sess *roster.Session, f wire.Frame) error {
	name := strings.TrimSpace(f.Content)
	err := s.store.CreateGroup(name, sess.Username)
	s.activity.Record("group %s created by %s: ok=%t", name, sess.Username, err == nil)
	return s.respondStatus(sess, wire.MsgGroupCreateReply, err == nil)
}

// handleGroupAdd enrolls the named user. Any current member may add;
// the target must be a registered account.
func (s *Server) handleGroupAdd(sess *roster.Session, f wire.Frame) error {
	group := strings.TrimSpace(f.Username)
	target := strings.TrimSpace(f.Content)
	if !s.requireMember(sess, group) {
		return nil
	}

	exists, err := s.store.UserExists(target)
	if err != nil {
		logger.Error("user lookup failed", "username", target, "error", err)
	}
	if err != nil || !exists {
		s.activity.Record("group add %s to %s by %s failed: no such user", target, group, sess.Username)
		return s.respondStatus(sess, wire.MsgAuthResponse, false)
	}

	err = s.store.AddUserToGroup(group, target)
	s.activity.Record("group add %s to %s by %s: ok=%t", target, group, sess.Username, err == nil)
	return s.respondStatus(sess, wire.MsgAuthResponse, err == nil)
}

// handleGroupRemove removes the named user from the group.
func (s *Server) handleGroupRemove(sess *roster.Session, f wire.Frame) error {
	group := strings.TrimSpace(f.Username)
	target := strings.TrimSpace(f.Content)
	if !s.requireMember(sess, group) {
		return nil
	}

	err := s.store.RemoveUserFromGroup(group, target)
	s.activity.Record("group remove %s from %s by %s: ok=%t", target, group, sess.Username, err == nil)
	return s.respondStatus(sess, wire.MsgAuthResponse, err == nil)
}

// handleGroupLeave removes the session's own membership.
func (s *Server) handleGroupLeave(sess *roster.Session, f wire.Frame) error {
	group := strings.TrimSpace(f.Content)
	err := s.store.RemoveUserFromGroup(group, sess.Username)
	s.activity.Record("user %s left group %s: ok=%t", sess.Username, group, err == nil)
	return s.respondStatus(sess, wire.MsgAuthResponse, err == nil)
}

// handleGroupMessage persists the message and fans a group-text frame
// out to every other online member. The rendered content carries the
// sender inline so the username field can carry the group.
func (s *Server) handleGroupMessage(sess *roster.Session, f wire.Frame) error {
	group := strings.TrimSpace(f.Username)
	if !s.requireMember(sess, group) {
		return nil
	}

	if err := s.store.SaveGroupMessage(group, sess.Username, f.Content); err != nil {
		logger.Error("failed to persist group message", "group", group, "sender", sess.Username, "error", err)
		s.activity.Record("group message %s -> %s failed: %v", sess.Username, group, err)
		return nil
	}
	s.metrics.RecordPersisted("group")
	s.activity.Record("group message %s -> %s", sess.Username, group)

	members, err := s.store.ListGroupMembers(group)
	if err != nil {
		logger.Error("failed to list group members", "group", group, "error", err)
		return nil
	}

	frame := wire.Frame{
		Type:     wire.MsgGroupText,
		Username: group,
		Content:  sess.Username + ": " + f.Content,
	}
	s.fanOut(s.roster.Snapshot(members, sess.ID), frame, "group")
	return nil
}

// handleGroupHistory replies with the rendered group history, gated on
// membership.
func (s *Server) handleGroupHistory(sess *roster.Session, f wire.Frame) error {
	group := strings.TrimSpace(f.Username)
	if !s.requireMember(sess, group) {
		return nil
	}

	msgs, err := s.store.GroupHistory(group, s.config.HistoryLimit)
	if err != nil {
		logger.Error("failed to load group history", "group", group, "error", err)
		return s.writeFrame(sess, wire.Frame{Type: wire.MsgGroupHistoryReply, Username: group})
	}

	rendered := store.RenderHistory(store.GroupHistoryLines(msgs), wire.ContentSize-1)
	return s.writeFrame(sess, wire.Frame{
		Type:     wire.MsgGroupHistoryReply,
		Username: group,
		Content:  rendered,
	})
}

// handleGroupMembers replies with the comma-joined member list, gated
// on membership.
func (s *Server) handleGroupMembers(sess *roster.Session, f wire.Frame) error {
	group := strings.TrimSpace(f.Username)
	if !s.requireMember(sess, group) {
		return nil
	}

	members, err := s.store.ListGroupMembers(group)
	if err != nil {
		logger.Error("failed to list group members", "group", group, "error", err)
		members = nil
	}

	return s.writeFrame(sess, wire.Frame{
		Type:     wire.MsgGroupMembersReply,
		Username: group,
		Content:  strings.Join(members, ", "),
	})
}

// handleGroupList replies with the comma-joined groups the session
// belongs to.
func (s *Server) handleGroupList(sess *roster.Session, _ wire.Frame) error {
	groups, err := s.store.ListGroupsForUser(sess.Username)
	if err != nil {
		logger.Error("failed to list groups", "username", sess.Username, "error", err)
		groups = nil
	}

	return s.writeFrame(sess, wire.Frame{
		Type:     wire.MsgGroupListReply,
		Username: wire.ServerName,
		Content:  strings.Join(groups, ", "),
	})
}
