package server

import (
	"strings"

	"github.com/gcammarata/wirechat/internal/logger"
	"github.com/gcammarata/wirechat/pkg/roster"
	"github.com/gcammarata/wirechat/pkg/store"
	"github.com/gcammarata/wirechat/pkg/wire"
)

// handleText broadcasts chat text to every other session. Broadcast
// text is not persisted; only direct and group messages are.
func (s *Server) handleText(sess *roster.Session, f wire.Frame) error {
	frame := wire.Frame{Type: wire.MsgText, Username: sess.Username, Content: f.Content}
	s.fanOut(s.roster.SnapshotAll(sess.ID), frame, "broadcast")
	return nil
}

// handleDirectMessage persists the message, then delivers a copy to the
// receiver's live sessions. The sender gets no response frame; offline
// receivers recover the message through history.
func (s *Server) handleDirectMessage(sess *roster.Session, f wire.Frame) error {
	receiver := strings.TrimSpace(f.Username)
	if receiver == "" {
		return nil
	}

	if err := s.store.SaveMessage(sess.Username, receiver, f.Content); err != nil {
		logger.Error("failed to persist direct message", "sender", sess.Username, "receiver", receiver, "error", err)
		s.activity.Record("direct message %s -> %s failed: %v", sess.Username, receiver, err)
		return nil
	}
	s.metrics.RecordPersisted("direct")
	s.activity.Record("direct message %s -> %s", sess.Username, receiver)

	frame := wire.Frame{Type: wire.MsgText, Username: sess.Username, Content: f.Content}
	s.fanOut(s.roster.Snapshot([]string{receiver}, sess.ID), frame, "direct")
	return nil
}

// handleHistory replies with the rendered conversation history between
// the session and the named peer.
func (s *Server) handleHistory(sess *roster.Session, f wire.Frame) error {
	peer := strings.TrimSpace(f.Username)

	msgs, err := s.store.ConversationHistory(sess.Username, peer, s.config.HistoryLimit)
	if err != nil {
		logger.Error("failed to load history", "username", sess.Username, "peer", peer, "error", err)
		return s.writeFrame(sess, wire.Frame{Type: wire.MsgHistoryReply, Username: wire.ServerName})
	}

	rendered := store.RenderHistory(store.DirectHistoryLines(msgs), wire.ContentSize-1)
	return s.writeFrame(sess, wire.Frame{
		Type:     wire.MsgHistoryReply,
		Username: wire.ServerName,
		Content:  rendered,
	})
}

// handleFriendRequest records a pending request toward the named target.
func (s *Server) handleFriendRequest(sess *roster.Session, f wire.Frame) error {
	target := strings.TrimSpace(f.Content)
	err := s.store.SendFriendRequest(sess.Username, target)
	s.activity.Record("friend request %s -> %s: ok=%t", sess.Username, target, err == nil)
	return s.respondStatus(sess, wire.MsgAuthResponse, err == nil)
}

// handleFriendAccept upgrades a pending request from the named
// requester into a mirrored accepted friendship.
func (s *Server) handleFriendAccept(sess *roster.Session, f wire.Frame) error {
	requester := strings.TrimSpace(f.Content)
	err := s.store.AcceptFriendRequest(requester, sess.Username)
	s.activity.Record("friend accept %s <- %s: ok=%t", requester, sess.Username, err == nil)
	return s.respondStatus(sess, wire.MsgAuthResponse, err == nil)
}

// handleFriendRefuse drops a pending request from the named requester.
func (s *Server) handleFriendRefuse(sess *roster.Session, f wire.Frame) error {
	requester := strings.TrimSpace(f.Content)
	err := s.store.RefuseFriendRequest(requester, sess.Username)
	s.activity.Record("friend refuse %s <- %s: ok=%t", requester, sess.Username, err == nil)
	return s.respondStatus(sess, wire.MsgAuthResponse, err == nil)
}

// handleFriendRemove deletes the friendship in both directions.
func (s *Server) handleFriendRemove(sess *roster.Session, f wire.Frame) error {
	target := strings.TrimSpace(f.Content)
	err := s.store.RemoveFriend(sess.Username, target)
	s.activity.Record("unfriend %s -- %s: ok=%t", sess.Username, target, err == nil)
	return s.respondStatus(sess, wire.MsgAuthResponse, err == nil)
}

// handleFriendList replies with the annotated friend listing. The store
// returns the entries with the online flag unset; it is stamped here
// from the roster so the store and roster locks are never nested.
func (s *Server) handleFriendList(sess *roster.Session, _ wire.Frame) error {
	entries, err := s.store.ListFriends(sess.Username)
	if err != nil {
		logger.Error("failed to list friends", "username", sess.Username, "error", err)
		entries = nil
	}
	for i := range entries {
		entries[i].Online = s.roster.Online(entries[i].Name)
	}

	return s.writeFrame(sess, wire.Frame{
		Type:     wire.MsgFriendListReply,
		Username: wire.ServerName,
		Content:  formatFriendList(entries),
	})
}

// handleAllUsersStatus replies with every account annotated with its
// friendship status relative to the session.
func (s *Server) handleAllUsersStatus(sess *roster.Session, _ wire.Frame) error {
	users, err := s.store.ListAllUsersWithStatus(sess.Username)
	if err != nil {
		logger.Error("failed to list users", "username", sess.Username, "error", err)
		users = nil
	}

	return s.writeFrame(sess, wire.Frame{
		Type:     wire.MsgAllUsersStatusReply,
		Username: wire.ServerName,
		Content:  formatUserStatuses(users),
	})
}
