package server

import (
	"errors"

	"github.com/gcammarata/wirechat/internal/logger"
	"github.com/gcammarata/wirechat/pkg/roster"
	"github.com/gcammarata/wirechat/pkg/wire"
)

// errDisconnect signals a graceful client disconnect.
var errDisconnect = errors.New("client disconnected")

// handlerFunc processes one inbound frame for an authenticated session.
// A returned error tears the session down; handlers recover everything
// else locally.
type handlerFunc func(sess *roster.Session, f wire.Frame) error

// buildHandlers returns the dispatch table keyed by wire type code.
func (s *Server) buildHandlers() map[int32]handlerFunc {
	return map[int32]handlerFunc{
		wire.MsgText:                  s.handleText,
		wire.MsgFriendRequest:         s.handleFriendRequest,
		wire.MsgFriendAccept:          s.handleFriendAccept,
		wire.MsgFriendRefuse:          s.handleFriendRefuse,
		wire.MsgFriendRemove:          s.handleFriendRemove,
		wire.MsgFriendListRequest:     s.handleFriendList,
		wire.MsgAllUsersStatusRequest: s.handleAllUsersStatus,
		wire.MsgDirectMessage:         s.handleDirectMessage,
		wire.MsgHistoryRequest:        s.handleHistory,
		wire.MsgGroupCreate:           s.handleGroupCreate,
		wire.MsgGroupAdd:              s.handleGroupAdd,
		wire.MsgGroupRemove:           s.handleGroupRemove,
		wire.MsgGroupLeave:            s.handleGroupLeave,
		wire.MsgGroupMessage:          s.handleGroupMessage,
		wire.MsgGroupHistoryRequest:   s.handleGroupHistory,
		wire.MsgGroupMembersRequest:   s.handleGroupMembers,
		wire.MsgGroupListRequest:      s.handleGroupList,
		wire.MsgDisconnect: func(*roster.Session, wire.Frame) error {
			return errDisconnect
		},
	}
}

// dispatchLoop reads frames and routes them until the peer disconnects.
// Per session, requests are strictly ordered: the response to one
// request is written before the next request is read.
func (s *Server) dispatchLoop(sess *roster.Session) error {
	for {
		f, err := sess.ReadFrame()
		if err != nil {
			return err
		}
		s.metrics.RecordFrame("read")

		handler, ok := s.handlers[f.Type]
		if !ok {
			logger.Debug("ignoring unknown frame type", "type", f.Type, "username", sess.Username)
			continue
		}

		if err := handler(sess, f); err != nil {
			if errors.Is(err, errDisconnect) {
				return nil
			}
			return err
		}
	}
}

// writeFrame sends one frame to the session and counts it.
func (s *Server) writeFrame(sess *roster.Session, f wire.Frame) error {
	if err := sess.WriteFrame(f); err != nil {
		return err
	}
	s.metrics.RecordFrame("written")
	return nil
}

// respondStatus answers a request with a one-byte success flag frame of
// the given type.
func (s *Server) respondStatus(sess *roster.Session, msgType int32, ok bool) error {
	status := wire.AuthFailure
	if ok {
		status = wire.AuthSuccess
	}
	return s.writeFrame(sess, wire.Frame{
		Type:     msgType,
		Username: wire.ServerName,
		Content:  string([]byte{status}),
	})
}

// fanOut writes one frame to each target session. The roster snapshot
// was taken beforehand; no lock is held across these socket writes, and
// write errors are left for the failing session's own read loop to
// notice.
func (s *Server) fanOut(targets []*roster.Session, f wire.Frame, kind string) {
	delivered := 0
	for _, target := range targets {
		if err := target.WriteFrame(f); err != nil {
			logger.Debug("fan-out write failed", "target", target.Username, "error", err)
			continue
		}
		s.metrics.RecordFrame("written")
		delivered++
	}
	s.metrics.RecordDelivered(kind, delivered)
}
