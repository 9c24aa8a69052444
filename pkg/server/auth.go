package server

import (
	"strings"

	"github.com/gcammarata/wirechat/internal/logger"
	"github.com/gcammarata/wirechat/pkg/roster"
	"github.com/gcammarata/wirechat/pkg/wire"
)

// authenticate consumes frames until the session is authenticated or
// the peer disconnects. On success the session username is set.
//
// Register and login answer with a one-byte auth response; register
// success also authenticates the new account. Change-password and
// delete-account are answered without transitioning. The legacy
// username-only frame authenticates with no password check. Every
// other frame type is ignored during this phase.
func (s *Server) authenticate(sess *roster.Session) error {
	for {
		f, err := sess.ReadFrame()
		if err != nil {
			return err
		}
		s.metrics.RecordFrame("read")

		switch f.Type {
		case wire.MsgRegister:
			username := strings.TrimSpace(f.Username)
			password := f.Content
			if username == "" || password == "" {
				s.metrics.RecordAuth("register", "failure")
				if err := s.writeFrame(sess, wire.AuthResponse(false)); err != nil {
					return err
				}
				continue
			}
			if err := s.store.AddUser(username, password); err != nil {
				logger.Debug("registration failed", "username", username, "error", err)
				s.metrics.RecordAuth("register", "failure")
				s.activity.Record("registration failed for %s: %v", username, err)
				if err := s.writeFrame(sess, wire.AuthResponse(false)); err != nil {
					return err
				}
				continue
			}
			s.metrics.RecordAuth("register", "success")
			s.activity.Record("account %s registered", username)
			if err := s.writeFrame(sess, wire.AuthResponse(true)); err != nil {
				return err
			}
			sess.Username = username
			return nil

		case wire.MsgLogin:
			username := strings.TrimSpace(f.Username)
			if err := s.store.VerifyUser(username, f.Content); err != nil {
				logger.Debug("login failed", "username", username, "error", err)
				s.metrics.RecordAuth("login", "failure")
				s.activity.Record("login failed for %s", username)
				if err := s.writeFrame(sess, wire.AuthResponse(false)); err != nil {
					return err
				}
				continue
			}
			s.metrics.RecordAuth("login", "success")
			s.activity.Record("user %s logged in", username)
			if err := s.writeFrame(sess, wire.AuthResponse(true)); err != nil {
				return err
			}
			sess.Username = username
			return nil

		case wire.MsgChangePassword:
			err := s.store.ChangePassword(f.Username, f.Content)
			s.activity.Record("password change for %s: ok=%t", f.Username, err == nil)
			if werr := s.writeFrame(sess, wire.AuthResponse(err == nil)); werr != nil {
				return werr
			}

		case wire.MsgDeleteAccount:
			err := s.store.DeleteUser(f.Username)
			s.activity.Record("account deletion for %s: ok=%t", f.Username, err == nil)
			if werr := s.writeFrame(sess, wire.AuthResponse(err == nil)); werr != nil {
				return werr
			}

		case wire.MsgUsername:
			// Earliest client variant: no credentials, no response.
			username := strings.TrimSpace(f.Username)
			if username == "" {
				continue
			}
			s.activity.Record("user %s joined via legacy handshake", username)
			sess.Username = username
			return nil

		default:
			logger.Debug("ignoring frame during auth phase", "type", f.Type, "remote", sess.RemoteAddr)
		}
	}
}
