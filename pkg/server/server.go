// Package server implements the chat protocol: TCP accept loop,
// authentication gate, request dispatch, and online delivery fan-out.
package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gcammarata/wirechat/internal/activity"
	"github.com/gcammarata/wirechat/internal/logger"
	"github.com/gcammarata/wirechat/pkg/config"
	"github.com/gcammarata/wirechat/pkg/metrics"
	"github.com/gcammarata/wirechat/pkg/roster"
	"github.com/gcammarata/wirechat/pkg/store"
	"github.com/gcammarata/wirechat/pkg/wire"
)

// Server is the chat server. One goroutine per accepted connection;
// shared state lives in the store and the session roster, each behind
// its own mutex. The two locks are never nested.
//
// All methods are safe for concurrent use. Shutdown uses sync.Once so
// context cancellation and Stop can race safely.
type Server struct {
	config          config.ServerConfig
	shutdownTimeout time.Duration

	store    *store.Store
	roster   *roster.Roster
	metrics  *metrics.Metrics
	activity *activity.Log

	handlers map[int32]handlerFunc

	// activeConns tracks connection goroutines for graceful shutdown.
	activeConns sync.WaitGroup

	shutdownOnce sync.Once
	shutdown     chan struct{}

	listener   net.Listener
	listenerMu sync.RWMutex

	// listenerReady is closed once the listener is bound, so tests can
	// wait for a dialable address.
	listenerReady chan struct{}
}

// New creates a chat server. The metrics collector and activity log
// may be nil; both are no-ops when absent.
func New(cfg config.ServerConfig, shutdownTimeout time.Duration, st *store.Store, m *metrics.Metrics, act *activity.Log) *Server {
	s := &Server{
		config:          cfg,
		shutdownTimeout: shutdownTimeout,
		store:           st,
		roster:          roster.New(),
		metrics:         m,
		activity:        act,
		shutdown:        make(chan struct{}),
		listenerReady:   make(chan struct{}),
	}
	s.handlers = s.buildHandlers()
	return s
}

// Serve binds the listener and accepts connections until the context
// is cancelled or Stop is called. It returns after all sessions have
// finished or the shutdown timeout has elapsed.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create chat listener on %s: %w", addr, err)
	}

	s.listenerMu.Lock()
	s.listener = listener
	s.listenerMu.Unlock()
	close(s.listenerReady)

	logger.Info("chat server listening", "address", listener.Addr().String(), "max_sessions", s.config.MaxSessions)

	go func() {
		<-ctx.Done()
		logger.Info("chat shutdown signal received", "error", ctx.Err())
		s.initiateShutdown()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return s.gracefulShutdown()
			default:
				logger.Debug("error accepting connection", "error", err)
				continue
			}
		}

		// Admission control: the roster size is the only gate. Over-cap
		// connections are closed without a frame; the client observes EOF.
		if s.roster.Len() >= s.config.MaxSessions {
			logger.Warn("session cap reached, rejecting connection", "remote", conn.RemoteAddr())
			s.metrics.RecordConnection("rejected_full")
			s.activity.Record("connection from %s rejected: session cap %d reached", conn.RemoteAddr(), s.config.MaxSessions)
			_ = conn.Close()
			continue
		}

		s.metrics.RecordConnection("admitted")
		logger.Debug("connection accepted", "remote", conn.RemoteAddr())

		s.activeConns.Add(1)
		go func(c net.Conn) {
			defer s.activeConns.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic in session handler", "remote", c.RemoteAddr(), "panic", r)
					_ = c.Close()
				}
			}()
			s.handleConn(c)
		}(conn)
	}
}

// handleConn runs one session end to end: authentication, roster
// registration, dispatch loop, teardown.
func (s *Server) handleConn(conn net.Conn) {
	sess := roster.NewSession(conn)
	defer sess.Close()

	if err := s.authenticate(sess); err != nil {
		logger.Debug("session ended before authentication", "remote", sess.RemoteAddr, "error", err)
		return
	}

	s.roster.Add(sess)
	s.metrics.SessionOpened()

	// Teardown is deferred so a panicking handler also releases the
	// roster entry; a leaked entry would count against the session cap.
	defer func() {
		s.roster.Remove(sess)
		s.metrics.SessionClosed()
		logger.Info("user left", "username", sess.Username, "remote", sess.RemoteAddr, "sessions", s.roster.Len())
		s.activity.Record("user %s left", sess.Username)
		s.broadcastFromServer(sess.Username + " left the chat")
	}()

	logger.Info("user joined", "username", sess.Username, "remote", sess.RemoteAddr, "sessions", s.roster.Len())
	s.activity.Record("user %s joined from %s", sess.Username, sess.RemoteAddr)
	s.broadcastFromServer(sess.Username + " joined the chat")

	if err := s.dispatchLoop(sess); err != nil {
		logger.Debug("session loop ended", "username", sess.Username, "error", err)
	}
}

// broadcastFromServer fans a server-originated text frame out to every
// live session.
func (s *Server) broadcastFromServer(text string) {
	frame := wire.Frame{Type: wire.MsgText, Username: wire.ServerName, Content: text}
	s.fanOut(s.roster.SnapshotAll(uuid.Nil), frame, "broadcast")
}

// initiateShutdown closes the shutdown channel and the listener. Safe
// to call multiple times and from multiple goroutines.
func (s *Server) initiateShutdown() {
	s.shutdownOnce.Do(func() {
		logger.Debug("chat shutdown initiated")
		close(s.shutdown)

		s.listenerMu.Lock()
		if s.listener != nil {
			if err := s.listener.Close(); err != nil {
				logger.Debug("error closing listener", "error", err)
			}
		}
		s.listenerMu.Unlock()
	})
}

// gracefulShutdown waits for in-flight sessions, force-closing their
// sockets when the timeout elapses.
func (s *Server) gracefulShutdown() error {
	done := make(chan struct{})
	go func() {
		s.activeConns.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("chat server stopped, all sessions drained")
		return nil
	case <-time.After(s.shutdownTimeout):
	}

	logger.Warn("shutdown timeout reached, closing remaining sessions", "timeout", s.shutdownTimeout)
	for _, sess := range s.roster.SnapshotAll(uuid.Nil) {
		_ = sess.Close()
	}
	s.activeConns.Wait()
	return nil
}

// Stop shuts the server down and waits for Serve to drain, or for the
// given context to expire.
func (s *Server) Stop(ctx context.Context) error {
	s.initiateShutdown()

	done := make(chan struct{})
	go func() {
		s.activeConns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ListenerAddr returns the bound address once Serve has created the
// listener, blocking until it is ready. Useful with port 0 in tests.
func (s *Server) ListenerAddr() string {
	<-s.listenerReady
	s.listenerMu.RLock()
	defer s.listenerMu.RUnlock()
	return s.listener.Addr().String()
}

// Sessions reports the number of live authenticated sessions.
func (s *Server) Sessions() int {
	return s.roster.Len()
}
