package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/hyperjump/faqnav/internal/models"
	"github.com/hyperjump/faqnav/internal/navigator"
	"go.uber.org/zap"
)

// ErrChannelFailure wraps an unexpected send or receive failure that ended a session.
var ErrChannelFailure = errors.New("channel failure")

const recordTimeout = 2 * time.Second

// Conn is the message channel of one session. *websocket.Conn satisfies it.
type Conn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	doc := s.store.Current()
	sess := navigator.NewSession(uuid.NewString(), doc)
	logger := s.logger.With(zap.String("session_id", sess.ID()), zap.String("revision", doc.Revision))

	s.active.Add(1)
	sessionsActive.Inc()
	sessionsTotal.Inc()
	defer func() {
		s.active.Add(-1)
		sessionsActive.Dec()
	}()
	logger.Info("session started", zap.String("remote_addr", r.RemoteAddr))

	// Unblock the read loop on shutdown.
	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-s.ctx.Done():
			_ = ws.Close()
		case <-finished:
		}
	}()

	err = s.serveSession(s.ctx, ws, sess, logger)
	fields := []zap.Field{zap.Int("messages", sess.Seq()), zap.Int("depth", sess.State().Depth())}
	switch {
	case err == nil:
		sessionTerminations.WithLabelValues("peer_closed").Inc()
		logger.Info("session closed", fields...)
	case s.ctx.Err() != nil:
		sessionTerminations.WithLabelValues("shutdown").Inc()
		logger.Info("session closed by shutdown", fields...)
	default:
		sessionTerminations.WithLabelValues("fault").Inc()
		logger.Warn("session terminated", append(fields, zap.Error(err))...)
	}
}

// serveSession runs the message loop of one session until the channel ends.
// It returns nil when the peer closes normally and an error wrapping
// ErrChannelFailure otherwise. Every reply of a transition is written before
// the next message is read.
func (s *Server) serveSession(ctx context.Context, conn Conn, sess *navigator.Session, logger *zap.Logger) error {
	if err := conn.WriteJSON(sess.Start()); err != nil {
		return fmt.Errorf("%w: send initial prompt: %v", ErrChannelFailure, err)
	}
	for {
		var in models.Inbound
		if err := conn.ReadJSON(&in); err != nil {
			if peerClosed(err) {
				return nil
			}
			return fmt.Errorf("%w: receive: %v", ErrChannelFailure, err)
		}

		tr := sess.Handle(in.Message)
		transitionsTotal.WithLabelValues(tr.Outcome.String()).Inc()
		sessionDepth.Observe(float64(tr.State.Depth()))
		logger.Debug("transition",
			zap.String("outcome", tr.Outcome.String()),
			zap.String("title", tr.State.Title),
			zap.Int("depth", tr.State.Depth()))
		s.record(ctx, sess, in.Message, tr, logger)

		for _, reply := range tr.Replies {
			if err := conn.WriteJSON(reply); err != nil {
				return fmt.Errorf("%w: send: %v", ErrChannelFailure, err)
			}
		}
	}
}

func (s *Server) record(ctx context.Context, sess *navigator.Session, input string, tr navigator.Transition, logger *zap.Logger) {
	if s.transcript == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()
	ev := &models.SessionEvent{
		SessionID: sess.ID(),
		Seq:       sess.Seq(),
		Input:     input,
		Outcome:   tr.Outcome.String(),
		Title:     tr.State.Title,
		Depth:     tr.State.Depth(),
		Revision:  sess.Document().Revision,
	}
	if err := s.transcript.RecordEvent(ctx, ev); err != nil {
		logger.Warn("transcript record failed", zap.Int("seq", ev.Seq), zap.Error(err))
	}
}

// peerClosed reports whether err is an orderly close initiated by the client.
func peerClosed(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}
