// Package storage defines the persistence interface for session transcripts.
package storage

import (
	"context"

	"github.com/hyperjump/faqnav/internal/models"
)

// Transcript records navigation events for operators. It is write-mostly and
// never used to restore a session.
type Transcript interface {
	RecordEvent(ctx context.Context, ev *models.SessionEvent) error
	ListEvents(ctx context.Context, sessionID string, offset, limit int) ([]*models.SessionEvent, error)
	ListSessions(ctx context.Context, offset, limit int) ([]*models.SessionSummary, error)

	// Stats
	CountEvents(ctx context.Context) (int64, error)
	CountSessions(ctx context.Context) (int64, error)

	Close() error
}
