package models

import "time"

// SessionEvent records one transition of a navigation session.
type SessionEvent struct {
	ID        int64     `json:"id" db:"id"`
	SessionID string    `json:"session_id" db:"session_id"`
	Seq       int       `json:"seq" db:"seq"`
	Input     string    `json:"input" db:"input"`
	Outcome   string    `json:"outcome" db:"outcome"`
	Title     string    `json:"title" db:"title"`
	Depth     int       `json:"depth" db:"depth"`
	Revision  string    `json:"revision" db:"revision"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SessionSummary aggregates the recorded events of one session.
type SessionSummary struct {
	SessionID string `json:"session_id" db:"session_id"`
	Events    int64  `json:"events" db:"events"`
	LastSeq   int    `json:"last_seq" db:"last_seq"`
	MaxDepth  int    `json:"max_depth" db:"max_depth"`
}
