package navigator

import (
	"github.com/hyperjump/faqnav/internal/faq"
	"github.com/hyperjump/faqnav/internal/models"
)

// Session owns the cursor of one connection. It is bound to the Document it
// was created with, so a reload of the store does not move an active session.
// A Session is not safe for concurrent use; callers process one message at a time.
type Session struct {
	id    string
	doc   *faq.Document
	state State
	seq   int
}

// NewSession returns a session positioned at the root of doc.
func NewSession(id string, doc *faq.Document) *Session {
	return &Session{id: id, doc: doc, state: Root(doc)}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Document returns the snapshot the session is bound to.
func (s *Session) Document() *faq.Document { return s.doc }

// State returns the current cursor.
func (s *Session) State() State { return s.state }

// Seq returns how many messages have been handled.
func (s *Session) Seq() int { return s.seq }

// Start returns the prompt sent when the connection opens.
func (s *Session) Start() models.Reply {
	return Prompt(s.state)
}

// Handle applies message and advances the cursor.
func (s *Session) Handle(message string) Transition {
	t := Apply(s.doc, s.state, message)
	s.state = t.State
	s.seq++
	return t
}
