// Package models defines the messages exchanged with clients and the records
// kept about sessions.
package models

// Inbound is a client message: the label it picked or free text.
type Inbound struct {
	Message string `json:"message"`
}

// Reply is an outbound message. Prompts and warnings carry Options; answers
// leave it nil so the key is omitted on the wire.
type Reply struct {
	Reply   string   `json:"reply"`
	Options []string `json:"options,omitempty"`
}

// IsAnswer reports whether r is an answer (no options attached).
func (r Reply) IsAnswer() bool {
	return r.Options == nil
}
