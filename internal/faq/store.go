package faq

import "sync/atomic"

// Store holds the current Document snapshot. Sessions take a snapshot with
// Current when they start and keep it; Reload only affects later callers.
type Store struct {
	current atomic.Pointer[Document]
}

// NewStore returns a store serving doc.
func NewStore(doc *Document) *Store {
	s := &Store{}
	s.current.Store(doc)
	return s
}

// Current returns the latest snapshot.
func (s *Store) Current() *Document {
	return s.current.Load()
}

// Reload loads path and swaps it in. On error the previous snapshot is kept.
func (s *Store) Reload(path string) (*Document, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	s.current.Store(doc)
	return doc, nil
}
