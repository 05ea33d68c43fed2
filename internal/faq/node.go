// Package faq holds the immutable FAQ document tree and the snapshot store that
// sessions read it from.
package faq

// Node is one entry of the FAQ tree: a *Category or a *Question.
// The concrete type is fixed when the document is parsed.
type Node interface {
	// Label is the display string that identifies the node among its siblings.
	Label() string
	isNode()
}

// Category groups child nodes under a name.
type Category struct {
	Name      string
	Questions []Node
}

// Label returns the category name.
func (c *Category) Label() string { return c.Name }

func (*Category) isNode() {}

// Question carries an answer and optional follow-up questions.
type Question struct {
	Text    string
	Answer  string
	Related []Node
}

// Label returns the question text.
func (q *Question) Label() string { return q.Text }

func (*Question) isNode() {}

// Labels returns the labels of nodes in order.
func Labels(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Label()
	}
	return out
}

// Find returns the first node whose label equals label exactly.
// Duplicate labels are not rejected at load time; later duplicates are unreachable.
func Find(nodes []Node, label string) (Node, bool) {
	for _, n := range nodes {
		if n.Label() == label {
			return n, true
		}
	}
	return nil, false
}
