// Package navigator implements the per-connection cursor over an FAQ tree and
// the transition function that moves it in response to client messages.
package navigator

import (
	"fmt"
	"strings"

	"github.com/hyperjump/faqnav/internal/faq"
	"github.com/hyperjump/faqnav/internal/models"
)

// HomeOption is the reserved option appended to every prompt. Sending it
// returns to the root from any depth.
const HomeOption = "🏠 Return to Home"

const (
	// RootTitle is the title of the top-level prompt.
	RootTitle = "Categories"
	// RelatedPrefix prefixes the title shown after an answer with follow-ups.
	RelatedPrefix = "Related to: "

	promptFormat      = "Please choose an option under: %s"
	msgEmpty          = "⚠️ Please send a valid message."
	msgNoMatch        = "❌ Invalid selection. Please choose again:"
	msgUnexpectedItem = "⚠️ Unexpected item format."
)

// Frame is one ancestor position kept on the history stack.
type Frame struct {
	Title   string
	Options []faq.Node
}

// State is the cursor of one session. Options is never empty.
// History holds the positions left by each dive since the last return to root,
// most recent last.
type State struct {
	Title   string
	Options []faq.Node
	History []Frame
}

// Depth is the number of dives since the last return to root.
func (s State) Depth() int {
	return len(s.History)
}

// push returns the state reached by diving into options under title. The
// receiver's history is copied, never appended to in place.
func (s State) push(title string, options []faq.Node) State {
	history := make([]Frame, len(s.History), len(s.History)+1)
	copy(history, s.History)
	history = append(history, Frame{Title: s.Title, Options: s.Options})
	return State{Title: title, Options: options, History: history}
}

// Root returns the initial state for doc.
func Root(doc *faq.Document) State {
	return State{Title: RootTitle, Options: doc.RootCategories()}
}

// Outcome classifies a transition.
type Outcome int

const (
	// OutcomeEmpty: blank message, state unchanged.
	OutcomeEmpty Outcome = iota + 1
	// OutcomeHome: the home option was chosen.
	OutcomeHome
	// OutcomeNoMatch: no option carries the given label, state unchanged.
	OutcomeNoMatch
	// OutcomeAnswer: a question without follow-ups was answered; back at root.
	OutcomeAnswer
	// OutcomeAnswerRelated: a question was answered and its follow-ups offered.
	OutcomeAnswerRelated
	// OutcomeCategory: moved into a category.
	OutcomeCategory
	// OutcomeUnexpectedShape: the chosen node has nothing to show, state unchanged.
	OutcomeUnexpectedShape
)

var outcomeNames = map[Outcome]string{
	OutcomeEmpty:           "empty",
	OutcomeHome:            "home",
	OutcomeNoMatch:         "no_match",
	OutcomeAnswer:          "answer",
	OutcomeAnswerRelated:   "answer_related",
	OutcomeCategory:        "category",
	OutcomeUnexpectedShape: "unexpected_shape",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Warning reports whether the outcome left the state unchanged with a diagnostic.
func (o Outcome) Warning() bool {
	return o == OutcomeEmpty || o == OutcomeNoMatch || o == OutcomeUnexpectedShape
}

// Transition is the result of applying one message.
// Replies holds one message, or two (answer then next prompt) for answers.
type Transition struct {
	State   State
	Replies []models.Reply
	Outcome Outcome
}

// Apply computes the next state and the replies for message. It never fails:
// bad input yields a warning that repeats the current options.
func Apply(doc *faq.Document, state State, message string) Transition {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return warn(state, msgEmpty, OutcomeEmpty)
	}
	if msg == HomeOption {
		root := Root(doc)
		return Transition{State: root, Replies: []models.Reply{Prompt(root)}, Outcome: OutcomeHome}
	}

	match, ok := faq.Find(state.Options, msg)
	if !ok {
		return warn(state, msgNoMatch, OutcomeNoMatch)
	}

	switch n := match.(type) {
	case *faq.Question:
		answer := models.Reply{Reply: n.Answer}
		if len(n.Related) > 0 {
			next := state.push(RelatedPrefix+n.Label(), n.Related)
			return Transition{State: next, Replies: []models.Reply{answer, Prompt(next)}, Outcome: OutcomeAnswerRelated}
		}
		root := Root(doc)
		return Transition{State: root, Replies: []models.Reply{answer, Prompt(root)}, Outcome: OutcomeAnswer}
	case *faq.Category:
		if len(n.Questions) > 0 {
			next := state.push(n.Label(), n.Questions)
			return Transition{State: next, Replies: []models.Reply{Prompt(next)}, Outcome: OutcomeCategory}
		}
	}
	return warn(state, msgUnexpectedItem, OutcomeUnexpectedShape)
}

func warn(state State, text string, outcome Outcome) Transition {
	return Transition{
		State:   state,
		Replies: []models.Reply{{Reply: text, Options: DisplayOptions(state.Options)}},
		Outcome: outcome,
	}
}

// Prompt builds the option prompt for state.
func Prompt(state State) models.Reply {
	return models.Reply{
		Reply:   fmt.Sprintf(promptFormat, state.Title),
		Options: DisplayOptions(state.Options),
	}
}

// DisplayOptions returns the labels of nodes in order followed by HomeOption.
func DisplayOptions(nodes []faq.Node) []string {
	return append(faq.Labels(nodes), HomeOption)
}
