// Package cli provides output helpers for the faqnav command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/faqnav/internal/faq"
	"github.com/hyperjump/faqnav/pkg/utils"
)

// OutputFormat is the format for tree output.
type OutputFormat string

const (
	// OutputText is an indented human-readable tree (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat maps a flag value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// TreeNode is the JSON form of one FAQ entry.
type TreeNode struct {
	Kind     string      `json:"kind"`
	Label    string      `json:"label"`
	Answer   *string     `json:"answer,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`
}

// Tree is the JSON form of a whole document.
type Tree struct {
	Source   string      `json:"source"`
	Revision string      `json:"revision"`
	Stats    faq.Stats   `json:"stats"`
	Nodes    []*TreeNode `json:"categories"`
}

// BuildTree converts doc into its JSON form.
func BuildTree(doc *faq.Document) *Tree {
	return &Tree{
		Source:   doc.Source,
		Revision: doc.Revision,
		Stats:    doc.Stats(),
		Nodes:    buildNodes(doc.RootCategories()),
	}
}

func buildNodes(nodes []faq.Node) []*TreeNode {
	out := make([]*TreeNode, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case *faq.Category:
			out = append(out, &TreeNode{Kind: "category", Label: v.Label(), Children: buildNodes(v.Questions)})
		case *faq.Question:
			answer := v.Answer
			out = append(out, &TreeNode{Kind: "question", Label: v.Label(), Answer: &answer, Children: buildNodes(v.Related)})
		}
	}
	return out
}

// WriteTree writes the document tree to w. answerWidth bounds the answer
// preview in text output; 0 prints answers in full.
func WriteTree(w io.Writer, doc *faq.Document, format OutputFormat, answerWidth int) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(BuildTree(doc))
	}
	WriteSummary(w, doc)
	fmt.Fprintln(w)
	writeNodes(w, doc.RootCategories(), 0, answerWidth)
	return nil
}

func writeNodes(w io.Writer, nodes []faq.Node, depth, answerWidth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		switch v := n.(type) {
		case *faq.Category:
			fmt.Fprintf(w, "%s▸ %s\n", indent, v.Label())
			writeNodes(w, v.Questions, depth+1, answerWidth)
		case *faq.Question:
			fmt.Fprintf(w, "%s? %s\n", indent, v.Label())
			if v.Answer != "" {
				fmt.Fprintf(w, "%s  = %s\n", indent, utils.Truncate(utils.SingleLine(v.Answer), answerWidth))
			}
			writeNodes(w, v.Related, depth+1, answerWidth)
		}
	}
}

// WriteSummary writes a one-line description of doc.
func WriteSummary(w io.Writer, doc *faq.Document) {
	st := doc.Stats()
	fmt.Fprintf(w, "%s (%s): %d categories, %d questions, max depth %d\n",
		doc.Source, doc.Revision, st.Categories, st.Questions, st.MaxDepth)
}
