package faq

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hyperjump/faqnav/internal/fileid"
	"gopkg.in/yaml.v3"
)

// LoadError reports an unreadable or malformed FAQ source.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load faq %q: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Document is an immutable FAQ tree. It is never modified after Parse returns;
// a reload produces a new Document.
type Document struct {
	Source   string
	Revision string
	LoadedAt time.Time

	roots []Node
}

// Stats summarizes the shape of a Document.
type Stats struct {
	Categories int `json:"categories"`
	Questions  int `json:"questions"`
	MaxDepth   int `json:"max_depth"`
}

// RootCategories returns the top-level nodes. Callers must not modify the slice.
func (d *Document) RootCategories() []Node {
	return d.roots
}

// Stats walks the tree, following both questions and related lists.
func (d *Document) Stats() Stats {
	var s Stats
	var walk func(nodes []Node, depth int)
	walk = func(nodes []Node, depth int) {
		if len(nodes) > 0 && depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		for _, n := range nodes {
			switch v := n.(type) {
			case *Category:
				s.Categories++
				walk(v.Questions, depth+1)
			case *Question:
				s.Questions++
				walk(v.Related, depth+1)
			}
		}
	}
	walk(d.roots, 1)
	return s
}

// Load reads and parses the FAQ file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	return Parse(data, path)
}

// Parse decodes a YAML FAQ document. The top level must be a mapping with a
// non-empty "categories" sequence.
func Parse(data []byte, source string) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("failed to parse yaml: %w", err)}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, &LoadError{Source: source, Err: errors.New("document is empty")}
	}
	top := resolve(root.Content[0])
	if top.Kind != yaml.MappingNode {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("line %d: top level must be a mapping", top.Line)}
	}
	cats := mappingValue(top, "categories")
	if cats == nil {
		return nil, &LoadError{Source: source, Err: errors.New(`missing "categories" key`)}
	}
	roots, err := parseList(cats, "categories", 0)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	if len(roots) == 0 {
		return nil, &LoadError{Source: source, Err: errors.New("categories must not be empty")}
	}
	return &Document{
		Source:   source,
		Revision: fileid.Revision(data),
		LoadedAt: time.Now(),
		roots:    roots,
	}, nil
}

// maxNesting bounds the tree depth so that an anchor aliased inside itself
// fails to load instead of recursing forever.
const maxNesting = 64

func parseList(n *yaml.Node, path string, depth int) ([]Node, error) {
	n = resolve(n)
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%s (line %d): expected a list", path, n.Line)
	}
	if depth >= maxNesting {
		return nil, fmt.Errorf("%s (line %d): nested deeper than %d levels", path, n.Line, maxNesting)
	}
	nodes := make([]Node, 0, len(n.Content))
	for i, item := range n.Content {
		node, err := parseNode(item, fmt.Sprintf("%s[%d]", path, i), depth+1)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// parseNode resolves the variant of a single entry. An entry with an "answer"
// key is a Question even when the answer is empty; everything else is a Category.
// Aliases and "<<" merge keys are followed, so reused entries load like inline ones.
func parseNode(n *yaml.Node, path string, depth int) (Node, error) {
	n = resolve(n)
	if n == nil || n.Kind != yaml.MappingNode {
		line := 0
		if n != nil {
			line = n.Line
		}
		return nil, fmt.Errorf("%s (line %d): expected a mapping", path, line)
	}
	name, err := scalarValue(n, "name", path)
	if err != nil {
		return nil, err
	}
	question, err := scalarValue(n, "question", path)
	if err != nil {
		return nil, err
	}
	label := question
	if label == "" {
		label = name
	}
	if strings.TrimSpace(label) == "" {
		return nil, fmt.Errorf("%s (line %d): entry needs a question or a name", path, n.Line)
	}

	if answerNode := mappingValue(n, "answer"); answerNode != nil {
		answer, err := scalarValue(n, "answer", path)
		if err != nil {
			return nil, err
		}
		related, err := parseList(mappingValue(n, "related"), path+".related", depth)
		if err != nil {
			return nil, err
		}
		return &Question{Text: label, Answer: answer, Related: related}, nil
	}

	children, err := parseList(mappingValue(n, "questions"), path+".questions", depth)
	if err != nil {
		return nil, err
	}
	return &Category{Name: label, Questions: children}, nil
}

// resolve follows alias nodes to their anchored target.
func resolve(n *yaml.Node) *yaml.Node {
	for hops := 0; n != nil && n.Kind == yaml.AliasNode && hops < maxNesting; hops++ {
		n = n.Alias
	}
	return n
}

// mappingValue returns the resolved value of key in m. Keys written in m take
// precedence over keys merged in through "<<", and earlier merge sources take
// precedence over later ones.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	return lookup(m, key, 0)
}

func lookup(m *yaml.Node, key string, depth int) *yaml.Node {
	m = resolve(m)
	if m == nil || m.Kind != yaml.MappingNode || depth >= maxNesting {
		return nil
	}
	var merged []*yaml.Node
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], resolve(m.Content[i+1])
		if k.Kind == yaml.ScalarNode && k.ShortTag() == "!!merge" {
			if v != nil && v.Kind == yaml.SequenceNode {
				merged = append(merged, v.Content...)
			} else {
				merged = append(merged, v)
			}
			continue
		}
		if k.Value == key {
			return v
		}
	}
	for _, src := range merged {
		if v := lookup(src, key, depth+1); v != nil {
			return v
		}
	}
	return nil
}

func scalarValue(m *yaml.Node, key, path string) (string, error) {
	v := mappingValue(m, key)
	if v == nil || isNull(v) {
		return "", nil
	}
	if v.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("%s.%s (line %d): expected a string", path, key, v.Line)
	}
	return v.Value, nil
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}
