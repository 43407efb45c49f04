package tree

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

var (
	// ErrBadNewick is returned when a Newick string is malformed.
	ErrBadNewick = errors.New("malformed newick string")

	// ErrNotBinary is returned when a Newick tree has a node with other
	// than two children. Only fully bifurcating rooted trees are accepted.
	ErrNotBinary = errors.New("newick tree is not fully bifurcating")

	// ErrTaxonMismatch is returned by [ParseForest] when trees in the same
	// input do not share an identical leaf set.
	ErrTaxonMismatch = errors.New("trees do not share a taxon set")
)

// ParseForest reads one Newick tree per non-empty line and returns the
// topologies plus the shared taxon names in sorted order. Leaf ids in the
// returned topologies are indices into the name slice, so all trees are
// expressed over the same taxon universe. Branch lengths and internal node
// labels are accepted and discarded.
func ParseForest(r io.Reader) ([]*Node, []string, error) {
	var raw []*rawNode
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		n, err := parseNewick(text)
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		raw = append(raw, n)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	if len(raw) == 0 {
		return nil, nil, fmt.Errorf("%w: no trees in input", ErrBadNewick)
	}

	names := raw[0].leafNames(nil)
	slices.Sort(names)
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}

	trees := make([]*Node, len(raw))
	for i, rn := range raw {
		got := rn.leafNames(nil)
		slices.Sort(got)
		if !slices.Equal(got, names) {
			return nil, nil, fmt.Errorf("tree %d: %w", i+1, ErrTaxonMismatch)
		}
		next := len(names)
		trees[i] = rn.build(index, &next)
	}
	return trees, names, nil
}

// rawNode is the parse-time tree with string labels.
type rawNode struct {
	label    string
	children []*rawNode
}

func (rn *rawNode) leafNames(acc []string) []string {
	if len(rn.children) == 0 {
		return append(acc, rn.label)
	}
	for _, c := range rn.children {
		acc = c.leafNames(acc)
	}
	return acc
}

func (rn *rawNode) build(index map[string]int, next *int) *Node {
	if len(rn.children) == 0 {
		return Leaf(index[rn.label])
	}
	left := rn.children[0].build(index, next)
	right := rn.children[1].build(index, next)
	id := *next
	*next++
	return Join(left, right, id)
}

// parseNewick parses a single Newick string into a rawNode tree.
func parseNewick(s string) (*rawNode, error) {
	p := &newickParser{input: s}
	n, err := p.parseSubtree()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.input) && p.input[p.pos] == ';' {
		p.pos++
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("%w: trailing input at offset %d", ErrBadNewick, p.pos)
	}
	if err := checkBinary(n); err != nil {
		return nil, err
	}
	return n, nil
}

func checkBinary(n *rawNode) error {
	if len(n.children) == 0 {
		if n.label == "" {
			return fmt.Errorf("%w: unlabeled leaf", ErrBadNewick)
		}
		return nil
	}
	if len(n.children) != 2 {
		return fmt.Errorf("%w: node has %d children", ErrNotBinary, len(n.children))
	}
	for _, c := range n.children {
		if err := checkBinary(c); err != nil {
			return err
		}
	}
	return nil
}

type newickParser struct {
	input string
	pos   int
}

func (p *newickParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *newickParser) parseSubtree() (*rawNode, error) {
	p.skipSpace()
	if p.pos < len(p.input) && p.input[p.pos] == '(' {
		p.pos++
		n := &rawNode{}
		for {
			child, err := p.parseSubtree()
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, child)
			p.skipSpace()
			if p.pos >= len(p.input) {
				return nil, fmt.Errorf("%w: unclosed parenthesis", ErrBadNewick)
			}
			if p.input[p.pos] == ',' {
				p.pos++
				continue
			}
			if p.input[p.pos] == ')' {
				p.pos++
				break
			}
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrBadNewick, p.input[p.pos], p.pos)
		}
		// Internal label and branch length are allowed and ignored.
		p.parseLabel()
		p.parseLength()
		return n, nil
	}
	label := p.parseLabel()
	p.parseLength()
	return &rawNode{label: label}, nil
}

func (p *newickParser) parseLabel() string {
	start := p.pos
	for p.pos < len(p.input) && !strings.ContainsRune("(),:;", rune(p.input[p.pos])) {
		p.pos++
	}
	return strings.TrimSpace(p.input[start:p.pos])
}

func (p *newickParser) parseLength() {
	if p.pos < len(p.input) && p.input[p.pos] == ':' {
		p.pos++
		for p.pos < len(p.input) && !strings.ContainsRune("(),;", rune(p.input[p.pos])) {
			p.pos++
		}
	}
}
