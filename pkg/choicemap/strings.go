package choicemap

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/phylobits/sdag/pkg/sdag"
)

// String renders the choice stored for one edge without DAG context, e.g.
// "{ parent: 3, sister: 5, left_child: -, right_child: - }".
func (c EdgeChoice) String() string {
	return fmt.Sprintf("{ parent: %s, sister: %s, left_child: %s, right_child: %s }",
		c.Parent, c.Sister, c.LeftChild, c.RightChild)
}

// EdgeChoiceString renders one edge's choice with the endpoints of every
// referenced edge, for diagnostics.
func (m *Map) EdgeChoiceString(id sdag.EdgeID) string {
	var b strings.Builder
	writeEdge := func(name string, id sdag.EdgeID) {
		parent, child := sdag.NoNode, sdag.NoNode
		if e, err := m.dag.GetEdge(id); err == nil {
			parent, child = e.Parent, e.Child
		}
		fmt.Fprintf(&b, "%s: %s -> (%s,%s), ", name, id, parent, child)
	}
	b.WriteString("{ ")
	writeEdge("central", id)
	choice, err := m.Get(id)
	if err != nil {
		choice = emptyChoice()
	}
	writeEdge("parent", choice.Parent)
	writeEdge("sister", choice.Sister)
	writeEdge("left_child", choice.LeftChild)
	writeEdge("right_child", choice.RightChild)
	b.WriteString("}")
	return b.String()
}

// String renders the whole map, one entry per edge in id order.
func (m *Map) String() string {
	var b strings.Builder
	b.WriteString("choice map: [ ")
	for id := sdag.EdgeID(0); int(id) < len(m.choices); id++ {
		fmt.Fprintf(&b, "%s: %s", id, m.choices[id])
		if int(id)+1 < len(m.choices) {
			b.WriteString(", ")
		}
	}
	b.WriteString(" ]")
	return b.String()
}

// TreeMaskString renders a mask with the endpoints of each edge.
func (m *Map) TreeMaskString(mask TreeMask) string {
	var b strings.Builder
	b.WriteString("[\n")
	for _, id := range mask {
		parent, child := sdag.NoNode, sdag.NoNode
		if e, err := m.dag.GetEdge(id); err == nil {
			parent, child = e.Parent, e.Child
		}
		fmt.Fprintf(&b, "\t%s:(%s->%s),\n", id, parent, child)
	}
	b.WriteString("]")
	return b.String()
}

// String renders the expanded mask in ascending node-id order.
func (e ExpandedTreeMask) String() string {
	var b strings.Builder
	b.WriteString("[\n")
	for _, node := range slices.Sorted(maps.Keys(e)) {
		adjacent := e[node]
		fmt.Fprintf(&b, "\t%s:(%s, %s, %s),\n",
			node, adjacent.Parent(), adjacent.LeftChild(), adjacent.RightChild())
	}
	b.WriteString("]")
	return b.String()
}
