package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/phylobits/sdag/pkg/bitset"
	"github.com/phylobits/sdag/pkg/sdag"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes node ids and raw clade bit strings in labels.
	// When false, only taxon-name clades are shown.
	Detailed bool

	// Highlight lists edge ids to draw emphasized, typically a tree mask.
	Highlight []sdag.EdgeID
}

// ToDOT converts a subsplit DAG to Graphviz DOT format for node-link
// visualization. The resulting DOT string can be rendered using [SVG] or
// [PNG].
//
// Leaf nodes are rendered as plain boxes labeled with the taxon name;
// interior nodes show both clades. Edges listed in [Options.Highlight] are
// drawn thicker and in color so an embedded tree stands out.
func ToDOT(d *sdag.DAG, opts Options) string {
	highlighted := make(map[sdag.EdgeID]bool, len(opts.Highlight))
	for _, id := range opts.Highlight {
		highlighted[id] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	names := d.TaxonNames()
	for id := sdag.NodeID(0); int(id) < d.NodeCount(); id++ {
		n, _ := d.GetNode(id)
		label := fmtLabel(d, n, names, opts.Detailed)
		attrs := fmtAttrs(d, n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID.String(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for id := sdag.EdgeID(0); int(id) < d.EdgeCount(); id++ {
		e, _ := d.GetEdge(id)
		if highlighted[e.ID] {
			fmt.Fprintf(&buf, "  %q -> %q [color=firebrick, penwidth=2.5];\n",
				e.Parent.String(), e.Child.String())
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Parent.String(), e.Child.String())
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(d *sdag.DAG, n sdag.Node, names []string, detailed bool) string {
	var label string
	switch {
	case d.IsNodeLeaf(n.ID):
		label = names[n.ID]
	case d.IsNodeRoot(n.ID):
		label = "root"
	default:
		label = cladeLabel(n.Subsplit.Clade(bitset.CladeLeft), names) +
			" | " + cladeLabel(n.Subsplit.Clade(bitset.CladeRight), names)
	}
	if detailed {
		label += fmt.Sprintf("\nid: %s\n%s", n.ID, n.Subsplit)
	}
	return label
}

func cladeLabel(c bitset.Clade, names []string) string {
	members := c.Members()
	parts := make([]string, len(members))
	for i, t := range members {
		parts[i] = names[t]
	}
	return strings.Join(parts, ",")
}

func fmtAttrs(d *sdag.DAG, n sdag.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case d.IsNodeRoot(n.ID):
		attrs = append(attrs, "style=\"rounded,filled,bold\"", "fillcolor=lightgrey")
	case d.IsNodeLeaf(n.ID):
		attrs = append(attrs, "fillcolor=honeydew")
	}
	return attrs
}

// SVG renders a DOT graph to SVG using Graphviz.
func SVG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.SVG)
}

// PNG renders a DOT graph to PNG using Graphviz.
func PNG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.PNG)
}

func renderFormat(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
