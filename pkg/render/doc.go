// Package render draws subsplit DAGs as node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz, where
// each subsplit node appears as a box labeled with its two clades and edges
// point from parent subsplits to the children that refine them.
//
// # Usage
//
// Convert a DAG to DOT format, then render to SVG or PNG:
//
//	dot := render.ToDOT(d, render.Options{})
//	svg, err := render.SVG(dot)
//	png, err := render.PNG(dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: when true, node labels include node ids and raw bit strings
//     alongside the taxon-name clades.
//   - Highlight: an edge set (typically an extracted tree mask) drawn in a
//     contrasting color so one embedded tree stands out against the DAG.
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be:
//
//   - Rendered directly via [SVG] or [PNG]
//   - Saved and processed with external Graphviz tools
//   - Customized before rendering
//
// The generated DOT uses top-to-bottom layout (rankdir=TB) with rounded box
// nodes, so the universal root sits at the top and taxon leaves at the
// bottom.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering;
// no external Graphviz installation is required.
package render
