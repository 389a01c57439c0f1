// Package nodelink renders priority trees as directed node-link diagrams.
//
// # Overview
//
// This package produces graph visualizations using Graphviz: interior
// priority nodes appear as ellipses, accounts as boxes, with edges showing
// how money routes down the tree. When an allocation result is supplied,
// leaf labels carry the allocated amounts.
//
// # Usage
//
// Convert a tree to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(root, result, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be:
//
//   - Rendered directly via [RenderSVG]
//   - Saved and processed with external Graphviz tools
//   - Customized before rendering
//
// The generated DOT uses top-to-bottom layout (rankdir=TB) with rounded
// box nodes.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
