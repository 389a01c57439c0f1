// Package render provides visualization rendering for allocation runs.
//
// # Overview
//
// This package contains the rendering layer that turns a solved allocation
// into visual output. The [nodelink] subpackage draws the priority tree as
// a directed diagram with per-account allocations on the leaves.
//
//	dot := nodelink.ToDOT(plan.Root, result, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// [nodelink]: github.com/quantfold/fundflow/pkg/render/nodelink
package render
