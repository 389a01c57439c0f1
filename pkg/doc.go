// Package pkg provides the core libraries for Fundflow transaction allocation.
//
// # Overview
//
// Fundflow splits transaction totals across financial accounts by compiling
// priority trees into flow networks. The pkg directory is organized into
// four main areas:
//
//  1. [priority], [schedule], [flow], [allocate] - Domain logic (trees, timing, solving)
//  2. [plan], [report] - Plan files and serialized results
//  3. [cache], [errors], [observability] - Infrastructure
//  4. [pipeline] - Orchestration (load → allocate → render)
//
// # Architecture
//
// The typical data flow through Fundflow:
//
//	Plan file (TOML)
//	         ↓
//	    [plan] package (accounts, groups, priority tree)
//	         ↓
//	    [allocate] package (compile tree into a flow network)
//	         ↓
//	    [flow] package (min-cost max-flow)
//	         ↓
//	    [report] / [render] packages (JSON, DOT, SVG output)
//
// # Quick Start
//
// Run the full pipeline with a Runner:
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(ctx, pipeline.Options{PlanPath: "plan.toml"})
//
// Or drive the allocator directly:
//
//	al := allocate.New(allocate.Options{})
//	res, err := al.Allocate(ctx, root, 250, schedule.Timing{0: 1})
package pkg
