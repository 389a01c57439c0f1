// Package pipeline provides the core allocation pipeline for Fundflow.
//
// This package implements the complete load → allocate → render pipeline
// shared by the CLI and any embedding program. Centralizing this logic keeps
// behavior consistent across entry points and avoids code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read and resolve a plan file (accounts, groups, priority tree)
//  2. Allocate: Split the plan's total across accounts along the tree
//  3. Render: Generate output in various formats (JSON, DOT, SVG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    PlanPath: "plan.toml",
//	    Formats:  []string{"json", "svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Load only
//	p, err := runner.Load(ctx, opts)
//
//	// Allocate with a loaded plan
//	res, err := runner.Allocate(ctx, p, opts)
//
//	// Render with an existing result
//	artifacts, err := runner.Render(ctx, p, res, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/quantfold/fundflow/pkg/allocate"
	fferrors "github.com/quantfold/fundflow/pkg/errors"
	"github.com/quantfold/fundflow/pkg/plan"
	"github.com/quantfold/fundflow/pkg/report"
	"github.com/quantfold/fundflow/pkg/schedule"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Embedders
// =============================================================================

const (
	// DefaultMaxRounds caps the allocator's rebuild-and-retry loop. This
	// matches allocate.DefaultMaxRounds; embedders can override it by
	// setting MaxRounds explicitly.
	DefaultMaxRounds = allocate.DefaultMaxRounds

	// DefaultEpsilon is the amount-comparison tolerance for the allocator.
	DefaultEpsilon = schedule.Epsilon
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the allocation pipeline.
// This struct supports JSON serialization for embedding in requests.
type Options struct {
	// Load options
	PlanPath string `json:"plan_path,omitempty"`
	PlanData []byte `json:"plan_data,omitempty"` // Raw plan TOML (overrides PlanPath)
	Refresh  bool   `json:"refresh,omitempty"`   // Bypass the result cache

	// Allocate options
	Total     *float64 `json:"total,omitempty"` // Overrides the plan's total
	Epsilon   float64  `json:"epsilon,omitempty"`
	MaxRounds int      `json:"max_rounds,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // Annotate diagram edges with weights and order

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this pipeline execution.
	RunID string

	// Plan is the loaded plan.
	Plan *plan.Plan

	// PlanHash is the content hash of the plan source.
	PlanHash string

	// Allocation is the solved allocation.
	Allocation *allocate.Result

	// Report is the name-keyed serializable form of the allocation.
	Report *report.Report

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	AccountCount int
	LoadTime     time.Duration
	AllocateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ResultHit bool // Whether the allocation result came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetAllocateDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading a plan.
func (o *Options) ValidateForLoad() error {
	if o.PlanPath == "" && len(o.PlanData) == 0 {
		return fmt.Errorf("plan_path or plan_data is required")
	}
	if o.PlanPath != "" {
		if err := fferrors.ValidatePlanPath(o.PlanPath); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetAllocateDefaults sets default values for allocation.
func (o *Options) SetAllocateDefaults() {
	if o.Epsilon == 0 {
		o.Epsilon = DefaultEpsilon
	}
	if o.MaxRounds == 0 {
		o.MaxRounds = DefaultMaxRounds
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForAllocate validates and sets defaults for allocation.
func (o *Options) ValidateForAllocate() error {
	o.SetAllocateDefaults()
	if o.Total != nil {
		return fferrors.ValidateTotal(*o.Total)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// NeedsDiagram returns true if any requested format requires the
// node-link diagram.
func (o *Options) NeedsDiagram() bool {
	for _, f := range o.Formats {
		if f == FormatDOT || f == FormatSVG {
			return true
		}
	}
	return false
}

// EffectiveTotal returns the total to allocate for the given plan,
// honoring the override when set.
func (o *Options) EffectiveTotal(p *plan.Plan) float64 {
	if o.Total != nil {
		return *o.Total
	}
	return p.Total
}
