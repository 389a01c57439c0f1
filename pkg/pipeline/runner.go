package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/quantfold/fundflow/pkg/allocate"
	"github.com/quantfold/fundflow/pkg/cache"
	"github.com/quantfold/fundflow/pkg/observability"
	"github.com/quantfold/fundflow/pkg/plan"
	"github.com/quantfold/fundflow/pkg/report"
)

// Runner encapsulates pipeline execution with caching.
//
// Allocation is deterministic, so a plan's content hash together with the
// solve parameters fully identifies its result. The Runner is stateless
// except for the cache and logger - it doesn't store pipeline results.
// Multiple goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → allocate → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	p, raw, err := Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Plan = p
	result.PlanHash = cache.Hash(raw)
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.AccountCount = len(p.Names)

	r.Logger.Info("loaded plan",
		"run", result.RunID,
		"accounts", len(p.Names),
		"groups", len(p.Registry.Tokens()),
		"duration", result.Stats.LoadTime)

	// Stage 2: Allocate
	allocStart := time.Now()
	res, resultHit, err := r.AllocateWithCacheInfo(ctx, p, result.PlanHash, opts)
	if err != nil {
		return nil, fmt.Errorf("allocate: %w", err)
	}
	result.Allocation = res
	result.Report = report.FromResult(p, res)
	result.Stats.AllocateTime = time.Since(allocStart)
	result.CacheInfo.ResultHit = resultHit

	r.Logger.Info("allocated total",
		"requested", res.Requested,
		"delivered", res.Delivered,
		"accounts", len(res.Totals),
		"cached", resultHit,
		"duration", result.Stats.AllocateTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, p, res, result.PlanHash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads and resolves a plan, discarding the raw bytes.
func (r *Runner) Load(ctx context.Context, opts Options) (*plan.Plan, error) {
	r.applyLogger(&opts)
	p, _, err := Load(ctx, opts)
	return p, err
}

// AllocateWithCacheInfo solves a plan with result caching and returns cache
// hit info. planHash must be the content hash of the plan source.
func (r *Runner) AllocateWithCacheInfo(ctx context.Context, p *plan.Plan, planHash string, opts Options) (*allocate.Result, bool, error) {
	if err := opts.ValidateForAllocate(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.ResultKey(r.solveHash(planHash, opts))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.cacheGet(ctx, cacheKey); err == nil && hit {
			if rep, err := report.Unmarshal(data); err == nil {
				if res, err := report.ToResult(p, rep); err == nil {
					observability.Cache().OnCacheHit(ctx, cacheKey)
					return res, true, nil
				}
			}
			// Undecodable entries fall through to a fresh solve.
		}
	}
	observability.Cache().OnCacheMiss(ctx, cacheKey)

	res, err := Allocate(ctx, p, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := report.Marshal(report.FromResult(p, res)); err == nil {
		if err := r.cacheSet(ctx, cacheKey, data, cache.TTLResult); err == nil {
			observability.Cache().OnCacheSet(ctx, cacheKey, len(data))
		}
	}

	return res, false, nil
}

// Allocate is a convenience wrapper that calls AllocateWithCacheInfo and
// discards the cache hit info. With an empty planHash only the solve
// parameters key the cache, so pass the plan's hash when one is available.
func (r *Runner) Allocate(ctx context.Context, p *plan.Plan, opts Options) (*allocate.Result, error) {
	res, _, err := r.AllocateWithCacheInfo(ctx, p, "", opts)
	return res, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, p *plan.Plan, res *allocate.Result, planHash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	renderHash := r.renderHash(planHash, opts)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.RenderKey(renderHash, format)
		if data, hit, err := r.cacheGet(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil // All artifacts from cache
	}

	rendered, err := RenderArtifacts(ctx, p, res, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.RenderKey(renderHash, format)
		_ = r.cacheSet(ctx, cacheKey, data, cache.TTLRender)
	}

	return rendered, false, nil
}

// cacheGet reads a key, retrying transient backend failures. Failures are
// surfaced so callers can treat them as misses.
func (r *Runner) cacheGet(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		data []byte
		hit  bool
	)
	err := cache.WithRetry(ctx, func() error {
		var err error
		data, hit, err = r.Cache.Get(ctx, key)
		return err
	})
	return data, hit, err
}

// cacheSet writes a key, retrying transient backend failures.
func (r *Runner) cacheSet(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return cache.WithRetry(ctx, func() error {
		return r.Cache.Set(ctx, key, data, ttl)
	})
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, p *plan.Plan, res *allocate.Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, p, res, "", opts)
	return artifacts, err
}

// solveHash derives the result cache key input from the plan hash and every
// option that changes the solve outcome.
func (r *Runner) solveHash(planHash string, opts Options) string {
	total := "plan"
	if opts.Total != nil {
		total = fmt.Sprintf("%g", *opts.Total)
	}
	return cache.Hash([]byte(fmt.Sprintf("%s|%s|%g|%d", planHash, total, opts.Epsilon, opts.MaxRounds)))
}

// renderHash extends the solve hash with the options that change rendered
// output without changing the result.
func (r *Runner) renderHash(planHash string, opts Options) string {
	return cache.Hash([]byte(fmt.Sprintf("%s|%t", r.solveHash(planHash, opts), opts.Detailed)))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
