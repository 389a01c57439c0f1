package allocate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/quantfold/fundflow/pkg/observability"
	"github.com/quantfold/fundflow/pkg/priority"
	"github.com/quantfold/fundflow/pkg/schedule"
)

var (
	// ErrNilRoot is returned by [Allocator.Allocate] when no priority tree
	// is supplied.
	ErrNilRoot = errors.New("priority tree root must not be nil")
)

// DefaultMaxRounds bounds the rebuild-and-retry loop. Each round either
// delivers flow or ends the loop, so the bound is a backstop rather than a
// tuning knob.
const DefaultMaxRounds = 32

// Options configures an [Allocator]. The zero value is usable.
type Options struct {
	// Epsilon is the tolerance for all amount comparisons. Defaults to
	// [schedule.Epsilon].
	Epsilon float64
	// Groups reports shared-limit membership. Nil means no account shares a
	// limit.
	Groups GroupFunc
	// MaxRounds bounds retry rounds per phase. Defaults to
	// [DefaultMaxRounds].
	MaxRounds int
}

// Allocator splits totals across the accounts of a priority tree.
// An Allocator is stateless between calls and safe for concurrent use as
// long as the accounts' limit methods are.
type Allocator struct {
	eps       float64
	groups    GroupFunc
	maxRounds int
}

// New returns an Allocator configured by opts.
func New(opts Options) *Allocator {
	if opts.Epsilon <= 0 {
		opts.Epsilon = schedule.Epsilon
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	return &Allocator{
		eps:       opts.Epsilon,
		groups:    opts.Groups,
		maxRounds: opts.MaxRounds,
	}
}

// Result is the outcome of one allocation.
type Result struct {
	// Requested is the signed total the caller asked to place.
	Requested float64
	// Delivered is the signed total actually placed. Its magnitude never
	// exceeds Requested's; falling short is not an error.
	Delivered float64
	// Totals holds the signed per-account amounts.
	Totals map[priority.Account]float64
	// Schedules expands each account's total over the requested timing,
	// using the account's own limit method to decide when money moves. The
	// whole per-account amount, including any portion placed to satisfy a
	// minimum limit, is expanded through the maximum limit method for the
	// active direction, so the minimum's own timing never shapes the
	// schedule.
	Schedules map[priority.Account]schedule.Schedule
}

// Allocate splits total across the accounts of the tree rooted at root.
//
// The sign of total selects the limit pair: positive totals allocate
// against inflow limits, negative totals against outflow limits. Minimum
// limits are satisfied first; whatever remains is allocated against
// maximums with capacities reduced by the minimum-phase assignments.
//
// A zero total is a no-op returning an empty result.
func (al *Allocator) Allocate(ctx context.Context, root *priority.Node, total float64, timing schedule.Timing) (*Result, error) {
	if root == nil {
		return nil, fmt.Errorf("allocate: %w", ErrNilRoot)
	}
	if len(timing) == 0 {
		timing = schedule.Timing{0: 1}
	}

	result := &Result{
		Requested: total,
		Totals:    make(map[priority.Account]float64),
		Schedules: make(map[priority.Account]schedule.Schedule),
	}
	if schedule.Zeroish(total) {
		return result, nil
	}

	sign := 1.0
	if total < 0 {
		sign = -1
	}
	magnitude := math.Abs(total)
	minSel, maxSel := selectors(total)

	// Phase 1: satisfy minimum limits.
	minAssigned, err := al.solve(ctx, root, magnitude, timing, minSel, nil)
	if err != nil {
		return nil, err
	}
	var deliveredMin float64
	for _, amount := range minAssigned {
		deliveredMin += amount
	}

	// Phase 2: place the remainder against maximums, with the minimum
	// phase's assignments occupying capacity.
	combined := minAssigned
	if remainder := magnitude - deliveredMin; remainder > al.eps {
		maxAssigned, err := al.solve(ctx, root, remainder, timing, maxSel, minAssigned)
		if err != nil {
			return nil, err
		}
		combined = make(map[*priority.Node]float64, len(minAssigned)+len(maxAssigned))
		for leaf, amount := range minAssigned {
			combined[leaf] += amount
		}
		for leaf, amount := range maxAssigned {
			combined[leaf] += amount
		}
	}

	// Collapse leaf assignments onto accounts and expand to schedules. The
	// account's limit method decides when the money moves; the graph has
	// already decided how much.
	perAccount := make(map[priority.Account]float64)
	for leaf, amount := range combined {
		perAccount[leaf.Account()] += amount
	}
	for account, amount := range perAccount {
		if schedule.Zeroish(amount) {
			continue
		}
		sched := maxSel.Limit(account, timing, amount)
		result.Totals[account] = sign * amount
		result.Schedules[account] = sched
		result.Delivered += sign * amount
	}
	return result, nil
}

// solve runs one phase: it repeatedly compiles the tree into a flow network
// and pushes flow until the target is met or nothing more can be placed.
// The returned map holds assigned magnitudes keyed by leaf node identity.
func (al *Allocator) solve(ctx context.Context, root *priority.Node, target float64, timing schedule.Timing,
	sel Selector, memo map[*priority.Node]float64) (map[*priority.Node]float64, error) {

	hooks := observability.Solver()
	phase := sel.Phase()
	start := time.Now()
	hooks.OnSolveStart(ctx, phase, target)

	assigned := make(map[*priority.Node]float64)
	remaining := target
	for round := 0; remaining > al.eps && round < al.maxRounds; round++ {
		b := newBuilder(al, root, sel, timing, memo, assigned)
		if b.remaining(root) < al.eps {
			// The whole tree is exhausted; stop short.
			break
		}
		g := b.build(remaining)
		res, err := g.MinCostMaxFlow(ctx, b.source, b.sink)
		if err != nil {
			hooks.OnSolveComplete(ctx, phase, target-remaining, time.Since(start), err)
			return assigned, err
		}
		if res.Flow < al.eps {
			// No progress is possible; proportional shares and shared
			// limits have pinned every path.
			break
		}
		for leaf, id := range b.leafOut {
			if amount := g.FlowOut(id); amount > 0 {
				assigned[leaf] += amount
			}
		}
		remaining -= res.Flow
		if remaining > al.eps {
			hooks.OnRetry(ctx, phase, round+1, remaining, b.exhaustedLeaves())
		}
	}

	hooks.OnSolveComplete(ctx, phase, target-remaining, time.Since(start), nil)
	return assigned, nil
}
