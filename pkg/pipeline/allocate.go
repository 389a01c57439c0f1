package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/quantfold/fundflow/pkg/allocate"
	"github.com/quantfold/fundflow/pkg/observability"
	"github.com/quantfold/fundflow/pkg/plan"
)

// Allocate solves a loaded plan, splitting its total across accounts along
// the priority tree. Linked-limit groups declared by the plan are enforced
// through the plan's registry.
func Allocate(ctx context.Context, p *plan.Plan, opts Options) (*allocate.Result, error) {
	if err := opts.ValidateForAllocate(); err != nil {
		return nil, err
	}

	total := opts.EffectiveTotal(p)

	start := time.Now()
	observability.Pipeline().OnAllocateStart(ctx, total, len(p.Names))

	al := allocate.New(allocate.Options{
		Epsilon:   opts.Epsilon,
		Groups:    p.Registry.GroupFunc(),
		MaxRounds: opts.MaxRounds,
	})
	res, err := al.Allocate(ctx, p.Root, total, p.Timing)
	if err != nil {
		observability.Pipeline().OnAllocateComplete(ctx, total, 0, time.Since(start), err)
		return nil, fmt.Errorf("allocate: %w", err)
	}

	observability.Pipeline().OnAllocateComplete(ctx, total, res.Delivered, time.Since(start), nil)
	return res, nil
}
