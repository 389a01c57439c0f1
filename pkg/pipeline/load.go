package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/quantfold/fundflow/pkg/observability"
	"github.com/quantfold/fundflow/pkg/plan"
)

// Load reads and resolves a plan from opts. PlanData takes precedence over
// PlanPath. The raw plan bytes are returned alongside the plan so callers
// can derive content-addressed cache keys.
func Load(ctx context.Context, opts Options) (*plan.Plan, []byte, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, nil, err
	}

	source := opts.PlanPath
	if len(opts.PlanData) > 0 {
		source = "<inline>"
	}

	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, source)

	raw := opts.PlanData
	if len(raw) == 0 {
		data, err := os.ReadFile(opts.PlanPath)
		if err != nil {
			err = fmt.Errorf("read plan: %w", err)
			observability.Pipeline().OnLoadComplete(ctx, source, 0, time.Since(start), err)
			return nil, nil, err
		}
		raw = data
	}

	p, err := plan.Parse(raw)
	if err != nil {
		observability.Pipeline().OnLoadComplete(ctx, source, 0, time.Since(start), err)
		return nil, nil, err
	}

	observability.Pipeline().OnLoadComplete(ctx, source, len(p.Names), time.Since(start), nil)
	return p, raw, nil
}
