package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/quantfold/fundflow/pkg/allocate"
	"github.com/quantfold/fundflow/pkg/observability"
	"github.com/quantfold/fundflow/pkg/plan"
	"github.com/quantfold/fundflow/pkg/priority"
	"github.com/quantfold/fundflow/pkg/render/nodelink"
	"github.com/quantfold/fundflow/pkg/report"
)

// RenderArtifacts generates the requested output formats from a plan and its
// allocation result. The returned map is keyed by format.
func RenderArtifacts(ctx context.Context, p *plan.Plan, res *allocate.Result, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)

	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	if opts.NeedsDiagram() {
		dot = nodelink.ToDOT(p.Root, res, nodelink.Options{
			Detailed: opts.Detailed,
			Label:    accountLabel(p),
		})
	}

	for _, format := range opts.Formats {
		switch format {
		case FormatJSON:
			data, err := report.Marshal(report.FromResult(p, res))
			if err != nil {
				observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
				return nil, fmt.Errorf("render json: %w", err)
			}
			artifacts[format] = data
		case FormatDOT:
			artifacts[format] = []byte(dot)
		case FormatSVG:
			data, err := nodelink.RenderSVG(dot)
			if err != nil {
				observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
				return nil, fmt.Errorf("render svg: %w", err)
			}
			artifacts[format] = data
		}
	}

	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, nil
}

// accountLabel names diagram nodes by the plan's declared account names.
func accountLabel(p *plan.Plan) func(priority.Account) string {
	byIdentity := make(map[priority.Account]string, len(p.Accounts))
	for name, acct := range p.Accounts {
		byIdentity[acct] = name
	}
	return func(a priority.Account) string {
		if name, ok := byIdentity[a]; ok {
			return name
		}
		return fmt.Sprintf("%v", a)
	}
}
