package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/quantfold/fundflow/pkg/cache"
	"github.com/quantfold/fundflow/pkg/plan"
)

const testPlan = `
total = 250

[[account]]
name = "chequing"
max_inflow = 100

[[account]]
name = "savings"
max_inflow = 200

[tree]
kind = "ordered"

[[tree.children]]
kind = "account"
account = "chequing"

[[tree.children]]
kind = "account"
account = "savings"
`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"invalid", true},
		{"JSON", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"json", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"json", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsValidateForLoad(t *testing.T) {
	// Missing plan source
	opts := Options{}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("Missing plan source should fail")
	}

	// Path with control characters
	opts = Options{PlanPath: "plan\x00.toml"}
	if err := opts.ValidateForLoad(); err == nil {
		t.Error("Invalid plan path should fail")
	}

	// Inline data is enough
	opts = Options{PlanData: []byte(testPlan)}
	if err := opts.ValidateForLoad(); err != nil {
		t.Errorf("Inline plan data should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{PlanData: []byte(testPlan)}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}

	if opts.Epsilon != DefaultEpsilon {
		t.Errorf("Epsilon should be %v, got %v", DefaultEpsilon, opts.Epsilon)
	}
	if opts.MaxRounds != DefaultMaxRounds {
		t.Errorf("MaxRounds should be %d, got %d", DefaultMaxRounds, opts.MaxRounds)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatJSON {
		t.Errorf("Formats should be [json], got %v", opts.Formats)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{PlanData: []byte(testPlan)}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	originalEpsilon := opts.Epsilon
	originalFormats := len(opts.Formats)

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if opts.Epsilon != originalEpsilon {
		t.Error("Epsilon changed on second call")
	}
	if len(opts.Formats) != originalFormats {
		t.Error("Formats changed on second call")
	}
}

func TestOptionsNeedsDiagram(t *testing.T) {
	opts := Options{Formats: []string{"json"}}
	if opts.NeedsDiagram() {
		t.Error("json alone should not need a diagram")
	}

	opts.Formats = []string{"json", "dot"}
	if !opts.NeedsDiagram() {
		t.Error("dot output should need a diagram")
	}

	opts.Formats = []string{"svg"}
	if !opts.NeedsDiagram() {
		t.Error("svg output should need a diagram")
	}
}

func TestOptionsEffectiveTotal(t *testing.T) {
	p, err := plan.Parse([]byte(testPlan))
	if err != nil {
		t.Fatalf("plan.Parse() error = %v", err)
	}

	opts := Options{}
	if got := opts.EffectiveTotal(p); got != 250 {
		t.Errorf("EffectiveTotal() = %v, want plan total 250", got)
	}

	override := 50.0
	opts.Total = &override
	if got := opts.EffectiveTotal(p); got != 50 {
		t.Errorf("EffectiveTotal() = %v, want override 50", got)
	}
}

func TestLoad(t *testing.T) {
	p, raw, err := Load(context.Background(), Options{PlanData: []byte(testPlan)})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(raw) == 0 {
		t.Error("Load() should return the raw plan bytes")
	}
	if len(p.Names) != 2 {
		t.Errorf("len(Names) = %d, want 2", len(p.Names))
	}
}

func TestAllocateStage(t *testing.T) {
	ctx := context.Background()
	p, _, err := Load(ctx, Options{PlanData: []byte(testPlan)})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	res, err := Allocate(ctx, p, Options{})
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if res.Delivered != 250 {
		t.Errorf("Delivered = %v, want 250", res.Delivered)
	}
	if got := res.Totals[p.Accounts["chequing"]]; got != 100 {
		t.Errorf("chequing = %v, want 100", got)
	}
	if got := res.Totals[p.Accounts["savings"]]; got != 150 {
		t.Errorf("savings = %v, want 150", got)
	}
}

func TestExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	result, err := runner.Execute(context.Background(), Options{
		PlanData: []byte(testPlan),
		Formats:  []string{"json", "dot"},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.RunID == "" {
		t.Error("Execute() should assign a run ID")
	}
	if result.PlanHash == "" {
		t.Error("Execute() should hash the plan source")
	}
	if result.Allocation == nil || result.Allocation.Delivered != 250 {
		t.Errorf("Allocation = %+v, want delivered 250", result.Allocation)
	}
	if result.Report == nil || len(result.Report.Accounts) != 2 {
		t.Errorf("Report = %+v, want 2 accounts", result.Report)
	}
	if _, ok := result.Artifacts["json"]; !ok {
		t.Error("missing json artifact")
	}
	dot, ok := result.Artifacts["dot"]
	if !ok {
		t.Fatal("missing dot artifact")
	}
	if !strings.Contains(string(dot), "chequing") {
		t.Errorf("dot artifact should name accounts:\n%s", dot)
	}
}

func TestExecuteWithTotalOverride(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	override := 120.0
	result, err := runner.Execute(context.Background(), Options{
		PlanData: []byte(testPlan),
		Total:    &override,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Allocation.Delivered != 120 {
		t.Errorf("Delivered = %v, want 120", result.Allocation.Delivered)
	}
	// Ordered tree: the override fills the first child before the second.
	p := result.Plan
	if got := result.Allocation.Totals[p.Accounts["chequing"]]; got != 100 {
		t.Errorf("chequing = %v, want 100", got)
	}
	if got := result.Allocation.Totals[p.Accounts["savings"]]; got != 20 {
		t.Errorf("savings = %v, want 20", got)
	}
}

func TestExecuteCachesResults(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	opts := Options{PlanData: []byte(testPlan), Formats: []string{"json"}}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.CacheInfo.ResultHit {
		t.Error("first run should not hit the result cache")
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !second.CacheInfo.ResultHit {
		t.Error("second run should hit the result cache")
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit the render cache")
	}
	if second.Allocation.Delivered != first.Allocation.Delivered {
		t.Errorf("cached result diverged: %v vs %v",
			second.Allocation.Delivered, first.Allocation.Delivered)
	}

	// Refresh bypasses the cache.
	refreshOpts := opts
	refreshOpts.Refresh = true
	third, err := runner.Execute(context.Background(), refreshOpts)
	if err != nil {
		t.Fatalf("refresh Execute() error = %v", err)
	}
	if third.CacheInfo.ResultHit {
		t.Error("refresh run should not hit the result cache")
	}
}
