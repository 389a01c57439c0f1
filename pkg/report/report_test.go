package report

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/quantfold/fundflow/pkg/allocate"
	"github.com/quantfold/fundflow/pkg/plan"
	"github.com/quantfold/fundflow/pkg/priority"
	"github.com/quantfold/fundflow/pkg/schedule"
)

func samplePlan(t *testing.T) (*plan.Plan, *allocate.Result) {
	t.Helper()
	p, err := plan.Parse([]byte(`
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
`))
	if err != nil {
		t.Fatalf("plan.Parse() error = %v", err)
	}

	res := &allocate.Result{
		Requested: 250,
		Delivered: 250,
		Totals: map[priority.Account]float64{
			p.Accounts["chequing"]: 100,
			p.Accounts["savings"]:  150,
		},
		Schedules: map[priority.Account]schedule.Schedule{
			p.Accounts["chequing"]: {0: 50, 0.5: 50},
			p.Accounts["savings"]:  {0: 150},
		},
	}
	return p, res
}

func TestFromResult(t *testing.T) {
	p, res := samplePlan(t)

	r := FromResult(p, res)

	if r.Requested != 250 || r.Delivered != 250 {
		t.Errorf("totals = (%v, %v), want (250, 250)", r.Requested, r.Delivered)
	}
	if len(r.Accounts) != 2 {
		t.Fatalf("len(Accounts) = %d, want 2", len(r.Accounts))
	}
	if r.Accounts[0].Name != "chequing" || r.Accounts[1].Name != "savings" {
		t.Errorf("accounts out of declaration order: %v, %v",
			r.Accounts[0].Name, r.Accounts[1].Name)
	}
	if r.Accounts[0].Total != 100 {
		t.Errorf("chequing total = %v, want 100", r.Accounts[0].Total)
	}

	pts := r.Accounts[0].Schedule
	if len(pts) != 2 || pts[0].Time != 0 || pts[1].Time != 0.5 {
		t.Errorf("schedule points not sorted by time: %v", pts)
	}
}

func TestFromResultSkipsUntouchedAccounts(t *testing.T) {
	p, res := samplePlan(t)
	delete(res.Totals, p.Accounts["savings"])

	r := FromResult(p, res)

	if len(r.Accounts) != 1 || r.Accounts[0].Name != "chequing" {
		t.Errorf("untouched account should be omitted, got %+v", r.Accounts)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	p, res := samplePlan(t)
	r := FromResult(p, res)

	data, err := Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if back.Delivered != r.Delivered || len(back.Accounts) != len(r.Accounts) {
		t.Errorf("round trip mismatch: got %+v, want %+v", back, r)
	}
	if math.Abs(back.Accounts[0].Schedule[1].Amount-50) > schedule.Epsilon {
		t.Errorf("schedule amount = %v, want 50", back.Accounts[0].Schedule[1].Amount)
	}
}

func TestFileRoundTrip(t *testing.T) {
	p, res := samplePlan(t)
	r := FromResult(p, res)
	path := filepath.Join(t.TempDir(), "allocation.json")

	if err := WriteFile(r, path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	back, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if back.Requested != 250 {
		t.Errorf("Requested = %v, want 250", back.Requested)
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := Unmarshal([]byte("not json")); err == nil {
		t.Error("Unmarshal should fail on malformed input")
	}
}

func TestToResult(t *testing.T) {
	p, res := samplePlan(t)
	r := FromResult(p, res)

	back, err := ToResult(p, r)
	if err != nil {
		t.Fatalf("ToResult() error = %v", err)
	}
	if got := back.Totals[p.Accounts["savings"]]; got != 150 {
		t.Errorf("savings total = %v, want 150", got)
	}
	sched := back.Schedules[p.Accounts["chequing"]]
	if math.Abs(sched[0.5]-50) > schedule.Epsilon {
		t.Errorf("chequing schedule at 0.5 = %v, want 50", sched[0.5])
	}
}

func TestToResultUnknownAccount(t *testing.T) {
	p, _ := samplePlan(t)
	r := &Report{Accounts: []Account{{Name: "ghost", Total: 10}}}

	if _, err := ToResult(p, r); err == nil {
		t.Error("ToResult should reject accounts the plan does not declare")
	}
}
