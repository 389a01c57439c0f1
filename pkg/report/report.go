package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/quantfold/fundflow/pkg/allocate"
	"github.com/quantfold/fundflow/pkg/plan"
	"github.com/quantfold/fundflow/pkg/priority"
	"github.com/quantfold/fundflow/pkg/schedule"
)

// =============================================================================
// Types
// =============================================================================

// Point is one entry of an expanded schedule: an amount moving at a
// normalized time in [0, 1].
type Point struct {
	Time   float64 `json:"time"`
	Amount float64 `json:"amount"`
}

// Account is the allocation outcome for a single named account.
type Account struct {
	Name     string  `json:"name"`
	Total    float64 `json:"total"`
	Schedule []Point `json:"schedule,omitempty"`
}

// Report is the serializable outcome of an allocation run.
// Accounts appear in plan declaration order; accounts that received
// nothing are omitted.
type Report struct {
	Requested float64   `json:"requested"`
	Delivered float64   `json:"delivered"`
	Accounts  []Account `json:"accounts"`
}

// =============================================================================
// Conversion
// =============================================================================

// FromResult converts an allocation result into a report, resolving
// account identities to the plan's declared names.
func FromResult(p *plan.Plan, res *allocate.Result) *Report {
	out := &Report{
		Requested: res.Requested,
		Delivered: res.Delivered,
	}
	for _, name := range p.Names {
		acct := p.Accounts[name]
		total, ok := res.Totals[acct]
		if !ok {
			continue
		}
		out.Accounts = append(out.Accounts, Account{
			Name:     name,
			Total:    total,
			Schedule: points(res.Schedules[acct]),
		})
	}
	return out
}

// ToResult converts a report back into an allocation result, resolving
// account names against the plan. Names the plan does not declare are
// reported as an error rather than silently dropped.
func ToResult(p *plan.Plan, r *Report) (*allocate.Result, error) {
	res := &allocate.Result{
		Requested: r.Requested,
		Delivered: r.Delivered,
		Totals:    make(map[priority.Account]float64),
		Schedules: make(map[priority.Account]schedule.Schedule),
	}
	for _, a := range r.Accounts {
		acct, ok := p.Accounts[a.Name]
		if !ok {
			return nil, fmt.Errorf("report: unknown account %q", a.Name)
		}
		res.Totals[acct] = a.Total
		if len(a.Schedule) > 0 {
			s := make(schedule.Schedule, len(a.Schedule))
			for _, pt := range a.Schedule {
				s[pt.Time] += pt.Amount
			}
			res.Schedules[acct] = s
		}
	}
	return res, nil
}

func points(s schedule.Schedule) []Point {
	if len(s) == 0 {
		return nil
	}
	pts := make([]Point, 0, len(s))
	for t, amount := range s {
		pts = append(pts, Point{Time: t, Amount: amount})
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Time < pts[j].Time })
	return pts
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal converts a report to indented JSON bytes.
func Marshal(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(r, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes JSON bytes into a report.
func Unmarshal(data []byte) (*Report, error) {
	return readFrom(bytes.NewReader(data))
}

// WriteFile writes a report to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(r *Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTo(r, f)
}

// ReadFile reads a JSON file and returns the decoded report.
func ReadFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readFrom(f)
}

func writeTo(r *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readFrom(r io.Reader) (*Report, error) {
	var out Report
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
