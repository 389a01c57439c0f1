package priority

import (
	"errors"
	"fmt"

	"github.com/quantfold/fundflow/pkg/schedule"
)

var (
	// ErrUnknownShape is returned by [Wrap] when a value is not an Account,
	// *Node, slice, or weight map. Malformed trees fail at build time, never
	// during a solve.
	ErrUnknownShape = errors.New("unrecognized priority tree shape")

	// ErrNoChildren is returned by [NewOrdered] and [NewWeighted] when no
	// children are supplied. Interior nodes must route money somewhere.
	ErrNoChildren = errors.New("interior node requires at least one child")

	// ErrNonPositiveWeight is returned by [NewWeighted] when a child's
	// weight is zero or negative.
	ErrNonPositiveWeight = errors.New("child weight must be positive")
)

// Account is a destination (or origin) for money. Each limit method returns
// a schedule spread over the given timing whose total respects the bound in
// question: minimum amounts the account requires, or maximum amounts it can
// absorb, for inflows and outflows respectively.
//
// The limit argument caps the schedule's total magnitude; pass
// [schedule.Unbounded] for the account's natural bound. Outflow schedules
// carry negative amounts.
type Account interface {
	MinInflows(timing schedule.Timing, limit float64) schedule.Schedule
	MaxInflows(timing schedule.Timing, limit float64) schedule.Schedule
	MinOutflows(timing schedule.Timing, limit float64) schedule.Schedule
	MaxOutflows(timing schedule.Timing, limit float64) schedule.Schedule
}

// Kind discriminates the three node shapes.
type Kind int

const (
	// KindLeaf wraps a single account.
	KindLeaf Kind = iota
	// KindOrdered fills children strictly in sequence.
	KindOrdered
	// KindWeighted splits flow across children proportionally to weight.
	KindWeighted
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindOrdered:
		return "ordered"
	case KindWeighted:
		return "weighted"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Limits holds optional per-node bounds on the total flow a node may carry,
// one per direction and sense. A nil field means the node itself imposes no
// bound; leaves still carry their account's own limits.
type Limits struct {
	MinInflow  *float64
	MaxInflow  *float64
	MinOutflow *float64
	MaxOutflow *float64
}

// Node is one position in a priority tree. Construct nodes with [NewLeaf],
// [NewOrdered], [NewWeighted], or [Wrap]; the zero value is not usable.
type Node struct {
	kind     Kind
	account  Account   // set for KindLeaf
	children []*Node   // set for KindOrdered and KindWeighted
	weights  []float64 // parallel to children for KindWeighted
	limits   Limits
}

// NewLeaf returns a leaf node wrapping account.
func NewLeaf(account Account, limits Limits) *Node {
	return &Node{kind: KindLeaf, account: account, limits: limits}
}

// NewOrdered returns an ordered node over children, earliest first.
func NewOrdered(children []*Node, limits Limits) (*Node, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("priority: %w", ErrNoChildren)
	}
	return &Node{
		kind:     KindOrdered,
		children: append([]*Node(nil), children...),
		limits:   limits,
	}, nil
}

// NewWeighted returns a weighted node over the given children. All weights
// must be positive. Child order is taken from the map and is not
// significant: weighted allocation depends only on weight proportions.
func NewWeighted(weights map[*Node]float64, limits Limits) (*Node, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("priority: %w", ErrNoChildren)
	}
	n := &Node{kind: KindWeighted, limits: limits}
	for child, weight := range weights {
		if weight <= 0 {
			return nil, fmt.Errorf("priority: %w (%f)", ErrNonPositiveWeight, weight)
		}
		n.children = append(n.children, child)
		n.weights = append(n.weights, weight)
	}
	return n, nil
}

// Wrap converts a plain Go value into a *Node:
//
//   - *Node passes through unchanged,
//   - []any or []*Node becomes an ordered node,
//   - map[any]float64 or map[*Node]float64 becomes a weighted node,
//   - an [Account] becomes a leaf.
//
// Anything else returns [ErrUnknownShape].
func Wrap(v any) (*Node, error) {
	switch val := v.(type) {
	case *Node:
		return val, nil
	case Account:
		return NewLeaf(val, Limits{}), nil
	case []*Node:
		return NewOrdered(val, Limits{})
	case []any:
		children := make([]*Node, 0, len(val))
		for _, c := range val {
			child, err := Wrap(c)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return NewOrdered(children, Limits{})
	case map[*Node]float64:
		return NewWeighted(val, Limits{})
	case map[any]float64:
		weights := make(map[*Node]float64, len(val))
		for c, w := range val {
			child, err := Wrap(c)
			if err != nil {
				return nil, err
			}
			weights[child] = w
		}
		return NewWeighted(weights, Limits{})
	default:
		return nil, fmt.Errorf("priority: %w (%T)", ErrUnknownShape, v)
	}
}

// Kind returns the node's shape.
func (n *Node) Kind() Kind { return n.kind }

// Account returns the wrapped account for leaf nodes, nil otherwise.
func (n *Node) Account() Account { return n.account }

// Children returns the node's children in priority order. For weighted
// nodes the order carries no meaning. The returned slice must not be
// modified.
func (n *Node) Children() []*Node { return n.children }

// Weight returns the weight of the i'th child of a weighted node.
func (n *Node) Weight(i int) float64 {
	if n.kind != KindWeighted {
		return 0
	}
	return n.weights[i]
}

// TotalWeight returns the sum of child weights of a weighted node.
func (n *Node) TotalWeight() float64 {
	var total float64
	for _, w := range n.weights {
		total += w
	}
	return total
}

// Limits returns the node's own bounds.
func (n *Node) Limits() Limits { return n.limits }

// Accounts returns the distinct accounts reachable from n, in first-visit
// order.
func Accounts(n *Node) []Account {
	var out []Account
	seen := make(map[Account]bool)
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.kind == KindLeaf {
			if !seen[cur.account] {
				seen[cur.account] = true
				out = append(out, cur.account)
			}
			return
		}
		for _, child := range cur.children {
			walk(child)
		}
	}
	walk(n)
	return out
}

// Leaves returns the distinct leaf nodes reachable from n, in first-visit
// order. A leaf appearing at several tree positions is returned once.
func Leaves(n *Node) []*Node {
	var out []*Node
	seen := make(map[*Node]bool)
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.kind == KindLeaf {
			if !seen[cur] {
				seen[cur] = true
				out = append(out, cur)
			}
			return
		}
		for _, child := range cur.children {
			walk(child)
		}
	}
	walk(n)
	return out
}
