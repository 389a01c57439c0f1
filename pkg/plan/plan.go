package plan

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/quantfold/fundflow/pkg/priority"
	"github.com/quantfold/fundflow/pkg/schedule"
)

var (
	// ErrNoAccounts is returned when a plan declares no accounts.
	ErrNoAccounts = errors.New("plan declares no accounts")

	// ErrNoTree is returned when a plan has no priority tree.
	ErrNoTree = errors.New("plan declares no priority tree")

	// ErrDuplicateAccount is returned when two accounts share a name.
	ErrDuplicateAccount = errors.New("duplicate account name")

	// ErrUnknownAccount is returned when the tree references an account the
	// plan never declares.
	ErrUnknownAccount = errors.New("tree references undeclared account")

	// ErrBadNodeKind is returned for tree nodes whose kind is not
	// "account", "ordered", or "weighted".
	ErrBadNodeKind = errors.New("unrecognized tree node kind")

	// ErrBadWeight is returned when a weighted node's child has a
	// non-positive weight.
	ErrBadWeight = errors.New("weighted child requires a positive weight")
)

// Plan is a fully resolved allocation plan.
type Plan struct {
	Total    float64
	Timing   schedule.Timing
	Accounts map[string]*Account
	Registry *Registry
	Root     *priority.Node

	// Names lists account names in declaration order, for stable output.
	Names []string
}

// file mirrors the TOML document.
type file struct {
	Total    float64              `toml:"total"`
	Timing   []timingEntry        `toml:"timing"`
	Accounts []accountEntry       `toml:"account"`
	Groups   map[string]groupSpec `toml:"group"`
	Tree     *treeSpec            `toml:"tree"`
}

type timingEntry struct {
	When   float64 `toml:"when"`
	Weight float64 `toml:"weight"`
}

type accountEntry struct {
	Name       string  `toml:"name"`
	Kind       string  `toml:"kind"`
	Balance    float64 `toml:"balance"`
	MinInflow  float64 `toml:"min_inflow"`
	MaxInflow  float64 `toml:"max_inflow"`
	MinOutflow float64 `toml:"min_outflow"`
	MaxOutflow float64 `toml:"max_outflow"`
	Group      string  `toml:"group"`
}

type groupSpec struct {
	Kind       string  `toml:"kind"`
	MaxInflow  float64 `toml:"max_inflow"`
	MaxOutflow float64 `toml:"max_outflow"`
}

type treeSpec struct {
	Kind     string     `toml:"kind"`
	Account  string     `toml:"account"`
	Weight   float64    `toml:"weight"`
	Children []treeSpec `toml:"children"`

	MinInflow  *float64 `toml:"min_inflow"`
	MaxInflow  *float64 `toml:"max_inflow"`
	MinOutflow *float64 `toml:"min_outflow"`
	MaxOutflow *float64 `toml:"max_outflow"`
}

// Load reads and resolves a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plan: read %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("plan: parse %s: %w", path, err)
	}
	return p, nil
}

// Parse resolves a plan from raw TOML.
func Parse(data []byte) (*Plan, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	if len(f.Accounts) == 0 {
		return nil, fmt.Errorf("plan: %w", ErrNoAccounts)
	}
	if f.Tree == nil {
		return nil, fmt.Errorf("plan: %w", ErrNoTree)
	}

	p := &Plan{
		Total:    f.Total,
		Timing:   make(schedule.Timing),
		Accounts: make(map[string]*Account, len(f.Accounts)),
		Registry: NewRegistry(),
	}
	for _, entry := range f.Timing {
		p.Timing[entry.When] += entry.Weight
	}
	if len(p.Timing) == 0 {
		p.Timing = schedule.Timing{0: 1}
	}

	for token, spec := range f.Groups {
		p.Registry.Declare(token, spec.Kind, spec.MaxInflow, spec.MaxOutflow)
	}

	for _, entry := range f.Accounts {
		if _, ok := p.Accounts[entry.Name]; ok {
			return nil, fmt.Errorf("plan: %w: %q", ErrDuplicateAccount, entry.Name)
		}
		account := &Account{
			Name:       entry.Name,
			Kind:       entry.Kind,
			Balance:    entry.Balance,
			MinInflow:  entry.MinInflow,
			MaxInflow:  entry.MaxInflow,
			MinOutflow: entry.MinOutflow,
			MaxOutflow: entry.MaxOutflow,
			GroupName:  entry.Group,
		}
		if err := p.Registry.Register(account); err != nil {
			return nil, err
		}
		p.Accounts[entry.Name] = account
		p.Names = append(p.Names, entry.Name)
	}

	root, err := p.buildTree(*f.Tree)
	if err != nil {
		return nil, err
	}
	p.Root = root
	return p, nil
}

// buildTree resolves one tree node and its children.
func (p *Plan) buildTree(spec treeSpec) (*priority.Node, error) {
	limits := priority.Limits{
		MinInflow:  spec.MinInflow,
		MaxInflow:  spec.MaxInflow,
		MinOutflow: spec.MinOutflow,
		MaxOutflow: spec.MaxOutflow,
	}
	switch spec.Kind {
	case "account":
		account, ok := p.Accounts[spec.Account]
		if !ok {
			return nil, fmt.Errorf("plan: %w: %q", ErrUnknownAccount, spec.Account)
		}
		return priority.NewLeaf(account, limits), nil

	case "ordered":
		children := make([]*priority.Node, 0, len(spec.Children))
		for _, child := range spec.Children {
			node, err := p.buildTree(child)
			if err != nil {
				return nil, err
			}
			children = append(children, node)
		}
		node, err := priority.NewOrdered(children, limits)
		if err != nil {
			return nil, fmt.Errorf("plan: %w", err)
		}
		return node, nil

	case "weighted":
		weights := make(map[*priority.Node]float64, len(spec.Children))
		for _, child := range spec.Children {
			if child.Weight <= 0 {
				return nil, fmt.Errorf("plan: %w (%q)", ErrBadWeight, child.Kind)
			}
			node, err := p.buildTree(child)
			if err != nil {
				return nil, err
			}
			weights[node] = child.Weight
		}
		node, err := priority.NewWeighted(weights, limits)
		if err != nil {
			return nil, fmt.Errorf("plan: %w", err)
		}
		return node, nil

	default:
		return nil, fmt.Errorf("plan: %w: %q", ErrBadNodeKind, spec.Kind)
	}
}
