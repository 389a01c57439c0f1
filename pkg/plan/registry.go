package plan

import (
	"errors"
	"fmt"

	"github.com/quantfold/fundflow/pkg/allocate"
	"github.com/quantfold/fundflow/pkg/priority"
)

var (
	// ErrGroupType is returned when a shared-limit group's members do not
	// all carry the group's declared kind. A shared limit only makes sense
	// across accounts of one kind (contribution room is per account type).
	ErrGroupType = errors.New("group members must share the group's kind")

	// ErrUnknownGroup is returned when an account names a group the plan
	// never declares.
	ErrUnknownGroup = errors.New("account references undeclared group")
)

// Record is one shared transaction limit. Members drawing from the record
// jointly never exceed its bounds.
type Record struct {
	Token string
	Kind  string

	// MaxInflow and MaxOutflow are shared magnitudes; zero means the
	// record imposes no bound in that direction.
	MaxInflow  float64
	MaxOutflow float64

	members []*Account
}

// Members returns the accounts registered against the record.
func (r *Record) Members() []*Account {
	return r.members
}

// Registry maps group tokens to their shared records and wires accounts to
// them.
type Registry struct {
	records map[string]*Record
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{records: make(map[string]*Record)}
}

// Declare adds a shared record under token. Declaring a token twice
// replaces the earlier bounds but keeps registered members.
func (r *Registry) Declare(token, kind string, maxInflow, maxOutflow float64) *Record {
	rec, ok := r.records[token]
	if !ok {
		rec = &Record{Token: token}
		r.records[token] = rec
		r.order = append(r.order, token)
	}
	rec.Kind = kind
	rec.MaxInflow = maxInflow
	rec.MaxOutflow = maxOutflow
	return rec
}

// Register attaches an account to its declared group. Accounts with no
// group name are ignored. The account's kind must match the record's kind;
// a record with an empty kind accepts any account.
func (r *Registry) Register(a *Account) error {
	if a.GroupName == "" {
		return nil
	}
	rec, ok := r.records[a.GroupName]
	if !ok {
		return fmt.Errorf("plan: %w: %q", ErrUnknownGroup, a.GroupName)
	}
	if rec.Kind != "" && a.Kind != rec.Kind {
		return fmt.Errorf("plan: %w: account %q is %q, group %q wants %q",
			ErrGroupType, a.Name, a.Kind, rec.Token, rec.Kind)
	}
	rec.members = append(rec.members, a)
	return nil
}

// Record returns the record declared under token.
func (r *Registry) Record(token string) (*Record, bool) {
	rec, ok := r.records[token]
	return rec, ok
}

// Tokens returns the declared tokens in declaration order.
func (r *Registry) Tokens() []string {
	return append([]string(nil), r.order...)
}

// GroupFunc adapts the registry for the allocator: members of a record
// report its shared bound for the matching maximum selector.
func (r *Registry) GroupFunc() allocate.GroupFunc {
	return func(acct priority.Account, sel allocate.Selector) (allocate.Group, bool) {
		a, ok := acct.(*Account)
		if !ok || a.GroupName == "" {
			return allocate.Group{}, false
		}
		rec, ok := r.records[a.GroupName]
		if !ok {
			return allocate.Group{}, false
		}
		switch sel {
		case allocate.SelectMaxInflow:
			if rec.MaxInflow > 0 {
				return allocate.Group{Key: rec.Token + "/in", Limit: rec.MaxInflow}, true
			}
		case allocate.SelectMaxOutflow:
			if rec.MaxOutflow > 0 {
				return allocate.Group{Key: rec.Token + "/out", Limit: rec.MaxOutflow}, true
			}
		}
		return allocate.Group{}, false
	}
}
