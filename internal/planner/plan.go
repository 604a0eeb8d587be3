package planner

import "github.com/danieljhkim/bulkren/internal/rename"

// Status is the predicted outcome for a single pair.
type Status string

// Status constants
const (
	// StatusOK: the pair lands on its requested target.
	StatusOK Status = "ok"
	// StatusRenamed: the target is taken and an underscore-prefixed name is used.
	StatusRenamed Status = "renamed"
	// StatusOverwrite: an existing entry at the target will be replaced.
	StatusOverwrite Status = "overwrite"
	// StatusNoop: source and target are the same path.
	StatusNoop Status = "noop"
	// StatusConflict: the pair cannot be executed as requested.
	StatusConflict Status = "conflict"
)

// Plan is the predicted result of executing a set of pairs.
type Plan struct {
	// Mode is the overwrite mode the prediction was made for
	Mode rename.OverwriteMode

	// Items has one entry per pair, in order
	Items []Item

	// Conflicts is a list of detected conflicts (empty if no conflicts)
	Conflicts []Conflict
}

// Item is the prediction for one pair.
type Item struct {
	// Index is the position of the pair in the input
	Index int

	// Pair is the requested rename
	Pair rename.Pair

	// Final is the predicted final path (empty for conflicts)
	Final string

	// Status is the predicted outcome
	Status Status
}

// Conflict represents a conflict detected during planning.
type Conflict struct {
	// Index is the position of the offending pair
	Index int

	// Path is the path where the conflict was detected
	Path string

	// Reason is a human-readable explanation of the conflict
	Reason string

	// Existing describes what currently occupies the path, if anything
	Existing string
}

// NewPlan creates a new empty Plan.
func NewPlan(mode rename.OverwriteMode) *Plan {
	return &Plan{
		Mode:      mode,
		Items:     []Item{},
		Conflicts: []Conflict{},
	}
}

// HasConflicts returns true if the plan has any conflicts.
func (p *Plan) HasConflicts() bool {
	return len(p.Conflicts) > 0
}

// Irreversible returns true if executing the plan would overwrite an entry.
func (p *Plan) Irreversible() bool {
	for _, item := range p.Items {
		if item.Status == StatusOverwrite {
			return true
		}
	}
	return false
}

// Count returns how many items have the given status.
func (p *Plan) Count(status Status) int {
	n := 0
	for _, item := range p.Items {
		if item.Status == status {
			n++
		}
	}
	return n
}

// AddItem adds an item to the plan.
func (p *Plan) AddItem(item Item) {
	p.Items = append(p.Items, item)
}

// AddConflict records a conflict and a conflicting item for its pair.
func (p *Plan) AddConflict(pair rename.Pair, conflict Conflict) {
	p.Conflicts = append(p.Conflicts, conflict)
	p.Items = append(p.Items, Item{Index: conflict.Index, Pair: pair, Status: StatusConflict})
}
