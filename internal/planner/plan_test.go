package planner

import (
	"testing"

	"github.com/danieljhkim/bulkren/internal/rename"
)

func TestNewPlan(t *testing.T) {
	plan := NewPlan(rename.ModeOverwrite)

	if plan.Mode != rename.ModeOverwrite {
		t.Errorf("expected mode overwrite, got %v", plan.Mode)
	}
	if plan.Items == nil {
		t.Error("expected Items to be initialized")
	}
	if plan.Conflicts == nil {
		t.Error("expected Conflicts to be initialized")
	}
	if plan.HasConflicts() {
		t.Error("empty plan should have no conflicts")
	}
}

func TestPlan_HasConflicts(t *testing.T) {
	tests := []struct {
		name      string
		conflicts []Conflict
		wantHas   bool
	}{
		{
			name:      "no conflicts",
			conflicts: []Conflict{},
			wantHas:   false,
		},
		{
			name: "has conflicts",
			conflicts: []Conflict{
				{Path: "/a", Reason: "source not found"},
			},
			wantHas: true,
		},
		{
			name: "multiple conflicts",
			conflicts: []Conflict{
				{Path: "/a", Reason: "source not found"},
				{Index: 1, Path: "/b", Reason: "target already exists"},
			},
			wantHas: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := NewPlan(rename.ModeError)
			plan.Conflicts = tt.conflicts
			if got := plan.HasConflicts(); got != tt.wantHas {
				t.Errorf("HasConflicts() = %v, want %v", got, tt.wantHas)
			}
		})
	}
}

func TestPlan_IrreversibleAndCount(t *testing.T) {
	plan := NewPlan(rename.ModeOverwrite)
	plan.AddItem(Item{Index: 0, Status: StatusOK})
	plan.AddItem(Item{Index: 1, Status: StatusOK})

	if plan.Irreversible() {
		t.Error("plan without overwrites should be reversible")
	}

	plan.AddItem(Item{Index: 2, Status: StatusOverwrite})
	if !plan.Irreversible() {
		t.Error("plan with an overwrite should be irreversible")
	}
	if got := plan.Count(StatusOK); got != 2 {
		t.Errorf("Count(ok) = %d, want 2", got)
	}
}

func TestPlan_AddConflict(t *testing.T) {
	plan := NewPlan(rename.ModeError)
	pair := rename.Pair{Source: "/a", Target: "/b"}
	plan.AddConflict(pair, Conflict{Index: 3, Path: "/b", Reason: "target already exists"})

	if len(plan.Conflicts) != 1 || len(plan.Items) != 1 {
		t.Fatalf("expected one conflict and one item, got %d and %d", len(plan.Conflicts), len(plan.Items))
	}
	item := plan.Items[0]
	if item.Status != StatusConflict || item.Index != 3 || item.Pair != pair {
		t.Errorf("unexpected item %+v", item)
	}
}
