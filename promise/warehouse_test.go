package promise_test

import (
	"testing"

	"github.com/warp/promise-engine/promise"
)

// =============================================================================
// CLASSIFICATION TESTS
// =============================================================================

func TestClassify_ExplicitTableWins(t *testing.T) {
	// GIVEN: The default classification table
	// WHEN: Classifying names with exact (case-insensitive) entries
	// THEN: The table entry is used, not pattern matching

	c := promise.NewClassifier(nil, nil)

	cases := []struct {
		name string
		want promise.WarehouseType
	}{
		{"Stores - WH", promise.WarehouseSellable},
		{"stores - wh", promise.WarehouseSellable},
		{"Finished Goods - SD", promise.WarehouseNeedsProcessing},
		{"Goods In Transit - WH", promise.WarehouseInTransit},
		{"Work In Progress - SD", promise.WarehouseNotAvailable},
		{"All Warehouses - WH", promise.WarehouseGroup},
	}
	for _, tc := range cases {
		if got := c.Classify(tc.name); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestClassify_PatternFallback(t *testing.T) {
	// GIVEN: Warehouse names absent from the classification table
	// WHEN: Classifying them
	// THEN: Name patterns decide, defaulting to SELLABLE

	c := promise.NewClassifier(nil, nil)

	cases := []struct {
		name string
		want promise.WarehouseType
	}{
		{"Regional Transit Hub", promise.WarehouseInTransit},
		{"WIP Floor 2", promise.WarehouseNotAvailable},
		{"Finished Racks - EU", promise.WarehouseNeedsProcessing},
		{"All Sites", promise.WarehouseGroup},
		{"Scrap Yard", promise.WarehouseNotAvailable},
		{"Rejects Bay", promise.WarehouseNotAvailable},
		{"Central Depot", promise.WarehouseSellable},
		{"", promise.WarehouseSellable},
	}
	for _, tc := range cases {
		if got := c.Classify(tc.name); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestClassify_CustomOverride(t *testing.T) {
	// GIVEN: A custom classification marking a "transit"-named warehouse sellable
	// WHEN: Classifying that name
	// THEN: The override beats the pattern

	c := promise.NewClassifier(map[string]promise.WarehouseType{
		"Transit Lounge": promise.WarehouseSellable,
	}, nil)

	if got := c.Classify("transit lounge"); got != promise.WarehouseSellable {
		t.Errorf("Classify override = %v, want SELLABLE", got)
	}
}

// =============================================================================
// GROUP EXPANSION TESTS
// =============================================================================

func TestExpand_GroupToLeaves(t *testing.T) {
	// GIVEN: The default hierarchy for "All Warehouses - WH"
	// WHEN: Expanding the group
	// THEN: All four leaf warehouses come back, in order

	c := promise.NewClassifier(nil, nil)

	leaves := c.Expand("All Warehouses - WH")
	want := []string{"Stores - WH", "Finished Goods - WH", "Goods In Transit - WH", "Work In Progress - WH"}
	if len(leaves) != len(want) {
		t.Fatalf("Expand returned %d leaves, want %d: %v", len(leaves), len(want), leaves)
	}
	for i := range want {
		if leaves[i] != want[i] {
			t.Errorf("leaf[%d] = %q, want %q", i, leaves[i], want[i])
		}
	}
}

func TestExpand_NonGroupIsItself(t *testing.T) {
	c := promise.NewClassifier(nil, nil)

	leaves := c.Expand("Stores - WH")
	if len(leaves) != 1 || leaves[0] != "Stores - WH" {
		t.Errorf("Expand(leaf) = %v, want the leaf itself", leaves)
	}
}

func TestExpand_NestedGroupsAndDedup(t *testing.T) {
	// GIVEN: A group containing another group plus a leaf that also appears
	//        inside the nested group
	// WHEN: Expanding the outer group
	// THEN: Each leaf appears exactly once

	c := promise.NewClassifier(
		map[string]promise.WarehouseType{
			"Group North": promise.WarehouseGroup,
			"Group South": promise.WarehouseGroup,
		},
		map[string][]string{
			"Group North": {"Stores - WH", "Group South"},
			"Group South": {"Stores - WH", "Finished Goods - WH"},
		},
	)

	leaves := c.Expand("Group North")
	want := []string{"Stores - WH", "Finished Goods - WH"}
	if len(leaves) != len(want) {
		t.Fatalf("Expand = %v, want %v", leaves, want)
	}
	for i := range want {
		if leaves[i] != want[i] {
			t.Errorf("leaf[%d] = %q, want %q", i, leaves[i], want[i])
		}
	}
}

func TestExpand_CycleYieldsEmptyBranch(t *testing.T) {
	// GIVEN: A malformed hierarchy where two groups contain each other
	// WHEN: Expanding either group
	// THEN: Expansion terminates, returning only real leaves

	c := promise.NewClassifier(
		map[string]promise.WarehouseType{
			"Group A": promise.WarehouseGroup,
			"Group B": promise.WarehouseGroup,
		},
		map[string][]string{
			"Group A": {"Group B", "Stores - WH"},
			"Group B": {"Group A"},
		},
	)

	leaves := c.Expand("Group A")
	if len(leaves) != 1 || leaves[0] != "Stores - WH" {
		t.Errorf("Expand with cycle = %v, want [Stores - WH]", leaves)
	}

	if got := c.Expand("Group B"); len(got) != 1 || got[0] != "Stores - WH" {
		t.Errorf("Expand(Group B) = %v, want [Stores - WH] via the cycle-safe walk", got)
	}
}

func TestExpandAll_NoDoubleCountingAcrossGroups(t *testing.T) {
	// GIVEN: A leaf requested directly and again through its group
	// WHEN: Expanding the combined list
	// THEN: The leaf appears once

	c := promise.NewClassifier(nil, nil)

	leaves := c.ExpandAll([]string{"Stores - WH", "All Warehouses - WH"})
	count := 0
	for _, l := range leaves {
		if l == "Stores - WH" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Stores - WH appears %d times, want 1 (leaves: %v)", count, leaves)
	}
}
