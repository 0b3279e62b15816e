/*
warehouse.go - Warehouse classification and group expansion

PURPOSE:
  Maps warehouse names to an explicit WarehouseType and expands group
  warehouses into their leaf warehouses. Classification consults an explicit
  name table first and falls back to name patterns, so unmapped warehouses
  still land in a sensible bucket.

CLASSIFICATION ORDER:
  1. Exact (case-insensitive) match in the classification table
  2. Name patterns: "transit" -> IN_TRANSIT, "wip"/"work in progress" ->
     NOT_AVAILABLE, "finished" -> NEEDS_PROCESSING, "all"/"group" -> GROUP,
     "scrap"/"reject" -> NOT_AVAILABLE
  3. Default: SELLABLE

GROUP EXPANSION:
  Groups may nest. Expansion walks the hierarchy with a visited set; a cycle
  in malformed hierarchy data yields an empty expansion for the offending
  branch instead of recursing forever. Leaves are deduplicated so quantity
  present under more than one group is never counted twice.
*/
package promise

import "strings"

// =============================================================================
// DEFAULT TABLES
// =============================================================================

// defaultClassifications maps normalized warehouse names to types.
var defaultClassifications = map[string]WarehouseType{
	"stores - sd":    WarehouseSellable,
	"stores - wh":    WarehouseSellable,
	"main warehouse": WarehouseSellable,
	"warehouse":      WarehouseSellable,

	"finished goods - sd": WarehouseNeedsProcessing,
	"finished goods - wh": WarehouseNeedsProcessing,
	"finished goods":      WarehouseNeedsProcessing,

	"goods in transit - sd": WarehouseInTransit,
	"goods in transit - wh": WarehouseInTransit,
	"goods in transit":      WarehouseInTransit,
	"in transit":            WarehouseInTransit,

	"work in progress - sd": WarehouseNotAvailable,
	"work in progress - wh": WarehouseNotAvailable,
	"work in progress":      WarehouseNotAvailable,
	"wip":                   WarehouseNotAvailable,
	"rejected - sd":         WarehouseNotAvailable,
	"rejected - wh":         WarehouseNotAvailable,
	"scrap":                 WarehouseNotAvailable,

	"all warehouses - sd": WarehouseGroup,
	"all warehouses - wh": WarehouseGroup,
	"all warehouses":      WarehouseGroup,
}

// defaultHierarchy maps normalized group names to their children.
var defaultHierarchy = map[string][]string{
	"all warehouses - sd": {
		"Stores - SD",
		"Finished Goods - SD",
		"Goods In Transit - SD",
		"Work In Progress - SD",
	},
	"all warehouses - wh": {
		"Stores - WH",
		"Finished Goods - WH",
		"Goods In Transit - WH",
		"Work In Progress - WH",
	},
}

// =============================================================================
// CLASSIFIER
// =============================================================================

// Classifier resolves warehouse names to types and expands groups.
// Resolved once per process from configuration; safe for concurrent use.
type Classifier struct {
	classifications map[string]WarehouseType
	hierarchy       map[string][]string
}

// NewClassifier builds a classifier from the default tables, overlaid with
// any custom classifications and hierarchy entries. Keys are matched
// case-insensitively.
func NewClassifier(custom map[string]WarehouseType, hierarchy map[string][]string) *Classifier {
	c := &Classifier{
		classifications: make(map[string]WarehouseType, len(defaultClassifications)+len(custom)),
		hierarchy:       make(map[string][]string, len(defaultHierarchy)+len(hierarchy)),
	}
	for name, t := range defaultClassifications {
		c.classifications[name] = t
	}
	for name, t := range custom {
		c.classifications[normalizeName(name)] = t
	}
	for name, children := range defaultHierarchy {
		c.hierarchy[name] = children
	}
	for name, children := range hierarchy {
		c.hierarchy[normalizeName(name)] = children
	}
	return c
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Classify returns the type of a warehouse by name.
func (c *Classifier) Classify(name string) WarehouseType {
	if name == "" {
		return WarehouseSellable
	}
	normalized := normalizeName(name)

	if t, ok := c.classifications[normalized]; ok {
		return t
	}

	// Pattern fallback for unmapped warehouses. Order matters: "transit"
	// before the broad "all" check, scrap/reject before the default.
	switch {
	case strings.Contains(normalized, "transit"):
		return WarehouseInTransit
	case strings.Contains(normalized, "wip"), strings.Contains(normalized, "work in progress"):
		return WarehouseNotAvailable
	case strings.Contains(normalized, "finished"):
		return WarehouseNeedsProcessing
	case strings.Contains(normalized, "all"), strings.Contains(normalized, "group"):
		return WarehouseGroup
	case strings.Contains(normalized, "scrap"), strings.Contains(normalized, "reject"):
		return WarehouseNotAvailable
	}

	return WarehouseSellable
}

// IsGroup reports whether the warehouse is a logical container.
func (c *Classifier) IsGroup(name string) bool {
	return c.Classify(name) == WarehouseGroup
}

// Children returns the direct children of a group warehouse, or nil for
// non-groups and groups with no hierarchy entry.
func (c *Classifier) Children(group string) []string {
	return c.hierarchy[normalizeName(group)]
}

// Expand resolves a warehouse name to the leaf warehouses it stands for.
// Non-group names expand to themselves. Nested groups are walked recursively;
// a cycle yields an empty expansion for that branch. Leaves are deduplicated,
// preserving first-seen order.
func (c *Classifier) Expand(name string) []string {
	visited := make(map[string]bool)
	seen := make(map[string]bool)
	var leaves []string
	c.expand(name, visited, seen, &leaves)
	return leaves
}

// ExpandAll expands a list of warehouse names, deduplicating across the whole
// result so a leaf reachable through two groups appears once.
func (c *Classifier) ExpandAll(names []string) []string {
	seen := make(map[string]bool)
	var leaves []string
	for _, name := range names {
		visited := make(map[string]bool)
		c.expand(name, visited, seen, &leaves)
	}
	return leaves
}

func (c *Classifier) expand(name string, visited, seen map[string]bool, leaves *[]string) {
	normalized := normalizeName(name)
	if !c.IsGroup(name) {
		if !seen[normalized] {
			seen[normalized] = true
			*leaves = append(*leaves, name)
		}
		return
	}
	if visited[normalized] {
		// Malformed hierarchy cycle: treat as empty rather than recursing.
		return
	}
	visited[normalized] = true
	for _, child := range c.Children(name) {
		c.expand(child, visited, seen, leaves)
	}
}
