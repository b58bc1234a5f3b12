package store

// Documents written by older application versions miss fields that were added
// later. Instead of back-filling defaults at every load call site, the
// repository runs this versioned upgrade exactly once per load.

const currentSchemaVersion = 2

func initCollections(s *Store) {
	if s.ItemCategories == nil {
		s.ItemCategories = []ItemCategory{}
	}
	if s.Units == nil {
		s.Units = []Unit{}
	}
	if s.AssetCategories == nil {
		s.AssetCategories = []AssetCategory{}
	}
	if s.Items == nil {
		s.Items = []Item{}
	}
	if s.Inventory == nil {
		s.Inventory = []Inventory{}
	}
	if s.Assets == nil {
		s.Assets = []Asset{}
	}
	if s.Costs == nil {
		s.Costs = []OperationalCost{}
	}
}

// Upgrade brings a loaded document up to the current schema version.
func Upgrade(s *Store) {
	if s.SchemaVersion < 1 {
		// v1: collections became mandatory (older docs omitted empty arrays).
		initCollections(s)
		s.SchemaVersion = 1
	}
	if s.SchemaVersion < 2 {
		// v2: investor/cash-flow bookkeeping fields; dedupe inventory rows
		// written before the one-row-per-item invariant was enforced.
		if s.Investors == nil {
			s.Investors = []Investor{}
		}
		if s.CashFlow == nil {
			s.CashFlow = []CashFlowEntry{}
		}
		s.Inventory = dedupeInventory(s.Inventory)
		s.SchemaVersion = 2
	}
}

// dedupeInventory keeps the last row per item, matching last-write-wins
// everywhere else in the system.
func dedupeInventory(rows []Inventory) []Inventory {
	idx := make(map[string]int, len(rows))
	out := rows[:0]
	for _, r := range rows {
		if i, ok := idx[r.ItemID]; ok {
			out[i] = r
			continue
		}
		idx[r.ItemID] = len(out)
		out = append(out, r)
	}
	return out
}
