package pricing

import "sort"

// Predefined scenario ids. Their tiers always exist and cannot be removed.
const (
	Scenario1K   = "scenario-1k"
	Scenario10K  = "scenario-10k"
	Scenario100K = "scenario-100k"
)

// Tier user counts.
const (
	Tier1K   = 1000
	Tier10K  = 10000
	Tier100K = 100000
)

// Scenario is a named user-count tier.
type Scenario struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UserCount int    `json:"user_count"`
	Color     string `json:"color"`
	SortOrder int    `json:"sort_order"`
}

// Predefined reports whether s is one of the three fixed tiers.
func (s Scenario) Predefined() bool {
	return IsPredefinedScenario(s.ID)
}

// IsPredefinedScenario reports whether id names one of the fixed tiers.
func IsPredefinedScenario(id string) bool {
	switch id {
	case Scenario1K, Scenario10K, Scenario100K:
		return true
	}
	return false
}

// DefaultScenarios returns the three predefined tiers in order.
func DefaultScenarios() []Scenario {
	return []Scenario{
		{ID: Scenario1K, Name: "1K Utenti", UserCount: Tier1K, Color: "#2563eb", SortOrder: 1},
		{ID: Scenario10K, Name: "10K Utenti", UserCount: Tier10K, Color: "#059669", SortOrder: 2},
		{ID: Scenario100K, Name: "100K Utenti", UserCount: Tier100K, Color: "#d97706", SortOrder: 3},
	}
}

// Palette is the color cycle offered to new custom scenarios.
var Palette = []string{
	"#2563eb",
	"#059669",
	"#d97706",
	"#dc2626",
	"#7c3aed",
	"#0891b2",
	"#ea580c",
	"#be123c",
	"#059669",
	"#7c2d12",
}

// PaletteColor picks the palette entry for the n-th scenario.
func PaletteColor(n int) string {
	if n < 0 {
		n = -n
	}
	return Palette[n%len(Palette)]
}

// SortScenarios returns a copy of scenarios ordered by ascending SortOrder.
// Scenarios sharing a SortOrder keep their relative order.
func SortScenarios(scenarios []Scenario) []Scenario {
	sorted := make([]Scenario, len(scenarios))
	copy(sorted, scenarios)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortOrder < sorted[j].SortOrder
	})
	return sorted
}
