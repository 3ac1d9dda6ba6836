package pricing

// Totals are the roll-up values of one scenario.
type Totals struct {
	Services float64 `json:"services"`
	Media    float64 `json:"media"`
	Monthly  float64 `json:"monthly"`
	Annual   float64 `json:"annual"`
}

// LineCost is the resolved monthly cost of one row at one scenario.
type LineCost struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Formula bool    `json:"formula"`
	Monthly float64 `json:"monthly"`
}

// ScenarioResult groups everything computed for one scenario.
type ScenarioResult struct {
	Scenario     Scenario   `json:"scenario"`
	Services     []LineCost `json:"services"`
	Media        []LineCost `json:"media"`
	Totals       Totals     `json:"totals"`
	CostPerUser  float64    `json:"cost_per_user"`
	DeltaPercent float64    `json:"delta_percent"`
}

// Result is the full output of Workspace.Compute.
type Result struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Summary   Summary          `json:"summary"`
}

// Workspace is the complete input of the cost model.
type Workspace struct {
	Services  []ServiceRow `json:"services"`
	Scenarios []Scenario   `json:"scenarios"`
	Media     []MediaRow   `json:"media"`
	Params    Params       `json:"params"`
}

// ScenarioTotals sums resolved service costs and media storage costs for
// scenario. Annual is always Monthly × 12.
func ScenarioTotals(services []ServiceRow, media []MediaRow, scenario Scenario, params Params) Totals {
	servicesTotal := 0.0
	for _, row := range services {
		servicesTotal += ServiceCost(row, scenario, params)
	}
	mediaTotal := MediaTotal(media, scenario.UserCount)

	monthly := servicesTotal + mediaTotal
	return Totals{
		Services: servicesTotal,
		Media:    mediaTotal,
		Monthly:  monthly,
		Annual:   monthly * monthsPerYear,
	}
}

// Compute resolves every row for every scenario, in SortOrder, and derives
// the comparative summary.
func (w Workspace) Compute() Result {
	ordered := SortScenarios(w.Scenarios)
	results := make([]ScenarioResult, 0, len(ordered))

	for _, scenario := range ordered {
		res := ScenarioResult{
			Scenario: scenario,
			Services: make([]LineCost, 0, len(w.Services)),
			Media:    make([]LineCost, 0, len(w.Media)),
			Totals:   ScenarioTotals(w.Services, w.Media, scenario, w.Params),
		}
		for _, row := range w.Services {
			res.Services = append(res.Services, LineCost{
				ID:      row.ID,
				Name:    row.Name,
				Formula: row.Kind.Formula(),
				Monthly: ServiceCost(row, scenario, w.Params),
			})
		}
		for _, row := range w.Media {
			res.Media = append(res.Media, LineCost{
				ID:      row.ID,
				Name:    row.TypeLabel,
				Formula: true,
				Monthly: MediaCost(row, scenario.UserCount),
			})
		}
		res.CostPerUser = CostPerUser(res.Totals, scenario)
		results = append(results, res)
	}

	applyDeltas(results)

	return Result{
		Scenarios: results,
		Summary:   Summarize(results),
	}
}

// CostPerUser returns the monthly cost per user of scenario. Scenarios always
// have a positive user count; a zero count yields 0.
func CostPerUser(totals Totals, scenario Scenario) float64 {
	if scenario.UserCount <= 0 {
		return 0
	}
	return totals.Monthly / float64(scenario.UserCount)
}

// applyDeltas fills DeltaPercent relative to the first scenario's annual
// total. A zero baseline is treated as 1 so the delta stays finite.
func applyDeltas(results []ScenarioResult) {
	if len(results) == 0 {
		return
	}
	base := results[0].Totals.Annual
	if base == 0 {
		base = 1
	}
	for i := 1; i < len(results); i++ {
		results[i].DeltaPercent = (results[i].Totals.Annual - results[0].Totals.Annual) / base * 100
	}
}
