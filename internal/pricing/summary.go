package pricing

// Summary holds comparative statistics across scenarios, keyed on annual
// totals.
type Summary struct {
	CheapestID    string  `json:"cheapest_id"`
	CheapestName  string  `json:"cheapest_name"`
	CheapestTotal float64 `json:"cheapest_annual"`

	CostliestID    string  `json:"costliest_id"`
	CostliestName  string  `json:"costliest_name"`
	CostliestTotal float64 `json:"costliest_annual"`

	Spread float64 `json:"spread"`
	Mean   float64 `json:"mean_annual"`
}

// Summarize folds results in order. On ties the first scenario reaching the
// extreme wins. An empty input yields a zero Summary.
func Summarize(results []ScenarioResult) Summary {
	if len(results) == 0 {
		return Summary{}
	}

	cheapest := results[0]
	costliest := results[0]
	sum := 0.0

	for _, res := range results {
		if res.Totals.Annual < cheapest.Totals.Annual {
			cheapest = res
		}
		if res.Totals.Annual > costliest.Totals.Annual {
			costliest = res
		}
		sum += res.Totals.Annual
	}

	return Summary{
		CheapestID:     cheapest.Scenario.ID,
		CheapestName:   cheapest.Scenario.Name,
		CheapestTotal:  cheapest.Totals.Annual,
		CostliestID:    costliest.Scenario.ID,
		CostliestName:  costliest.Scenario.Name,
		CostliestTotal: costliest.Totals.Annual,
		Spread:         costliest.Totals.Annual - cheapest.Totals.Annual,
		Mean:           sum / float64(len(results)),
	}
}
