package pricing

import "testing"

func TestMediaCost_Example(t *testing.T) {
	row := MediaRow{UnitSizeGB: 0.005, MaxUnitsPerCustomerPerMonth: 3}

	nearlyEqual(t, "media 1000 users", MediaCost(row, 1000), 0.315)
}

func TestMediaCost_LinearInUsers(t *testing.T) {
	row := MediaRow{UnitSizeGB: 0.25, MaxUnitsPerCustomerPerMonth: 2}

	for _, users := range []int{1, 1000, 12345} {
		nearlyEqual(t, "doubled", MediaCost(row, 2*users), 2*MediaCost(row, users))
	}
}

func TestMediaTotal_SumsRows(t *testing.T) {
	rows := []MediaRow{
		{UnitSizeGB: 0.005, MaxUnitsPerCustomerPerMonth: 3},
		{UnitSizeGB: 0.1, MaxUnitsPerCustomerPerMonth: 1},
	}

	nearlyEqual(t, "total", MediaTotal(rows, 1000), 0.315+2.1)
	nearlyEqual(t, "empty", MediaTotal(nil, 1000), 0)
}

func TestScenarioTotals_AnnualIsTwelveTimesMonthly(t *testing.T) {
	services := []ServiceRow{
		{Kind: KindManual, Costs: map[string]float64{Scenario10K: 15}},
		{Kind: KindMinting},
		{Kind: KindIdentityVerification},
	}
	media := []MediaRow{{UnitSizeGB: 0.01, MaxUnitsPerCustomerPerMonth: 4}}
	params := Params{ActiveUserPercent: 5, MonthlyMintUpdateCount: 2, CertifiedUserPercent: 10}
	scenario := DefaultScenarios()[1]

	totals := ScenarioTotals(services, media, scenario, params)

	wantServices := 15 + (1000.0/12 + 50) + (49 + 800.0/12)
	wantMedia := 0.01 * 4 * 10000 * StoragePricePerGB
	nearlyEqual(t, "services", totals.Services, wantServices)
	nearlyEqual(t, "media", totals.Media, wantMedia)
	nearlyEqual(t, "monthly", totals.Monthly, wantServices+wantMedia)
	if totals.Annual != totals.Monthly*12 {
		t.Fatalf("annual = %v, want exactly %v", totals.Annual, totals.Monthly*12)
	}
}

func TestCompute_OrdersBySortOrderNotUserCount(t *testing.T) {
	scenarios := append(DefaultScenarios(),
		Scenario{ID: "s-500", Name: "500", UserCount: 500, SortOrder: 4},
	)
	// Shuffle input order; Compute must not depend on it.
	scenarios[0], scenarios[3] = scenarios[3], scenarios[0]

	ws := Workspace{
		Services: []ServiceRow{{ID: "flat", Kind: KindManual, Costs: map[string]float64{
			Scenario1K: 10, Scenario10K: 20, Scenario100K: 30, "s-500": 5,
		}}},
		Scenarios: scenarios,
		Params:    DefaultParams(),
	}

	res := ws.Compute()

	wantOrder := []string{Scenario1K, Scenario10K, Scenario100K, "s-500"}
	if len(res.Scenarios) != len(wantOrder) {
		t.Fatalf("expected %d scenarios, got %d", len(wantOrder), len(res.Scenarios))
	}
	for i, id := range wantOrder {
		if res.Scenarios[i].Scenario.ID != id {
			t.Fatalf("scenario %d = %s, want %s", i, res.Scenarios[i].Scenario.ID, id)
		}
	}
}

func TestCompute_LineItemsAndPerUserCost(t *testing.T) {
	ws := Workspace{
		Services: []ServiceRow{
			{ID: "a", Name: "Hosting", Kind: KindManual, Costs: map[string]float64{Scenario1K: 20}},
			{ID: "b", Name: "Supabase", Kind: KindBackendPlatform},
		},
		Scenarios: DefaultScenarios()[:1],
		Media:     []MediaRow{{ID: "m", TypeLabel: "Foto", UnitSizeGB: 0.005, MaxUnitsPerCustomerPerMonth: 3}},
		Params:    Params{ActiveUserPercent: 50},
	}

	res := ws.Compute()
	got := res.Scenarios[0]

	if len(got.Services) != 2 || len(got.Media) != 1 {
		t.Fatalf("unexpected line items: %+v", got)
	}
	if got.Services[0].Formula || !got.Services[1].Formula {
		t.Fatalf("unexpected formula flags: %+v", got.Services)
	}
	nearlyEqual(t, "hosting", got.Services[0].Monthly, 20)
	nearlyEqual(t, "supabase", got.Services[1].Monthly, 130)
	nearlyEqual(t, "foto", got.Media[0].Monthly, 0.315)
	nearlyEqual(t, "monthly", got.Totals.Monthly, 150.315)
	nearlyEqual(t, "per user", got.CostPerUser, 150.315/1000)
}

func TestCompute_DeltaPercentVersusFirstScenario(t *testing.T) {
	ws := Workspace{
		Services: []ServiceRow{{Kind: KindManual, Costs: map[string]float64{
			Scenario1K: 100, Scenario10K: 150, Scenario100K: 50,
		}}},
		Scenarios: DefaultScenarios(),
	}

	res := ws.Compute()

	nearlyEqual(t, "first", res.Scenarios[0].DeltaPercent, 0)
	nearlyEqual(t, "second", res.Scenarios[1].DeltaPercent, 50)
	nearlyEqual(t, "third", res.Scenarios[2].DeltaPercent, -50)
}

func TestSummarize_ExtremesSpreadAndMean(t *testing.T) {
	results := []ScenarioResult{
		{Scenario: Scenario{ID: "a", Name: "A"}, Totals: Totals{Annual: 300}},
		{Scenario: Scenario{ID: "b", Name: "B"}, Totals: Totals{Annual: 100}},
		{Scenario: Scenario{ID: "c", Name: "C"}, Totals: Totals{Annual: 500}},
	}

	s := Summarize(results)

	if s.CheapestID != "b" || s.CostliestID != "c" {
		t.Fatalf("unexpected extremes: %+v", s)
	}
	nearlyEqual(t, "spread", s.Spread, 400)
	nearlyEqual(t, "mean", s.Mean, 300)
}

func TestSummarize_TiesKeepFirstEncountered(t *testing.T) {
	results := []ScenarioResult{
		{Scenario: Scenario{ID: "first"}, Totals: Totals{Annual: 100}},
		{Scenario: Scenario{ID: "second"}, Totals: Totals{Annual: 100}},
	}

	s := Summarize(results)

	if s.CheapestID != "first" || s.CostliestID != "first" {
		t.Fatalf("ties must resolve to the first scenario: %+v", s)
	}
	nearlyEqual(t, "spread", s.Spread, 0)
}

func TestSummarize_Empty(t *testing.T) {
	if s := Summarize(nil); s != (Summary{}) {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}

func TestSortScenarios_StableOnTies(t *testing.T) {
	in := []Scenario{
		{ID: "late", SortOrder: 5},
		{ID: "tie-a", SortOrder: 4},
		{ID: "tie-b", SortOrder: 4},
		{ID: "early", SortOrder: 1},
	}

	got := SortScenarios(in)

	want := []string{"early", "tie-a", "tie-b", "late"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i, got[i].ID, id)
		}
	}
	if in[0].ID != "late" {
		t.Fatalf("SortScenarios must not mutate its input")
	}
}

func TestPredefinedScenarios(t *testing.T) {
	for _, s := range DefaultScenarios() {
		if !s.Predefined() {
			t.Fatalf("%s should be predefined", s.ID)
		}
	}
	if scenarioWith(1000).Predefined() {
		t.Fatalf("custom scenario with tier user count must not be predefined")
	}
	if PaletteColor(len(Palette)+3) != Palette[3] {
		t.Fatalf("palette must cycle")
	}
}
