package pricing

import (
	"errors"
	"math"
	"testing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func scenarioWith(users int) Scenario {
	return Scenario{ID: "custom", Name: "custom", UserCount: users, SortOrder: 4}
}

func TestServiceCost_ManualReadsStoredTierValue(t *testing.T) {
	row := ServiceRow{
		ID:   "aws",
		Name: "AWS EC2",
		Kind: KindManual,
		Costs: map[string]float64{
			Scenario1K:   15,
			Scenario10K:  15,
			Scenario100K: 30,
		},
	}

	for _, scenario := range DefaultScenarios() {
		got := ServiceCost(row, scenario, DefaultParams())
		nearlyEqual(t, scenario.Name, got, row.Costs[scenario.ID])
	}
}

func TestServiceCost_ManualMissingCustomColumnIsZero(t *testing.T) {
	row := ServiceRow{ID: "x", Kind: KindManual, Costs: map[string]float64{Scenario1K: 5}}

	nearlyEqual(t, "missing column", ServiceCost(row, scenarioWith(2500), DefaultParams()), 0)

	var nilCosts ServiceRow
	nearlyEqual(t, "nil costs", ServiceCost(nilCosts, scenarioWith(2500), DefaultParams()), 0)
}

func TestServiceCost_CustomScenarioSharingTierUserCountUsesOwnColumn(t *testing.T) {
	row := ServiceRow{
		Kind:  KindManual,
		Costs: map[string]float64{Scenario1K: 15, "custom": 7},
	}

	nearlyEqual(t, "custom at 1000 users", ServiceCost(row, scenarioWith(1000), DefaultParams()), 7)
}

func TestServiceCost_FormulaIgnoresStoredCost(t *testing.T) {
	row := ServiceRow{
		Kind:  KindBackendPlatform,
		Costs: map[string]float64{Scenario1K: 999},
	}
	params := Params{ActiveUserPercent: 50}

	nearlyEqual(t, "backend", ServiceCost(row, DefaultScenarios()[0], params), 130)
}

func TestIdentityVerificationCost_Prorated(t *testing.T) {
	params := Params{CertifiedUserPercent: 10, IdentityFormula: IdentityProrated}

	nearlyEqual(t, "kyc 1000 users", IdentityVerificationCost(1000, params), 49+80.0/12)
}

func TestIdentityVerificationCost_WholeSum(t *testing.T) {
	params := Params{CertifiedUserPercent: 10, IdentityFormula: IdentityWholeSum}

	nearlyEqual(t, "kyc 1000 users", IdentityVerificationCost(1000, params), 129.0/12)
}

func TestIdentityVerificationCost_EmptyFormulaIsProrated(t *testing.T) {
	params := Params{CertifiedUserPercent: 10}

	nearlyEqual(t, "kyc default", IdentityVerificationCost(1000, params), 49+80.0/12)
}

func TestMintingCost_Example(t *testing.T) {
	params := Params{ActiveUserPercent: 5, MonthlyMintUpdateCount: 2}

	nearlyEqual(t, "minting 10000 users", MintingCost(10000, params), 1000.0/12+50)
}

func TestBackendPlatformCost_Example(t *testing.T) {
	params := Params{ActiveUserPercent: 50}

	nearlyEqual(t, "backend 1000 users", BackendPlatformCost(1000, params), 130)
}

func TestAppDistributionFeesAreIndependentOfUsers(t *testing.T) {
	apple := ServiceRow{Kind: KindAppleDeveloper}
	google := ServiceRow{Kind: KindGooglePlay}

	for _, users := range []int{0, 1, 1000, 100000} {
		nearlyEqual(t, "apple", ServiceCost(apple, scenarioWith(users), DefaultParams()), 99.0/12)
		nearlyEqual(t, "google", ServiceCost(google, scenarioWith(users), DefaultParams()), 25.0/12)
	}
}

func TestServiceCost_ZeroUsers(t *testing.T) {
	params := DefaultParams()
	zero := scenarioWith(0)

	nearlyEqual(t, "kyc", ServiceCost(ServiceRow{Kind: KindIdentityVerification}, zero, params), IdentityBaseFee)
	nearlyEqual(t, "mint", ServiceCost(ServiceRow{Kind: KindMinting}, zero, params), 0)
	nearlyEqual(t, "backend", ServiceCost(ServiceRow{Kind: KindBackendPlatform}, zero, params), BackendBaseMonthlyFee)
	nearlyEqual(t, "manual", ServiceCost(ServiceRow{Kind: KindManual}, zero, params), 0)
}

func TestServiceCost_FormulaIsDeterministic(t *testing.T) {
	params := Params{ActiveUserPercent: 37, MonthlyMintUpdateCount: 3, CertifiedUserPercent: 12}
	scenario := scenarioWith(4321)

	for _, kind := range Kinds {
		row := ServiceRow{Kind: kind}
		first := ServiceCost(row, scenario, params)
		for i := 0; i < 5; i++ {
			if got := ServiceCost(row, scenario, params); got != first {
				t.Fatalf("%s: call %d = %v, want %v", kind, i, got, first)
			}
		}
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"defaults", DefaultParams(), false},
		{"bounds", Params{ActiveUserPercent: 100, CertifiedUserPercent: 0}, false},
		{"active above 100", Params{ActiveUserPercent: 100.5}, true},
		{"active negative", Params{ActiveUserPercent: -1}, true},
		{"certified above 100", Params{CertifiedUserPercent: 101}, true},
		{"negative mint updates", Params{MonthlyMintUpdateCount: -2}, true},
		{"unknown identity formula", Params{IdentityFormula: "yearly"}, true},
	}

	for _, tt := range tests {
		err := tt.params.Validate()
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidParams) {
				t.Fatalf("%s: err = %v, want ErrInvalidParams", tt.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected err: %v", tt.name, err)
		}
	}
}

func TestKindValidAndFormula(t *testing.T) {
	if !KindMinting.Valid() || Kind("spreadsheet").Valid() {
		t.Fatalf("unexpected Kind.Valid results")
	}
	if KindManual.Formula() {
		t.Fatalf("manual kind must not be formula-priced")
	}
	if !KindGooglePlay.Formula() {
		t.Fatalf("google play kind must be formula-priced")
	}
}
