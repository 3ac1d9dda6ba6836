package pricing

import (
	"errors"
	"fmt"
)

// Kind selects how a service row is priced. It is stored next to the row and
// never derived from the display name.
type Kind string

const (
	KindManual               Kind = "manual"
	KindIdentityVerification Kind = "identity_verification"
	KindMinting              Kind = "minting"
	KindBackendPlatform      Kind = "backend_platform"
	KindAppleDeveloper       Kind = "apple_developer"
	KindGooglePlay           Kind = "google_play"
)

// Kinds lists every supported pricing kind.
var Kinds = []Kind{
	KindManual,
	KindIdentityVerification,
	KindMinting,
	KindBackendPlatform,
	KindAppleDeveloper,
	KindGooglePlay,
}

// Valid reports whether k is a known pricing kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Formula reports whether the cost of a row of this kind is computed rather
// than read from the stored per-scenario costs.
func (k Kind) Formula() bool {
	return k != KindManual
}

// IdentityFormula selects the identity-verification variant.
type IdentityFormula string

const (
	// IdentityProrated divides only the per-certified-user term by 12.
	IdentityProrated IdentityFormula = "prorated"
	// IdentityWholeSum divides base fee and per-user term together by 12.
	IdentityWholeSum IdentityFormula = "whole_sum"
)

// Formula constants, in currency units.
const (
	IdentityBaseFee             = 49.0
	IdentityPerCertifiedUserFee = 0.80

	MintFixedPerUserFee  = 0.10
	MintPerActiveUserFee = 0.05

	BackendBaseMonthlyFee   = 30.0
	BackendPerActiveUserFee = 0.20

	AppleDeveloperAnnualFee = 99.0
	GooglePlayOneTimeFee    = 25.0

	monthsPerYear = 12.0
)

// ServiceRow is one recurring service line. Costs holds the manually entered
// monthly cost per scenario id; it is ignored for formula kinds.
type ServiceRow struct {
	ID    string             `json:"id"`
	Name  string             `json:"name"`
	Kind  Kind               `json:"kind"`
	Costs map[string]float64 `json:"costs"`
}

// StoredCost returns the manual cost recorded for scenarioID, or 0.
func (r ServiceRow) StoredCost(scenarioID string) float64 {
	return r.Costs[scenarioID]
}

// Params are the global tunables feeding the formula-priced services.
type Params struct {
	ActiveUserPercent      float64         `json:"active_user_percent" yaml:"active_user_percent"`
	MonthlyMintUpdateCount float64         `json:"monthly_mint_update_count" yaml:"monthly_mint_update_count"`
	CertifiedUserPercent   float64         `json:"certified_user_percent" yaml:"certified_user_percent"`
	IdentityFormula        IdentityFormula `json:"identity_formula" yaml:"identity_formula"`
}

// DefaultParams returns the parameters a fresh workspace starts with.
func DefaultParams() Params {
	return Params{
		ActiveUserPercent:      50,
		MonthlyMintUpdateCount: 2,
		CertifiedUserPercent:   10,
		IdentityFormula:        IdentityProrated,
	}
}

// ErrInvalidParams is wrapped by every Params validation failure.
var ErrInvalidParams = errors.New("invalid parameters")

// Validate checks the bounds of every parameter.
func (p Params) Validate() error {
	if p.ActiveUserPercent < 0 || p.ActiveUserPercent > 100 {
		return fmt.Errorf("%w: active_user_percent deve essere compreso tra 0 e 100", ErrInvalidParams)
	}
	if p.CertifiedUserPercent < 0 || p.CertifiedUserPercent > 100 {
		return fmt.Errorf("%w: certified_user_percent deve essere compreso tra 0 e 100", ErrInvalidParams)
	}
	if p.MonthlyMintUpdateCount < 0 {
		return fmt.Errorf("%w: monthly_mint_update_count deve essere maggiore o uguale a 0", ErrInvalidParams)
	}
	switch p.IdentityFormula {
	case "", IdentityProrated, IdentityWholeSum:
	default:
		return fmt.Errorf("%w: identity_formula %q non supportata", ErrInvalidParams, p.IdentityFormula)
	}
	return nil
}

// ServiceCost returns the monthly cost of row at scenario under params.
func ServiceCost(row ServiceRow, scenario Scenario, params Params) float64 {
	u := float64(scenario.UserCount)

	switch row.Kind {
	case KindIdentityVerification:
		return IdentityVerificationCost(u, params)
	case KindMinting:
		return MintingCost(u, params)
	case KindBackendPlatform:
		return BackendPlatformCost(u, params)
	case KindAppleDeveloper:
		return AppleDeveloperAnnualFee / monthsPerYear
	case KindGooglePlay:
		return GooglePlayOneTimeFee / monthsPerYear
	default:
		return row.StoredCost(scenario.ID)
	}
}

// IdentityVerificationCost prices the KYC service for userCount users.
func IdentityVerificationCost(userCount float64, params Params) float64 {
	certified := userCount * params.CertifiedUserPercent / 100
	variable := certified * IdentityPerCertifiedUserFee

	if params.IdentityFormula == IdentityWholeSum {
		return (IdentityBaseFee + variable) / monthsPerYear
	}
	return IdentityBaseFee + variable/monthsPerYear
}

// MintingCost prices the minting/custody service for userCount users.
func MintingCost(userCount float64, params Params) float64 {
	fixed := userCount * MintFixedPerUserFee / monthsPerYear
	active := userCount * params.ActiveUserPercent / 100
	return fixed + active*MintPerActiveUserFee*params.MonthlyMintUpdateCount
}

// BackendPlatformCost prices the backend platform for userCount users.
func BackendPlatformCost(userCount float64, params Params) float64 {
	active := userCount * params.ActiveUserPercent / 100
	return BackendBaseMonthlyFee + BackendPerActiveUserFee*active
}
