package main

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// amount is a numeric request field. Inline edits send whatever the user
// typed, so anything that is not a finite number decodes to 0.
type amount float64

func (a *amount) UnmarshalJSON(data []byte) error {
	*a = 0

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	switch v := raw.(type) {
	case float64:
		*a = amount(v)
	case string:
		*a = amount(parseLooseFloat(v))
	}
	return nil
}

// ptr converts an optional field, keeping nil as nil.
func (a *amount) ptr() *float64 {
	if a == nil {
		return nil
	}
	v := float64(*a)
	return &v
}

// parseLooseFloat parses a user-typed number, accepting a decimal comma.
// Invalid input yields 0.
func parseLooseFloat(raw string) float64 {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

type addServiceRequest struct {
	Name string `json:"name" validate:"max=200"`
	Kind string `json:"kind" validate:"omitempty,oneof=manual identity_verification minting backend_platform apple_developer google_play"`
}

type updateServiceRequest struct {
	Name *string `json:"name" validate:"omitempty,max=200"`
	Kind *string `json:"kind" validate:"omitempty,oneof=manual identity_verification minting backend_platform apple_developer google_play"`
}

type setCostRequest struct {
	Cost amount `json:"cost"`
}

type addScenarioRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	UserCount amount `json:"user_count" validate:"gt=0"`
	Color     string `json:"color" validate:"omitempty,hexcolor"`
}

type updateMediaRequest struct {
	TypeLabel                   *string `json:"type_label" validate:"omitempty,max=200"`
	MaxUnitsPerCustomerPerMonth *amount `json:"max_units_per_customer_per_month"`
	Duration                    *string `json:"duration" validate:"omitempty,max=100"`
	UnitSizeGB                  *amount `json:"unit_size_gb"`
}

type paramsRequest struct {
	ActiveUserPercent      *amount `json:"active_user_percent"`
	MonthlyMintUpdateCount *amount `json:"monthly_mint_update_count"`
	CertifiedUserPercent   *amount `json:"certified_user_percent"`
	IdentityFormula        *string `json:"identity_formula"`
}

type errorResponse struct {
	Error string `json:"error"`
}
