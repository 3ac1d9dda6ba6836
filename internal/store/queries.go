package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/costcalc/internal/pricing"
)

func listScenarios(ctx context.Context, tx *sql.Tx) ([]pricing.Scenario, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, user_count, color, sort_order
		FROM scenarios
		ORDER BY sort_order ASC, created_seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query scenarios: %w", err)
	}
	defer rows.Close()

	scenarios := make([]pricing.Scenario, 0)
	for rows.Next() {
		var sc pricing.Scenario
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.UserCount, &sc.Color, &sc.SortOrder); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		scenarios = append(scenarios, sc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenarios: %w", err)
	}

	return scenarios, nil
}

func scenarioIDs(ctx context.Context, tx *sql.Tx) ([]string, error) {
	scenarios, err := listScenarios(ctx, tx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(scenarios))
	for _, sc := range scenarios {
		ids = append(ids, sc.ID)
	}
	return ids, nil
}

func listServices(ctx context.Context, tx *sql.Tx) ([]pricing.ServiceRow, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, pricing_kind
		FROM services
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query services: %w", err)
	}
	defer rows.Close()

	services := make([]pricing.ServiceRow, 0)
	index := make(map[string]int)
	for rows.Next() {
		var row pricing.ServiceRow
		var kind string
		if err := rows.Scan(&row.ID, &row.Name, &kind); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		row.Kind = pricing.Kind(kind)
		row.Costs = make(map[string]float64)
		index[row.ID] = len(services)
		services = append(services, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}

	costs, err := tx.QueryContext(ctx, `SELECT service_id, scenario_id, cost FROM service_costs`)
	if err != nil {
		return nil, fmt.Errorf("query service costs: %w", err)
	}
	defer costs.Close()

	for costs.Next() {
		var serviceID, scenarioID string
		var cost float64
		if err := costs.Scan(&serviceID, &scenarioID, &cost); err != nil {
			return nil, fmt.Errorf("scan service cost: %w", err)
		}
		if i, ok := index[serviceID]; ok {
			services[i].Costs[scenarioID] = cost
		}
	}
	if err := costs.Err(); err != nil {
		return nil, fmt.Errorf("iterate service costs: %w", err)
	}

	return services, nil
}

func listMedia(ctx context.Context, tx *sql.Tx) ([]pricing.MediaRow, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, type_label, max_units_per_month, duration, unit_size_gb
		FROM media_rows
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query media rows: %w", err)
	}
	defer rows.Close()

	media := make([]pricing.MediaRow, 0)
	for rows.Next() {
		var m pricing.MediaRow
		if err := rows.Scan(&m.ID, &m.TypeLabel, &m.MaxUnitsPerCustomerPerMonth, &m.Duration, &m.UnitSizeGB); err != nil {
			return nil, fmt.Errorf("scan media row: %w", err)
		}
		media = append(media, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media rows: %w", err)
	}

	return media, nil
}

func getMedia(ctx context.Context, tx *sql.Tx, id string) (pricing.MediaRow, error) {
	var row pricing.MediaRow
	err := tx.QueryRowContext(ctx, `
		SELECT id, type_label, max_units_per_month, duration, unit_size_gb
		FROM media_rows
		WHERE id = ?
	`, id).Scan(&row.ID, &row.TypeLabel, &row.MaxUnitsPerCustomerPerMonth, &row.Duration, &row.UnitSizeGB)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pricing.MediaRow{}, fmt.Errorf("media row %s: %w", id, ErrNotFound)
		}
		return pricing.MediaRow{}, fmt.Errorf("query media row: %w", err)
	}
	return row, nil
}

func getParams(ctx context.Context, tx *sql.Tx) (pricing.Params, error) {
	var p pricing.Params
	var formula string
	err := tx.QueryRowContext(ctx, `
		SELECT active_user_percent, monthly_mint_update_count, certified_user_percent, identity_formula
		FROM params
		WHERE id = 1
	`).Scan(&p.ActiveUserPercent, &p.MonthlyMintUpdateCount, &p.CertifiedUserPercent, &formula)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pricing.Params{}, fmt.Errorf("params singleton: %w", ErrNotFound)
		}
		return pricing.Params{}, fmt.Errorf("query params: %w", err)
	}
	p.IdentityFormula = pricing.IdentityFormula(formula)
	return p, nil
}
