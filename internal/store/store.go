// Package store keeps the state of one calculator workspace in SQLite.
//
// Every mutation runs in its own transaction, so a Snapshot never observes a
// half-applied change such as a scenario without its cost column.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Simplici0/costcalc/internal/pricing"
	"github.com/Simplici0/costcalc/internal/seed"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidScenario    = errors.New("invalid scenario: name required and user count must be positive")
	ErrPredefinedScenario = errors.New("predefined scenarios cannot be removed")
	ErrFormulaPriced      = errors.New("service cost is formula-derived")
	ErrInvalidKind        = errors.New("unknown pricing kind")
	ErrInvalidMedia       = errors.New("media values must be non-negative")
)

// DefaultServiceName labels services created without a name.
const DefaultServiceName = "Nuovo servizio"

// Store is the workspace repository.
type Store struct {
	db    *sql.DB
	seed  seed.Config
	newID func() string
}

// New returns a Store over an already migrated database. cfg is reused by
// Reset.
func New(db *sql.DB, cfg seed.Config) *Store {
	return &Store{db: db, seed: cfg, newID: uuid.NewString}
}

// NewScenario is the input of AddScenario.
type NewScenario struct {
	Name      string
	UserCount int
	Color     string
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Snapshot reads the whole workspace.
func (s *Store) Snapshot(ctx context.Context) (pricing.Workspace, error) {
	var ws pricing.Workspace
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if ws.Scenarios, err = listScenarios(ctx, tx); err != nil {
			return err
		}
		if ws.Services, err = listServices(ctx, tx); err != nil {
			return err
		}
		if ws.Media, err = listMedia(ctx, tx); err != nil {
			return err
		}
		ws.Params, err = getParams(ctx, tx)
		return err
	})
	if err != nil {
		return pricing.Workspace{}, err
	}
	return ws, nil
}

// Reset restores the seeded defaults.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := seed.Reset(ctx, s.db, s.seed); err != nil {
		return fmt.Errorf("reset workspace: %w", err)
	}
	return nil
}

// AddService appends a service with a zero cost for every scenario.
func (s *Store) AddService(ctx context.Context, name string, kind pricing.Kind) (pricing.ServiceRow, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultServiceName
	}
	if kind == "" {
		kind = pricing.KindManual
	}
	if !kind.Valid() {
		return pricing.ServiceRow{}, ErrInvalidKind
	}

	row := pricing.ServiceRow{ID: s.newID(), Name: name, Kind: kind, Costs: map[string]float64{}}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO services (id, name, pricing_kind, position)
			VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM services))
		`, row.ID, row.Name, string(row.Kind)); err != nil {
			return fmt.Errorf("insert service: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO service_costs (service_id, scenario_id, cost)
			SELECT ?, id, 0 FROM scenarios
		`, row.ID); err != nil {
			return fmt.Errorf("insert service cost columns: %w", err)
		}

		ids, err := scenarioIDs(ctx, tx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			row.Costs[id] = 0
		}
		return nil
	})
	if err != nil {
		return pricing.ServiceRow{}, err
	}
	return row, nil
}

// RenameService changes a service's display name. Pricing is unaffected.
func (s *Store) RenameService(ctx context.Context, id, name string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `UPDATE services SET name = ? WHERE id = ?`, name, id)
		if err != nil {
			return fmt.Errorf("rename service: %w", err)
		}
		return expectAffected(result, "service")
	})
}

// SetServiceKind changes how a service is priced.
func (s *Store) SetServiceKind(ctx context.Context, id string, kind pricing.Kind) error {
	if !kind.Valid() {
		return ErrInvalidKind
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `UPDATE services SET pricing_kind = ? WHERE id = ?`, string(kind), id)
		if err != nil {
			return fmt.Errorf("update service kind: %w", err)
		}
		return expectAffected(result, "service")
	})
}

// SetServiceCost stores the manual monthly cost of a service at a scenario.
// Formula-priced services reject manual costs with ErrFormulaPriced.
func (s *Store) SetServiceCost(ctx context.Context, serviceID, scenarioID string, value float64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var kind string
		err := tx.QueryRowContext(ctx, `SELECT pricing_kind FROM services WHERE id = ?`, serviceID).Scan(&kind)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("service %s: %w", serviceID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("query service: %w", err)
		}
		if pricing.Kind(kind).Formula() {
			return ErrFormulaPriced
		}

		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM scenarios WHERE id = ?)`, scenarioID).Scan(&exists); err != nil {
			return fmt.Errorf("check scenario existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("scenario %s: %w", scenarioID, ErrNotFound)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO service_costs (service_id, scenario_id, cost)
			VALUES (?, ?, ?)
			ON CONFLICT(service_id, scenario_id) DO UPDATE SET cost = excluded.cost
		`, serviceID, scenarioID, value); err != nil {
			return fmt.Errorf("upsert service cost: %w", err)
		}
		return nil
	})
}

// RemoveService deletes a service and all of its costs.
func (s *Store) RemoveService(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM service_costs WHERE service_id = ?`, id); err != nil {
			return fmt.Errorf("delete service costs: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete service: %w", err)
		}
		return expectAffected(result, "service")
	})
}

// AddScenario appends a custom scenario. It gets a fresh id, SortOrder equal
// to the current scenario count plus one and a zero cost in every service.
func (s *Store) AddScenario(ctx context.Context, in NewScenario) (pricing.Scenario, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.UserCount <= 0 {
		return pricing.Scenario{}, ErrInvalidScenario
	}

	scenario := pricing.Scenario{
		ID:        "scenario-" + s.newID(),
		Name:      name,
		UserCount: in.UserCount,
		Color:     strings.TrimSpace(in.Color),
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var count, lastSeq int
		if err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*), COALESCE(MAX(created_seq), 0) FROM scenarios
		`).Scan(&count, &lastSeq); err != nil {
			return fmt.Errorf("count scenarios: %w", err)
		}

		scenario.SortOrder = count + 1
		if scenario.Color == "" {
			scenario.Color = pricing.PaletteColor(count)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO scenarios (id, name, user_count, color, sort_order, created_seq)
			VALUES (?, ?, ?, ?, ?, ?)
		`, scenario.ID, scenario.Name, scenario.UserCount, scenario.Color, scenario.SortOrder, lastSeq+1); err != nil {
			return fmt.Errorf("insert scenario: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO service_costs (service_id, scenario_id, cost)
			SELECT id, ?, 0 FROM services
		`, scenario.ID); err != nil {
			return fmt.Errorf("insert scenario cost column: %w", err)
		}
		return nil
	})
	if err != nil {
		return pricing.Scenario{}, err
	}
	return scenario, nil
}

// RemoveScenario deletes a custom scenario and its cost column. Predefined
// tiers are refused with ErrPredefinedScenario and left untouched.
func (s *Store) RemoveScenario(ctx context.Context, id string) error {
	if pricing.IsPredefinedScenario(id) {
		return ErrPredefinedScenario
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM service_costs WHERE scenario_id = ?`, id); err != nil {
			return fmt.Errorf("delete scenario cost column: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete scenario: %w", err)
		}
		return expectAffected(result, "scenario")
	})
}

// Media reads one media row.
func (s *Store) Media(ctx context.Context, id string) (pricing.MediaRow, error) {
	var row pricing.MediaRow
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		row, err = getMedia(ctx, tx, id)
		return err
	})
	return row, err
}

// UpdateMedia overwrites the editable fields of a media row.
func (s *Store) UpdateMedia(ctx context.Context, row pricing.MediaRow) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return updateMedia(ctx, tx, row)
	})
}

// MediaPatch lists the media fields to change. Nil fields are kept.
type MediaPatch struct {
	TypeLabel                   *string
	MaxUnitsPerCustomerPerMonth *float64
	Duration                    *string
	UnitSizeGB                  *float64
}

// PatchMedia merges patch into a media row within one transaction.
func (s *Store) PatchMedia(ctx context.Context, id string, patch MediaPatch) (pricing.MediaRow, error) {
	var row pricing.MediaRow
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if row, err = getMedia(ctx, tx, id); err != nil {
			return err
		}
		if patch.TypeLabel != nil {
			row.TypeLabel = *patch.TypeLabel
		}
		if patch.MaxUnitsPerCustomerPerMonth != nil {
			row.MaxUnitsPerCustomerPerMonth = *patch.MaxUnitsPerCustomerPerMonth
		}
		if patch.Duration != nil {
			row.Duration = *patch.Duration
		}
		if patch.UnitSizeGB != nil {
			row.UnitSizeGB = *patch.UnitSizeGB
		}
		return updateMedia(ctx, tx, row)
	})
	if err != nil {
		return pricing.MediaRow{}, err
	}
	return row, nil
}

func updateMedia(ctx context.Context, tx *sql.Tx, row pricing.MediaRow) error {
	if row.MaxUnitsPerCustomerPerMonth < 0 || row.UnitSizeGB < 0 {
		return ErrInvalidMedia
	}
	result, err := tx.ExecContext(ctx, `
		UPDATE media_rows
		SET
			type_label = ?,
			max_units_per_month = ?,
			duration = ?,
			unit_size_gb = ?
		WHERE id = ?
	`, row.TypeLabel, row.MaxUnitsPerCustomerPerMonth, row.Duration, row.UnitSizeGB, row.ID)
	if err != nil {
		return fmt.Errorf("update media row: %w", err)
	}
	return expectAffected(result, "media row")
}

// Params reads the global parameters.
func (s *Store) Params(ctx context.Context) (pricing.Params, error) {
	var params pricing.Params
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		params, err = getParams(ctx, tx)
		return err
	})
	return params, err
}

// UpdateParams validates and stores the global parameters.
func (s *Store) UpdateParams(ctx context.Context, params pricing.Params) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return updateParams(ctx, tx, params)
	})
}

// ParamsPatch lists the parameters to change. Nil fields are kept.
type ParamsPatch struct {
	ActiveUserPercent      *float64
	MonthlyMintUpdateCount *float64
	CertifiedUserPercent   *float64
	IdentityFormula        *pricing.IdentityFormula
}

// PatchParams merges patch into the stored parameters within one
// transaction. The merged result is validated before it is written.
func (s *Store) PatchParams(ctx context.Context, patch ParamsPatch) (pricing.Params, error) {
	var params pricing.Params
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if params, err = getParams(ctx, tx); err != nil {
			return err
		}
		if patch.ActiveUserPercent != nil {
			params.ActiveUserPercent = *patch.ActiveUserPercent
		}
		if patch.MonthlyMintUpdateCount != nil {
			params.MonthlyMintUpdateCount = *patch.MonthlyMintUpdateCount
		}
		if patch.CertifiedUserPercent != nil {
			params.CertifiedUserPercent = *patch.CertifiedUserPercent
		}
		if patch.IdentityFormula != nil {
			params.IdentityFormula = *patch.IdentityFormula
		}
		if params.IdentityFormula == "" {
			params.IdentityFormula = pricing.IdentityProrated
		}
		return updateParams(ctx, tx, params)
	})
	if err != nil {
		return pricing.Params{}, err
	}
	return params, nil
}

func updateParams(ctx context.Context, tx *sql.Tx, params pricing.Params) error {
	if params.IdentityFormula == "" {
		params.IdentityFormula = pricing.IdentityProrated
	}
	if err := params.Validate(); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `
		UPDATE params
		SET
			active_user_percent = ?,
			monthly_mint_update_count = ?,
			certified_user_percent = ?,
			identity_formula = ?
		WHERE id = 1
	`, params.ActiveUserPercent, params.MonthlyMintUpdateCount, params.CertifiedUserPercent, string(params.IdentityFormula))
	if err != nil {
		return fmt.Errorf("update params: %w", err)
	}
	return expectAffected(result, "params")
}

func expectAffected(result sql.Result, what string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
