package seed

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Simplici0/costcalc/internal/pricing"
)

// Service is a seeded service row with its manual cost per predefined tier.
type Service struct {
	Name     string
	Kind     pricing.Kind
	Cost1K   float64
	Cost10K  float64
	Cost100K float64
}

// DefaultServices is the service list a fresh or reset workspace starts with.
// Stored costs of formula-priced rows are kept for reference only.
var DefaultServices = []Service{
	{Name: "Firebase Hosting", Kind: pricing.KindManual, Cost1K: 0, Cost10K: 0, Cost100K: 2},
	{Name: "Supabase", Kind: pricing.KindBackendPlatform, Cost1K: 30, Cost10K: 30, Cost100K: 30},
	{Name: "AWS EC2", Kind: pricing.KindManual, Cost1K: 15, Cost10K: 15, Cost100K: 30},
	{Name: "Crossmint", Kind: pricing.KindMinting, Cost1K: 15, Cost10K: 15, Cost100K: 15},
	{Name: "Veriff(KYC)", Kind: pricing.KindIdentityVerification, Cost1K: 60, Cost10K: 60, Cost100K: 60},
	{Name: "FlutterFlow", Kind: pricing.KindManual, Cost1K: 50, Cost10K: 50, Cost100K: 50},
	{Name: "Apple Developer", Kind: pricing.KindAppleDeveloper},
	{Name: "Google Play Console", Kind: pricing.KindGooglePlay},
}

// DefaultMedia is the media table a fresh workspace starts with.
var DefaultMedia = []pricing.MediaRow{
	{ID: "media-photo", TypeLabel: "Foto", MaxUnitsPerCustomerPerMonth: 3, Duration: "-", UnitSizeGB: 0.005},
	{ID: "media-audio", TypeLabel: "Audio", MaxUnitsPerCustomerPerMonth: 2, Duration: "3 min", UnitSizeGB: 0.005},
	{ID: "media-video", TypeLabel: "Video", MaxUnitsPerCustomerPerMonth: 1, Duration: "1 min", UnitSizeGB: 0.1},
	{ID: "media-document", TypeLabel: "Documento", MaxUnitsPerCustomerPerMonth: 5, Duration: "-", UnitSizeGB: 0.002},
}

// Config contains the values required by startup seed.
type Config struct {
	Params pricing.Params
	// Scenarios are custom scenarios added after the predefined tiers when a
	// workspace is seeded from scratch.
	Scenarios []Scenario
}

// Scenario is a configured custom scenario.
type Scenario struct {
	Name      string
	UserCount int
	Color     string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Deletes int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}
	if err := seedAll(ctx, tx, cfg, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

// Reset discards every row of the workspace and seeds it again. Services get
// fresh ids; custom scenarios and all edits are lost. Deleting the params row
// clears the seeded flag.
func Reset(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin reset transaction: %w", err)
	}

	stats := Stats{}
	for _, table := range []string{"service_costs", "services", "scenarios", "media_rows", "params"} {
		result, err := tx.ExecContext(ctx, `DELETE FROM `+table)
		if err != nil {
			_ = tx.Rollback()
			return Stats{}, fmt.Errorf("clear %s: %w", table, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			stats.Deletes += int(n)
		}
	}

	if err := seedAll(ctx, tx, cfg, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit reset transaction: %w", err)
	}

	return stats, nil
}

func seedAll(ctx context.Context, tx *sql.Tx, cfg Config, stats *Stats) error {
	if err := ensureParams(ctx, tx, cfg.Params, stats); err != nil {
		return err
	}
	if err := ensureScenarios(ctx, tx, stats); err != nil {
		return err
	}
	if err := ensureMedia(ctx, tx, stats); err != nil {
		return err
	}

	var seeded bool
	if err := tx.QueryRowContext(ctx, `SELECT seeded FROM params WHERE id = 1`).Scan(&seeded); err != nil {
		return fmt.Errorf("read seeded flag: %w", err)
	}
	if seeded {
		return nil
	}

	if err := insertCustomScenarios(ctx, tx, cfg.Scenarios, stats); err != nil {
		return err
	}
	if err := insertServices(ctx, tx, stats); err != nil {
		return err
	}

	// Configured scenarios start with a zero cost column.
	if _, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO service_costs (service_id, scenario_id, cost)
		SELECT services.id, scenarios.id, 0
		FROM services CROSS JOIN scenarios
	`); err != nil {
		return fmt.Errorf("fill service costs: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE params SET seeded = 1 WHERE id = 1`); err != nil {
		return fmt.Errorf("mark workspace seeded: %w", err)
	}
	return nil
}

func insertCustomScenarios(ctx context.Context, tx *sql.Tx, scenarios []Scenario, stats *Stats) error {
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM scenarios`).Scan(&count); err != nil {
		return fmt.Errorf("count scenarios: %w", err)
	}

	for _, sc := range scenarios {
		if strings.TrimSpace(sc.Name) == "" || sc.UserCount <= 0 {
			return fmt.Errorf("seed scenario %q: name required and user count must be positive", sc.Name)
		}
		color := sc.Color
		if color == "" {
			color = pricing.PaletteColor(count)
		}
		count++

		id := "scenario-" + uuid.NewString()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO scenarios (id, name, user_count, color, sort_order, created_seq)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, strings.TrimSpace(sc.Name), sc.UserCount, color, count, count); err != nil {
			return fmt.Errorf("insert scenario %q: %w", sc.Name, err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureParams(ctx context.Context, tx *sql.Tx, params pricing.Params, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM params WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check params existence: %w", err)
	}
	if exists {
		return nil
	}

	if params == (pricing.Params{}) {
		params = pricing.DefaultParams()
	}
	if params.IdentityFormula == "" {
		params.IdentityFormula = pricing.IdentityProrated
	}
	if err := params.Validate(); err != nil {
		return fmt.Errorf("seed params: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO params (
			id,
			active_user_percent,
			monthly_mint_update_count,
			certified_user_percent,
			identity_formula
		)
		VALUES (1, ?, ?, ?, ?)
	`, params.ActiveUserPercent, params.MonthlyMintUpdateCount, params.CertifiedUserPercent, string(params.IdentityFormula)); err != nil {
		return fmt.Errorf("insert params singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureScenarios(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	for i, scenario := range pricing.DefaultScenarios() {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM scenarios WHERE id = ? LIMIT 1)`, scenario.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check scenario %s existence: %w", scenario.ID, err)
		}
		if exists {
			continue
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO scenarios (id, name, user_count, color, sort_order, created_seq)
			VALUES (?, ?, ?, ?, ?, ?)
		`, scenario.ID, scenario.Name, scenario.UserCount, scenario.Color, scenario.SortOrder, i+1); err != nil {
			return fmt.Errorf("insert scenario %s: %w", scenario.ID, err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureMedia(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	for i, row := range DefaultMedia {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM media_rows WHERE id = ? LIMIT 1)`, row.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check media %s existence: %w", row.ID, err)
		}
		if exists {
			continue
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO media_rows (id, type_label, max_units_per_month, duration, unit_size_gb, position)
			VALUES (?, ?, ?, ?, ?, ?)
		`, row.ID, row.TypeLabel, row.MaxUnitsPerCustomerPerMonth, row.Duration, row.UnitSizeGB, i+1); err != nil {
			return fmt.Errorf("insert media %s: %w", row.ID, err)
		}
		stats.Inserts++
	}
	return nil
}

// insertServices seeds the default service list. It runs once per workspace,
// so services the user removed do not come back on the next run.
func insertServices(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	for i, svc := range DefaultServices {
		id := uuid.NewString()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO services (id, name, pricing_kind, position)
			VALUES (?, ?, ?, ?)
		`, id, svc.Name, string(svc.Kind), i+1); err != nil {
			return fmt.Errorf("insert service %q: %w", svc.Name, err)
		}

		tiers := map[string]float64{
			pricing.Scenario1K:   svc.Cost1K,
			pricing.Scenario10K:  svc.Cost10K,
			pricing.Scenario100K: svc.Cost100K,
		}
		for scenarioID, cost := range tiers {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO service_costs (service_id, scenario_id, cost)
				VALUES (?, ?, ?)
			`, id, scenarioID, cost); err != nil {
				return fmt.Errorf("insert cost of %q at %s: %w", svc.Name, scenarioID, err)
			}
		}
		stats.Inserts++
	}
	return nil
}
