package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/acrefund/landbank-backend/internal/domain"
)

// snapshotRepository implements domain.SnapshotRepository with one row
// per simulated period. Decimal values are stored as text.
type snapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(db *DB) domain.SnapshotRepository {
	return &snapshotRepository{db: db}
}

// Add inserts a snapshot row. Snapshots are immutable, so replays of an
// already-persisted period are ignored.
func (r *snapshotRepository) Add(ctx context.Context, snap domain.MonthSnapshot) error {
	query := `
		INSERT INTO month_snapshots
			(period, nav, unit_price, total_units, cash_balance,
			 investments_value, land_value, contributions_total, expenses_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (period) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		snap.Period,
		snap.NAV.String(),
		snap.UnitPrice.String(),
		snap.TotalUnits.String(),
		snap.CashBalance.String(),
		snap.InvestmentsValue.String(),
		snap.LandValue.String(),
		snap.ContributionsTotal.String(),
		snap.ExpensesTotal.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert month snapshot: %w", err)
	}
	return nil
}

// List retrieves all snapshots ordered by period.
func (r *snapshotRepository) List(ctx context.Context) ([]domain.MonthSnapshot, error) {
	query := `
		SELECT period, nav, unit_price, total_units, cash_balance,
		       investments_value, land_value, contributions_total, expenses_total
		FROM month_snapshots
		ORDER BY period
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list month snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []domain.MonthSnapshot
	for rows.Next() {
		var snap domain.MonthSnapshot
		var nav, unitPrice, totalUnits, cash, investments, land, contributions, expenses string

		if err := rows.Scan(&snap.Period, &nav, &unitPrice, &totalUnits, &cash,
			&investments, &land, &contributions, &expenses); err != nil {
			return nil, fmt.Errorf("failed to scan month snapshot: %w", err)
		}

		fields := []struct {
			dst *decimal.Decimal
			raw string
		}{
			{&snap.NAV, nav},
			{&snap.UnitPrice, unitPrice},
			{&snap.TotalUnits, totalUnits},
			{&snap.CashBalance, cash},
			{&snap.InvestmentsValue, investments},
			{&snap.LandValue, land},
			{&snap.ContributionsTotal, contributions},
			{&snap.ExpensesTotal, expenses},
		}
		for _, f := range fields {
			d, err := decimal.NewFromString(f.raw)
			if err != nil {
				return nil, fmt.Errorf("failed to parse snapshot decimal: %w", err)
			}
			*f.dst = d
		}

		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}
