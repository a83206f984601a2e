package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/apperrors"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/model"
)

// CostRecordRepository persists per-service cost snapshots.
type CostRecordRepository struct {
	db *sql.DB
}

func NewCostRecordRepository(db *sql.DB) *CostRecordRepository {
	return &CostRecordRepository{db: db}
}

// UpsertEstimate creates the cost record for a service instance, or refreshes
// the estimate on an existing one. Subsidy bookkeeping on the row is
// preserved; the effective cost is recomputed against the already-applied
// subsidy.
func (r *CostRecordRepository) UpsertEstimate(ctx context.Context, rec *model.ServiceCostRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	var breakdownJSON sql.NullString
	if rec.Breakdown != nil {
		data, err := json.Marshal(rec.Breakdown)
		if err != nil {
			return fmt.Errorf("failed to marshal cost breakdown: %w", err)
		}
		breakdownJSON = sql.NullString{String: string(data), Valid: true}
	}

	now := time.Now().UTC().Format(TimestampFormat)

	existing, err := r.GetByService(ctx, rec.RouteID, rec.ServiceDate)
	if errors.Is(err, apperrors.ErrCostRecordNotFound) {
		rec.SubsidyApplied = decimal.Zero
		rec.EffectiveCost = rec.TotalCost
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO service_cost_record
				(id, tenant_id, route_id, timetable_id, service_date, total_cost,
				 subsidy_applied, effective_cost, breakdown, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, '0', ?, ?, ?, ?)
		`,
			rec.ID,
			rec.TenantID,
			rec.RouteID,
			nullString(rec.TimetableID),
			rec.ServiceDate.Format(DateFormat),
			rec.TotalCost.String(),
			rec.EffectiveCost.String(),
			breakdownJSON,
			now,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert service cost record: %w", err)
		}
		return nil
	}
	if err != nil {
		return err
	}

	// Re-estimate on an existing row: the effective cost is recomputed
	// against the already-applied subsidy so a refresh never erases it.
	rec.ID = existing.ID
	rec.SubsidyApplied = existing.SubsidyApplied
	rec.EffectiveCost = rec.TotalCost.Sub(existing.SubsidyApplied)

	_, err = r.db.ExecContext(ctx, `
		UPDATE service_cost_record
		SET total_cost = ?, effective_cost = ?, breakdown = ?, updated_at = ?
		WHERE id = ?
	`, rec.TotalCost.String(), rec.EffectiveCost.String(), breakdownJSON, now, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update service cost record: %w", err)
	}

	return nil
}

// GetByService retrieves the cost record for one (route, service date).
// Returns apperrors.ErrCostRecordNotFound when the estimator has not run.
func (r *CostRecordRepository) GetByService(ctx context.Context, routeID string, serviceDate time.Time) (model.ServiceCostRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, route_id, timetable_id, service_date, total_cost,
			subsidy_applied, effective_cost, revenue, net_surplus, breakdown,
			created_at, updated_at
		FROM service_cost_record
		WHERE route_id = ? AND service_date = ?
	`, routeID, serviceDate.Format(DateFormat))

	return scanCostRecord(row)
}

// ApplySubsidyTx adds a subsidy draw to the service's cost record inside the
// caller's pool transaction, keeping the record consistent with the ledger.
// The effective cost and, when revenue is already reconciled, the net surplus
// are recomputed.
func (r *CostRecordRepository) ApplySubsidyTx(ctx context.Context, tx *sql.Tx, tenantID, routeID, timetableID string, serviceDate time.Time, amount, serviceCost decimal.Decimal) error {
	rec, err := r.getByServiceTx(ctx, tx, routeID, serviceDate)
	if errors.Is(err, apperrors.ErrCostRecordNotFound) {
		rec = model.ServiceCostRecord{
			ID:             uuid.New().String(),
			TenantID:       tenantID,
			RouteID:        routeID,
			TimetableID:    timetableID,
			ServiceDate:    serviceDate,
			TotalCost:      serviceCost,
			SubsidyApplied: decimal.Zero,
			EffectiveCost:  serviceCost,
		}
		now := time.Now().UTC().Format(TimestampFormat)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO service_cost_record
				(id, tenant_id, route_id, timetable_id, service_date, total_cost,
				 subsidy_applied, effective_cost, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, '0', ?, ?, ?)
		`,
			rec.ID, rec.TenantID, rec.RouteID, nullString(rec.TimetableID),
			rec.ServiceDate.Format(DateFormat), rec.TotalCost.String(),
			rec.EffectiveCost.String(), now, now,
		); err != nil {
			return fmt.Errorf("failed to create service cost record: %w", err)
		}
	} else if err != nil {
		return err
	}

	subsidy := rec.SubsidyApplied.Add(amount)
	effective := rec.TotalCost.Sub(subsidy)

	var netSurplus sql.NullString
	if rec.Revenue != nil {
		netSurplus = sql.NullString{String: rec.Revenue.Sub(effective).String(), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE service_cost_record
		SET subsidy_applied = ?, effective_cost = ?, net_surplus = ?, updated_at = ?
		WHERE id = ?
	`, subsidy.String(), effective.String(), netSurplus,
		time.Now().UTC().Format(TimestampFormat), rec.ID)
	if err != nil {
		return fmt.Errorf("failed to apply subsidy to cost record: %w", err)
	}

	return nil
}

// ReconcileRevenue records the final fare revenue for a service and computes
// its net surplus against the effective (post-subsidy) cost.
func (r *CostRecordRepository) ReconcileRevenue(ctx context.Context, routeID string, serviceDate time.Time, revenue decimal.Decimal) (model.ServiceCostRecord, error) {
	rec, err := r.GetByService(ctx, routeID, serviceDate)
	if err != nil {
		return model.ServiceCostRecord{}, err
	}

	netSurplus := revenue.Sub(rec.EffectiveCost)

	_, err = r.db.ExecContext(ctx, `
		UPDATE service_cost_record
		SET revenue = ?, net_surplus = ?, updated_at = ?
		WHERE id = ?
	`, revenue.String(), netSurplus.String(),
		time.Now().UTC().Format(TimestampFormat), rec.ID)
	if err != nil {
		return model.ServiceCostRecord{}, fmt.Errorf("failed to reconcile revenue: %w", err)
	}

	rec.Revenue = &revenue
	rec.NetSurplus = &netSurplus
	return rec, nil
}

// PeriodTotals sums revenue, effective costs and net surplus across a
// tenant's cost records in [start, end]. Sums are computed in decimal to
// avoid floating-point drift; records without reconciled revenue contribute
// cost only.
func (r *CostRecordRepository) PeriodTotals(ctx context.Context, tenantID string, start, end time.Time) (revenue, costs, surplus decimal.Decimal, err error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT effective_cost, revenue, net_surplus
		FROM service_cost_record
		WHERE tenant_id = ? AND service_date >= ? AND service_date <= ?
	`, tenantID, start.Format(DateFormat), end.Format(DateFormat))
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("failed to query period cost records: %w", err)
	}
	defer rows.Close()

	revenue, costs, surplus = decimal.Zero, decimal.Zero, decimal.Zero

	for rows.Next() {
		var costStr string
		var revenueStr, surplusStr sql.NullString

		if err := rows.Scan(&costStr, &revenueStr, &surplusStr); err != nil {
			return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("failed to scan period cost record: %w", err)
		}

		cost, err := parseDecimal(costStr)
		if err != nil {
			return decimal.Zero, decimal.Zero, decimal.Zero, err
		}
		costs = costs.Add(cost)

		if revenueStr.Valid {
			rev, err := parseDecimal(revenueStr.String)
			if err != nil {
				return decimal.Zero, decimal.Zero, decimal.Zero, err
			}
			revenue = revenue.Add(rev)
		}
		if surplusStr.Valid {
			net, err := parseDecimal(surplusStr.String)
			if err != nil {
				return decimal.Zero, decimal.Zero, decimal.Zero, err
			}
			surplus = surplus.Add(net)
		}
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, fmt.Errorf("error iterating period cost records: %w", err)
	}

	return revenue, costs, surplus, nil
}

// TenantsWithRecords lists the tenants that operated services in [start, end].
// Used by the dividend scheduler to discover who needs a period run.
func (r *CostRecordRepository) TenantsWithRecords(ctx context.Context, start, end time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT tenant_id
		FROM service_cost_record
		WHERE service_date >= ? AND service_date <= ?
		ORDER BY tenant_id
	`, start.Format(DateFormat), end.Format(DateFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants with cost records: %w", err)
	}
	defer rows.Close()

	var tenants []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tenant id: %w", err)
		}
		tenants = append(tenants, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenants: %w", err)
	}

	return tenants, nil
}

func (r *CostRecordRepository) getByServiceTx(ctx context.Context, tx *sql.Tx, routeID string, serviceDate time.Time) (model.ServiceCostRecord, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT id, tenant_id, route_id, timetable_id, service_date, total_cost,
			subsidy_applied, effective_cost, revenue, net_surplus, breakdown,
			created_at, updated_at
		FROM service_cost_record
		WHERE route_id = ? AND service_date = ?
	`, routeID, serviceDate.Format(DateFormat))

	return scanCostRecord(row)
}

func scanCostRecord(row *sql.Row) (model.ServiceCostRecord, error) {
	var rec model.ServiceCostRecord
	var timetableID, revenueStr, surplusStr, breakdownStr sql.NullString
	var serviceDateStr, totalStr, subsidyStr, effectiveStr string
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&rec.ID,
		&rec.TenantID,
		&rec.RouteID,
		&timetableID,
		&serviceDateStr,
		&totalStr,
		&subsidyStr,
		&effectiveStr,
		&revenueStr,
		&surplusStr,
		&breakdownStr,
		&createdAtStr,
		&updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ServiceCostRecord{}, apperrors.ErrCostRecordNotFound
	}
	if err != nil {
		return model.ServiceCostRecord{}, fmt.Errorf("failed to scan service cost record: %w", err)
	}

	rec.TimetableID = timetableID.String

	if rec.ServiceDate, err = ParseTime(serviceDateStr); err != nil {
		return model.ServiceCostRecord{}, err
	}
	if rec.TotalCost, err = parseDecimal(totalStr); err != nil {
		return model.ServiceCostRecord{}, err
	}
	if rec.SubsidyApplied, err = parseDecimal(subsidyStr); err != nil {
		return model.ServiceCostRecord{}, err
	}
	if rec.EffectiveCost, err = parseDecimal(effectiveStr); err != nil {
		return model.ServiceCostRecord{}, err
	}

	if revenueStr.Valid {
		rev, err := parseDecimal(revenueStr.String)
		if err != nil {
			return model.ServiceCostRecord{}, err
		}
		rec.Revenue = &rev
	}
	if surplusStr.Valid {
		net, err := parseDecimal(surplusStr.String)
		if err != nil {
			return model.ServiceCostRecord{}, err
		}
		rec.NetSurplus = &net
	}
	if breakdownStr.Valid {
		var breakdown model.CostBreakdown
		if err := json.Unmarshal([]byte(breakdownStr.String), &breakdown); err != nil {
			return model.ServiceCostRecord{}, fmt.Errorf("failed to unmarshal cost breakdown: %w", err)
		}
		rec.Breakdown = &breakdown
	}

	if rec.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.ServiceCostRecord{}, err
	}
	if rec.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
		return model.ServiceCostRecord{}, err
	}

	return rec, nil
}
