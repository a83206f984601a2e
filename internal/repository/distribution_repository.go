package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/apperrors"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/model"
)

// DistributionRepository persists dividend distribution headers and their
// per-member payout rows.
type DistributionRepository struct {
	db *sql.DB
}

func NewDistributionRepository(db *sql.DB) *DistributionRepository {
	return &DistributionRepository{db: db}
}

// ExistsForPeriod reports whether a non-cancelled distribution already exists
// for the exact (tenant, period start, period end) tuple.
func (r *DistributionRepository) ExistsForPeriod(ctx context.Context, tenantID string, periodStart, periodEnd time.Time) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM dividend_distribution
		WHERE tenant_id = ? AND period_start = ? AND period_end = ? AND status != ?
	`, tenantID, periodStart.Format(DateFormat), periodEnd.Format(DateFormat),
		model.DistributionCancelled).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check for existing distribution: %w", err)
	}
	return count > 0, nil
}

// Save persists a calculated distribution and all member dividend rows in a
// single transaction. Returns the distribution ID.
func (r *DistributionRepository) Save(ctx context.Context, calc *model.DividendCalculationResult) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin distribution transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	dist := &calc.Distribution
	if dist.ID == "" {
		dist.ID = uuid.New().String()
	}
	if dist.CreatedAt.IsZero() {
		dist.CreatedAt = time.Now().UTC()
	}
	dist.Status = model.DistributionCalculated

	_, err = tx.ExecContext(ctx, `
		INSERT INTO dividend_distribution
			(id, tenant_id, period_start, period_end, cooperative_model,
			 total_revenue, total_costs, gross_surplus,
			 reserves_percent, business_percent, dividend_percent,
			 reserves_amount, business_costs_amount, dividend_pool,
			 eligible_members, total_patronage, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		dist.ID,
		dist.TenantID,
		dist.PeriodStart.Format(DateFormat),
		dist.PeriodEnd.Format(DateFormat),
		dist.CooperativeModel,
		dist.TotalRevenue.String(),
		dist.TotalCosts.String(),
		dist.GrossSurplus.String(),
		dist.ReservesPercent,
		dist.BusinessPercent,
		dist.DividendPercent,
		dist.ReservesAmount.String(),
		dist.BusinessCostsAmount.String(),
		dist.DividendPool.String(),
		dist.EligibleMembers,
		dist.TotalPatronage,
		dist.Status,
		dist.CreatedAt.Format(TimestampFormat),
	)
	if err != nil {
		// The period existence check runs before this transaction; a unique
		// violation here means a live distribution already holds the period.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return "", apperrors.ErrDistributionExists
		}
		return "", fmt.Errorf("failed to insert dividend distribution: %w", err)
	}

	for i := range calc.Dividends {
		div := &calc.Dividends[i]
		if div.ID == "" {
			div.ID = uuid.New().String()
		}
		div.DistributionID = dist.ID
		div.Status = model.DividendPending

		_, err = tx.ExecContext(ctx, `
			INSERT INTO member_dividend
				(id, distribution_id, member_id, patronage_value, patronage_percent,
				 dividend_amount, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			div.ID,
			div.DistributionID,
			div.MemberID,
			div.PatronageValue,
			div.PatronagePercent,
			div.DividendAmount.String(),
			div.Status,
			dist.CreatedAt.Format(TimestampFormat),
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert member dividend: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit distribution: %w", err)
	}

	return dist.ID, nil
}

// Get retrieves a distribution header with its member dividend rows.
func (r *DistributionRepository) Get(ctx context.Context, distributionID string) (model.DividendDistribution, []model.MemberDividend, error) {
	dist, err := r.getHeader(ctx, distributionID)
	if err != nil {
		return model.DividendDistribution{}, nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, distribution_id, member_id, patronage_value, patronage_percent,
			dividend_amount, status, paid_date, created_at
		FROM member_dividend
		WHERE distribution_id = ?
		ORDER BY created_at ASC, id ASC
	`, distributionID)
	if err != nil {
		return model.DividendDistribution{}, nil, fmt.Errorf("failed to query member dividends: %w", err)
	}
	defer rows.Close()

	dividends := []model.MemberDividend{}
	for rows.Next() {
		var d model.MemberDividend
		var amountStr, createdAtStr string
		var paidDateStr sql.NullString

		err := rows.Scan(
			&d.ID,
			&d.DistributionID,
			&d.MemberID,
			&d.PatronageValue,
			&d.PatronagePercent,
			&amountStr,
			&d.Status,
			&paidDateStr,
			&createdAtStr,
		)
		if err != nil {
			return model.DividendDistribution{}, nil, fmt.Errorf("failed to scan member dividend: %w", err)
		}

		if d.DividendAmount, err = parseDecimal(amountStr); err != nil {
			return model.DividendDistribution{}, nil, err
		}
		if d.CreatedAt, err = ParseTime(createdAtStr); err != nil {
			return model.DividendDistribution{}, nil, err
		}
		if paidDateStr.Valid {
			paidDate, err := ParseTime(paidDateStr.String)
			if err != nil {
				return model.DividendDistribution{}, nil, err
			}
			d.PaidDate = &paidDate
		}

		dividends = append(dividends, d)
	}
	if err := rows.Err(); err != nil {
		return model.DividendDistribution{}, nil, fmt.Errorf("error iterating member dividends: %w", err)
	}

	return dist, dividends, nil
}

// List retrieves all distributions for a tenant, newest period first.
func (r *DistributionRepository) List(ctx context.Context, tenantID string) ([]model.DividendDistribution, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+distributionColumns+`
		FROM dividend_distribution
		WHERE tenant_id = ?
		ORDER BY period_start DESC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dividend distributions: %w", err)
	}
	defer rows.Close()

	distributions := []model.DividendDistribution{}
	for rows.Next() {
		dist, err := scanDistribution(rows)
		if err != nil {
			return nil, err
		}
		distributions = append(distributions, dist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dividend distributions: %w", err)
	}

	return distributions, nil
}

// MarkPaid transitions a distribution and every pending member dividend to
// paid in one transaction. Partial payment is not a supported state: the bulk
// update covers all rows or none.
func (r *DistributionRepository) MarkPaid(ctx context.Context, distributionID, paymentMethod string) error {
	dist, err := r.getHeader(ctx, distributionID)
	if err != nil {
		return err
	}
	if dist.Status == model.DistributionDistributed {
		return apperrors.ErrDistributionAlreadyPaid
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin payment transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		UPDATE dividend_distribution
		SET status = ?, payment_method = ?, paid_at = ?
		WHERE id = ?
	`, model.DistributionDistributed, paymentMethod, now.Format(TimestampFormat), distributionID)
	if err != nil {
		return fmt.Errorf("failed to mark distribution paid: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE member_dividend
		SET status = ?, paid_date = ?
		WHERE distribution_id = ? AND status = ?
	`, model.DividendPaid, now.Format(DateFormat), distributionID, model.DividendPending)
	if err != nil {
		return fmt.Errorf("failed to mark member dividends paid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment: %w", err)
	}

	return nil
}

// Cancel voids a distribution that has not been distributed yet.
func (r *DistributionRepository) Cancel(ctx context.Context, distributionID string) error {
	dist, err := r.getHeader(ctx, distributionID)
	if err != nil {
		return err
	}
	if dist.Status == model.DistributionDistributed {
		return apperrors.ErrDistributionAlreadyPaid
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE dividend_distribution
		SET status = ?
		WHERE id = ?
	`, model.DistributionCancelled, distributionID)
	if err != nil {
		return fmt.Errorf("failed to cancel distribution: %w", err)
	}

	return nil
}

const distributionColumns = `id, tenant_id, period_start, period_end, cooperative_model,
		total_revenue, total_costs, gross_surplus,
		reserves_percent, business_percent, dividend_percent,
		reserves_amount, business_costs_amount, dividend_pool,
		eligible_members, total_patronage, status, payment_method, paid_at, created_at`

func (r *DistributionRepository) getHeader(ctx context.Context, distributionID string) (model.DividendDistribution, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+distributionColumns+`
		FROM dividend_distribution
		WHERE id = ?
	`, distributionID)
	if err != nil {
		return model.DividendDistribution{}, fmt.Errorf("failed to query dividend distribution: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return model.DividendDistribution{}, fmt.Errorf("error reading dividend distribution: %w", err)
		}
		return model.DividendDistribution{}, apperrors.ErrDistributionNotFound
	}

	return scanDistribution(rows)
}

func scanDistribution(rows *sql.Rows) (model.DividendDistribution, error) {
	var d model.DividendDistribution
	var periodStartStr, periodEndStr, createdAtStr string
	var revenueStr, costsStr, surplusStr, reservesStr, businessStr, poolStr string
	var paymentMethod, paidAtStr sql.NullString

	err := rows.Scan(
		&d.ID,
		&d.TenantID,
		&periodStartStr,
		&periodEndStr,
		&d.CooperativeModel,
		&revenueStr,
		&costsStr,
		&surplusStr,
		&d.ReservesPercent,
		&d.BusinessPercent,
		&d.DividendPercent,
		&reservesStr,
		&businessStr,
		&poolStr,
		&d.EligibleMembers,
		&d.TotalPatronage,
		&d.Status,
		&paymentMethod,
		&paidAtStr,
		&createdAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DividendDistribution{}, apperrors.ErrDistributionNotFound
	}
	if err != nil {
		return model.DividendDistribution{}, fmt.Errorf("failed to scan dividend distribution: %w", err)
	}

	d.PaymentMethod = paymentMethod.String

	if d.PeriodStart, err = ParseTime(periodStartStr); err != nil {
		return model.DividendDistribution{}, err
	}
	if d.PeriodEnd, err = ParseTime(periodEndStr); err != nil {
		return model.DividendDistribution{}, err
	}
	if d.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.DividendDistribution{}, err
	}
	if paidAtStr.Valid {
		paidAt, err := ParseTime(paidAtStr.String)
		if err != nil {
			return model.DividendDistribution{}, err
		}
		d.PaidAt = &paidAt
	}

	if d.TotalRevenue, err = parseDecimal(revenueStr); err != nil {
		return model.DividendDistribution{}, err
	}
	if d.TotalCosts, err = parseDecimal(costsStr); err != nil {
		return model.DividendDistribution{}, err
	}
	if d.GrossSurplus, err = parseDecimal(surplusStr); err != nil {
		return model.DividendDistribution{}, err
	}
	if d.ReservesAmount, err = parseDecimal(reservesStr); err != nil {
		return model.DividendDistribution{}, err
	}
	if d.BusinessCostsAmount, err = parseDecimal(businessStr); err != nil {
		return model.DividendDistribution{}, err
	}
	if d.DividendPool, err = parseDecimal(poolStr); err != nil {
		return model.DividendDistribution{}, err
	}

	return d, nil
}
