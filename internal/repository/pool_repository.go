package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/apperrors"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/model"
)

// PoolRepository persists route surplus pools and their append-only
// transaction ledger. Every balance mutation goes through WithLockedPool so
// the read-modify-write and the ledger append commit or roll back together.
type PoolRepository struct {
	db *sql.DB

	// locks holds one mutex per route. SQLite has no SELECT ... FOR UPDATE;
	// the per-route mutex gives the same exclusive read-modify-write scope,
	// held until the transaction commits or rolls back. Pools for different
	// routes mutate concurrently.
	locks sync.Map
}

func NewPoolRepository(db *sql.DB) *PoolRepository {
	return &PoolRepository{db: db}
}

func (r *PoolRepository) routeLock(routeID string) *sync.Mutex {
	mu, _ := r.locks.LoadOrStore(routeID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

const poolColumns = `id, tenant_id, route_id, accumulated_surplus, available_for_subsidy,
		reserved_for_reserves, reserved_for_business, total_distributed_dividends,
		lifetime_revenue, lifetime_cost, lifetime_surplus,
		services_operated, profitable_services, subsidized_services, created_at, updated_at`

// GetPool retrieves the surplus pool for a route.
// Returns apperrors.ErrPoolNotFound if the route has never been initialized.
func (r *PoolRepository) GetPool(ctx context.Context, routeID string) (model.SurplusPool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+poolColumns+`
		FROM surplus_pool
		WHERE route_id = ?
	`, routeID)

	return scanPool(row)
}

// InitializePool creates the surplus pool for a route if it does not exist.
// Re-initializing an existing pool is a no-op that only refreshes updated_at.
func (r *PoolRepository) InitializePool(ctx context.Context, routeID, tenantID string) (model.SurplusPool, error) {
	now := time.Now().UTC().Format(TimestampFormat)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO surplus_pool (id, tenant_id, route_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(route_id) DO UPDATE SET updated_at = excluded.updated_at
	`, uuid.New().String(), tenantID, routeID, now, now)
	if err != nil {
		return model.SurplusPool{}, fmt.Errorf("failed to initialize surplus pool: %w", err)
	}

	return r.GetPool(ctx, routeID)
}

// WithLockedPool runs fn with exclusive access to a route's pool. The pool is
// re-read inside the transaction after the lock is taken, so fn always sees
// the latest committed balances. fn's mutations to the pool struct are
// persisted on success; any error rolls everything back and the ledger is
// left exactly as it was.
//
// Callers must not invoke external systems inside fn; provider lookups happen
// before the pool transaction opens.
func (r *PoolRepository) WithLockedPool(ctx context.Context, routeID string, fn func(tx *sql.Tx, pool *model.SurplusPool) error) error {
	mu := r.routeLock(routeID)
	mu.Lock()
	defer mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin pool transaction: %w", err)
	}

	pool, err := r.getPoolTx(ctx, tx, routeID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := fn(tx, &pool); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := r.updateBalances(ctx, tx, &pool); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pool transaction: %w", err)
	}

	return nil
}

func (r *PoolRepository) getPoolTx(ctx context.Context, tx *sql.Tx, routeID string) (model.SurplusPool, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+poolColumns+`
		FROM surplus_pool
		WHERE route_id = ?
	`, routeID)

	return scanPool(row)
}

// updateBalances writes back every mutable pool field inside the locked
// transaction.
func (r *PoolRepository) updateBalances(ctx context.Context, tx *sql.Tx, pool *model.SurplusPool) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE surplus_pool
		SET accumulated_surplus = ?,
			available_for_subsidy = ?,
			reserved_for_reserves = ?,
			reserved_for_business = ?,
			total_distributed_dividends = ?,
			lifetime_revenue = ?,
			lifetime_cost = ?,
			lifetime_surplus = ?,
			services_operated = ?,
			profitable_services = ?,
			subsidized_services = ?,
			updated_at = ?
		WHERE id = ?
	`,
		pool.AccumulatedSurplus.String(),
		pool.AvailableForSubsidy.String(),
		pool.ReservedForReserves.String(),
		pool.ReservedForBusiness.String(),
		pool.TotalDistributedDividends.String(),
		pool.LifetimeRevenue.String(),
		pool.LifetimeCost.String(),
		pool.LifetimeSurplus.String(),
		pool.ServicesOperated,
		pool.ProfitableServices,
		pool.SubsidizedServices,
		time.Now().UTC().Format(TimestampFormat),
		pool.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update surplus pool balances: %w", err)
	}
	return nil
}

// RecordTransaction appends a ledger entry inside the caller's locked pool
// transaction. It is called only by the surplus allocator and the subsidy
// calculator; external callers never append ledger rows directly.
func (r *PoolRepository) RecordTransaction(ctx context.Context, tx *sql.Tx, txn *model.SurplusTransaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO surplus_transaction
			(id, pool_id, tenant_id, route_id, timetable_id, service_date, type,
			 amount, pool_balance_before, pool_balance_after, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		txn.ID,
		txn.PoolID,
		txn.TenantID,
		txn.RouteID,
		nullString(txn.TimetableID),
		txn.ServiceDate.Format(DateFormat),
		txn.Type,
		txn.Amount.String(),
		txn.PoolBalanceBefore.String(),
		txn.PoolBalanceAfter.String(),
		nullString(txn.Description),
		txn.CreatedAt.Format(TimestampFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to record surplus transaction: %w", err)
	}
	return nil
}

// ListTransactions returns a route's ledger entries in creation order, oldest
// first. Replaying them from a zero balance reconstructs the pool.
func (r *PoolRepository) ListTransactions(ctx context.Context, routeID string) ([]model.SurplusTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pool_id, tenant_id, route_id, timetable_id, service_date, type,
			amount, pool_balance_before, pool_balance_after, description, created_at
		FROM surplus_transaction
		WHERE route_id = ?
		ORDER BY created_at ASC
	`, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query surplus transactions: %w", err)
	}
	defer rows.Close()

	transactions := []model.SurplusTransaction{}
	for rows.Next() {
		var t model.SurplusTransaction
		var timetableID, description sql.NullString
		var serviceDateStr, amountStr, beforeStr, afterStr, createdAtStr string

		err := rows.Scan(
			&t.ID,
			&t.PoolID,
			&t.TenantID,
			&t.RouteID,
			&timetableID,
			&serviceDateStr,
			&t.Type,
			&amountStr,
			&beforeStr,
			&afterStr,
			&description,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan surplus transaction: %w", err)
		}

		t.TimetableID = timetableID.String
		t.Description = description.String

		if t.ServiceDate, err = ParseTime(serviceDateStr); err != nil {
			return nil, err
		}
		if t.CreatedAt, err = ParseTime(createdAtStr); err != nil {
			return nil, err
		}
		if t.Amount, err = parseDecimal(amountStr); err != nil {
			return nil, err
		}
		if t.PoolBalanceBefore, err = parseDecimal(beforeStr); err != nil {
			return nil, err
		}
		if t.PoolBalanceAfter, err = parseDecimal(afterStr); err != nil {
			return nil, err
		}

		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating surplus transactions: %w", err)
	}

	return transactions, nil
}

// scanPool reads one surplus_pool row.
func scanPool(row *sql.Row) (model.SurplusPool, error) {
	var p model.SurplusPool
	var accumulated, available, reserves, business, dividends string
	var revenue, cost, surplus string
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.RouteID,
		&accumulated,
		&available,
		&reserves,
		&business,
		&dividends,
		&revenue,
		&cost,
		&surplus,
		&p.ServicesOperated,
		&p.ProfitableServices,
		&p.SubsidizedServices,
		&createdAtStr,
		&updatedAtStr,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SurplusPool{}, apperrors.ErrPoolNotFound
	}
	if err != nil {
		return model.SurplusPool{}, fmt.Errorf("failed to scan surplus pool: %w", err)
	}

	for _, field := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&p.AccumulatedSurplus, accumulated},
		{&p.AvailableForSubsidy, available},
		{&p.ReservedForReserves, reserves},
		{&p.ReservedForBusiness, business},
		{&p.TotalDistributedDividends, dividends},
		{&p.LifetimeRevenue, revenue},
		{&p.LifetimeCost, cost},
		{&p.LifetimeSurplus, surplus},
	} {
		if *field.dst, err = parseDecimal(field.src); err != nil {
			return model.SurplusPool{}, err
		}
	}

	if p.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.SurplusPool{}, err
	}
	if p.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
		return model.SurplusPool{}, err
	}

	return p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
