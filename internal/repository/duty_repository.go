package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/model"
)

// DutyRepository persists driver duty records, the worker patronage source.
type DutyRepository struct {
	db *sql.DB
}

func NewDutyRepository(db *sql.DB) *DutyRepository {
	return &DutyRepository{db: db}
}

// Insert records one driver duty.
func (r *DutyRepository) Insert(ctx context.Context, d *model.DriverDuty) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO driver_duty
			(id, tenant_id, route_id, service_date, driver_id, hours, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		d.ID,
		d.TenantID,
		d.RouteID,
		d.ServiceDate.Format(DateFormat),
		d.DriverID,
		d.Hours,
		d.CreatedAt.Format(TimestampFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to insert driver duty: %w", err)
	}

	return nil
}

// DutiesPerDriver returns each driver's duty count within [start, end].
func (r *DutyRepository) DutiesPerDriver(ctx context.Context, tenantID string, start, end time.Time) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT driver_id, COUNT(*)
		FROM driver_duty
		WHERE tenant_id = ? AND service_date >= ? AND service_date <= ?
		GROUP BY driver_id
	`, tenantID, start.Format(DateFormat), end.Format(DateFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query driver duties: %w", err)
	}
	defer rows.Close()

	duties := make(map[string]int)
	for rows.Next() {
		var driverID string
		var count int
		if err := rows.Scan(&driverID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan driver duties: %w", err)
		}
		duties[driverID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating driver duties: %w", err)
	}

	return duties, nil
}
