package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/model"
)

// BookingRepository persists passenger bookings recorded by the operations
// layer. Booking counts drive dynamic pricing; per-customer trip counts are
// the passenger patronage measure.
type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Insert records one booking.
func (r *BookingRepository) Insert(ctx context.Context, b *model.ServiceBooking) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.BookedAt.IsZero() {
		b.BookedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO service_booking
			(id, tenant_id, route_id, timetable_id, service_date, customer_id,
			 fare_paid, is_member_fare, booked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID,
		b.TenantID,
		b.RouteID,
		nullString(b.TimetableID),
		b.ServiceDate.Format(DateFormat),
		b.CustomerID,
		b.FarePaid.String(),
		b.IsMemberFare,
		b.BookedAt.Format(TimestampFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to insert service booking: %w", err)
	}

	return nil
}

// CountForService returns the current booking count for one service instance.
func (r *BookingRepository) CountForService(ctx context.Context, tenantID, routeID string, serviceDate time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM service_booking
		WHERE tenant_id = ? AND route_id = ? AND service_date = ?
	`, tenantID, routeID, serviceDate.Format(DateFormat)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count service bookings: %w", err)
	}
	return count, nil
}

// TripsPerCustomer returns each customer's trip count within [start, end].
func (r *BookingRepository) TripsPerCustomer(ctx context.Context, tenantID string, start, end time.Time) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT customer_id, COUNT(*)
		FROM service_booking
		WHERE tenant_id = ? AND service_date >= ? AND service_date <= ?
		GROUP BY customer_id
	`, tenantID, start.Format(DateFormat), end.Format(DateFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query customer trips: %w", err)
	}
	defer rows.Close()

	trips := make(map[string]int)
	for rows.Next() {
		var customerID string
		var count int
		if err := rows.Scan(&customerID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan customer trips: %w", err)
		}
		trips[customerID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customer trips: %w", err)
	}

	return trips, nil
}
