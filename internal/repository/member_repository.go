package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/apperrors"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/model"
)

// MemberRepository persists cooperative memberships. Payout references are
// encrypted at rest with a fernet key when one is configured.
type MemberRepository struct {
	db  *sql.DB
	key *fernet.Key
}

// NewMemberRepository creates a MemberRepository. fernetKey may be empty, in
// which case payout references are stored as given.
func NewMemberRepository(db *sql.DB, fernetKey string) (*MemberRepository, error) {
	repo := &MemberRepository{db: db}

	if fernetKey != "" {
		key, err := fernet.DecodeKey(fernetKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode fernet key: %w", err)
		}
		repo.key = key
	}

	return repo, nil
}

// Insert stores a new cooperative member.
func (r *MemberRepository) Insert(ctx context.Context, m *model.CooperativeMember) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}

	payoutRef, err := r.encrypt(m.PayoutReference)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO cooperative_member
			(id, tenant_id, customer_id, driver_id, membership_type, voting_rights,
			 share_capital_invested, dividend_eligible, is_active, payout_reference, joined_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		m.ID,
		m.TenantID,
		nullString(m.CustomerID),
		nullString(m.DriverID),
		m.MembershipType,
		m.VotingRights,
		m.ShareCapitalInvested.String(),
		m.DividendEligible,
		m.IsActive,
		nullString(payoutRef),
		m.JoinedAt.Format(TimestampFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to insert cooperative member: %w", err)
	}

	return nil
}

const memberColumns = `id, tenant_id, customer_id, driver_id, membership_type, voting_rights,
		share_capital_invested, dividend_eligible, is_active, payout_reference, joined_at, left_at`

// GetByID retrieves a member by ID.
func (r *MemberRepository) GetByID(ctx context.Context, id string) (model.CooperativeMember, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+memberColumns+`
		FROM cooperative_member
		WHERE id = ?
	`, id)
	if err != nil {
		return model.CooperativeMember{}, fmt.Errorf("failed to query cooperative member: %w", err)
	}
	defer rows.Close()

	members, err := r.scanMembers(rows)
	if err != nil {
		return model.CooperativeMember{}, err
	}
	if len(members) == 0 {
		return model.CooperativeMember{}, apperrors.ErrMemberNotFound
	}

	return members[0], nil
}

// List retrieves all members for a tenant, active and inactive.
func (r *MemberRepository) List(ctx context.Context, tenantID string) ([]model.CooperativeMember, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+memberColumns+`
		FROM cooperative_member
		WHERE tenant_id = ?
		ORDER BY joined_at ASC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cooperative members: %w", err)
	}
	defer rows.Close()

	return r.scanMembers(rows)
}

// IsActiveMember reports whether the customer holds an active membership with
// the tenant. Used for member/non-member fare resolution.
func (r *MemberRepository) IsActiveMember(ctx context.Context, tenantID, customerID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM cooperative_member
		WHERE tenant_id = ? AND customer_id = ? AND is_active = TRUE
	`, tenantID, customerID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return count > 0, nil
}

// ListEligiblePassengers returns the tenant's active, dividend-eligible
// members that reference a customer.
func (r *MemberRepository) ListEligiblePassengers(ctx context.Context, tenantID string) ([]model.CooperativeMember, error) {
	return r.listEligible(ctx, tenantID, "customer_id")
}

// ListEligibleDrivers returns the tenant's active, dividend-eligible members
// that reference a driver.
func (r *MemberRepository) ListEligibleDrivers(ctx context.Context, tenantID string) ([]model.CooperativeMember, error) {
	return r.listEligible(ctx, tenantID, "driver_id")
}

func (r *MemberRepository) listEligible(ctx context.Context, tenantID, refColumn string) ([]model.CooperativeMember, error) {
	// refColumn is one of two hardcoded column names, never user input.
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+memberColumns+`
		FROM cooperative_member
		WHERE tenant_id = ? AND is_active = TRUE AND dividend_eligible = TRUE
			AND `+refColumn+` IS NOT NULL
		ORDER BY joined_at ASC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible members: %w", err)
	}
	defer rows.Close()

	return r.scanMembers(rows)
}

// Deactivate end-dates a membership. The row is kept because dividend history
// references it.
func (r *MemberRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE cooperative_member
		SET is_active = FALSE, left_at = ?
		WHERE id = ? AND is_active = TRUE
	`, time.Now().UTC().Format(TimestampFormat), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate cooperative member: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deactivation result: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrMemberNotFound
	}

	return nil
}

func (r *MemberRepository) scanMembers(rows *sql.Rows) ([]model.CooperativeMember, error) {
	members := []model.CooperativeMember{}

	for rows.Next() {
		var m model.CooperativeMember
		var customerID, driverID, payoutRef, leftAtStr sql.NullString
		var shareCapitalStr, joinedAtStr string

		err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&customerID,
			&driverID,
			&m.MembershipType,
			&m.VotingRights,
			&shareCapitalStr,
			&m.DividendEligible,
			&m.IsActive,
			&payoutRef,
			&joinedAtStr,
			&leftAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cooperative member: %w", err)
		}

		m.CustomerID = customerID.String
		m.DriverID = driverID.String

		if m.ShareCapitalInvested, err = parseDecimal(shareCapitalStr); err != nil {
			return nil, err
		}
		if m.JoinedAt, err = ParseTime(joinedAtStr); err != nil {
			return nil, err
		}
		if leftAtStr.Valid {
			leftAt, err := ParseTime(leftAtStr.String)
			if err != nil {
				return nil, err
			}
			m.LeftAt = &leftAt
		}

		if payoutRef.Valid {
			m.PayoutReference, err = r.decrypt(payoutRef.String)
			if err != nil {
				return nil, err
			}
		}

		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cooperative members: %w", err)
	}

	return members, nil
}

func (r *MemberRepository) encrypt(plaintext string) (string, error) {
	if r.key == nil || plaintext == "" {
		return plaintext, nil
	}
	token, err := fernet.EncryptAndSign([]byte(plaintext), r.key)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt payout reference: %w", err)
	}
	return string(token), nil
}

func (r *MemberRepository) decrypt(stored string) (string, error) {
	if r.key == nil || stored == "" {
		return stored, nil
	}
	plaintext := fernet.VerifyAndDecrypt([]byte(stored), 0, []*fernet.Key{r.key})
	if plaintext == nil {
		return "", errors.New("failed to decrypt payout reference")
	}
	return string(plaintext), nil
}
