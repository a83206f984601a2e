package service

import (
	"context"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/apperrors"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/model"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/repository"
)

// MemberService manages cooperative memberships.
type MemberService struct {
	memberRepo *repository.MemberRepository
}

func NewMemberService(memberRepo *repository.MemberRepository) *MemberService {
	return &MemberService{memberRepo: memberRepo}
}

// RegisterMember creates a new membership. A member must reference a customer,
// a driver, or both; an unknown membership type defaults to standard.
func (s *MemberService) RegisterMember(ctx context.Context, m *model.CooperativeMember) error {
	if m.CustomerID == "" && m.DriverID == "" {
		return apperrors.ErrMissingRequiredField
	}
	switch m.MembershipType {
	case model.MembershipFounding, model.MembershipStandard, model.MembershipAssociate:
	default:
		m.MembershipType = model.MembershipStandard
	}
	if m.ShareCapitalInvested.IsNegative() {
		return apperrors.ErrNegativeAmount
	}
	m.IsActive = true
	return s.memberRepo.Insert(ctx, m)
}

// GetMember retrieves one membership by ID.
func (s *MemberService) GetMember(ctx context.Context, id string) (model.CooperativeMember, error) {
	return s.memberRepo.GetByID(ctx, id)
}

// ListMembers retrieves all of a tenant's memberships.
func (s *MemberService) ListMembers(ctx context.Context, tenantID string) ([]model.CooperativeMember, error) {
	return s.memberRepo.List(ctx, tenantID)
}

// DeactivateMember soft-deactivates a membership, setting its end date. The
// row is kept because dividend history references it.
func (s *MemberService) DeactivateMember(ctx context.Context, id string) error {
	return s.memberRepo.Deactivate(ctx, id)
}
