package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api/request"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api/response"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/apperrors"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/model"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/service"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/validation"
)

// MemberHandler handles HTTP requests for cooperative membership endpoints.
type MemberHandler struct {
	memberService *service.MemberService
}

// NewMemberHandler creates a new MemberHandler with the provided service dependency.
func NewMemberHandler(memberService *service.MemberService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
	}
}

// CreateMember handles POST requests to register a cooperative membership.
//
// Endpoint: POST /api/member
// Request Body: CreateMemberRequest
// Response: 201 Created with CooperativeMember
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if creation fails
func (h *MemberHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateMemberRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateMember(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	member := model.CooperativeMember{
		TenantID:             req.TenantID,
		CustomerID:           req.CustomerID,
		DriverID:             req.DriverID,
		MembershipType:       req.MembershipType,
		VotingRights:         req.VotingRights,
		ShareCapitalInvested: decimal.NewFromFloat(req.ShareCapitalInvested),
		DividendEligible:     req.DividendEligible,
		PayoutReference:      req.PayoutReference,
	}

	if err := h.memberService.RegisterMember(r.Context(), &member); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to register member", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, member)
}

// ListMembers handles GET requests to retrieve a tenant's memberships.
//
// Endpoint: GET /api/member?tenantId=...
// Response: 200 OK with array of CooperativeMember
// Error: 400 Bad Request if tenantId is missing
// Error: 500 Internal Server Error if retrieval fails
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenantId")
	if tenantID == "" {
		response.RespondError(w, http.StatusBadRequest, "tenantId is required", "")
		return
	}

	members, err := h.memberService.ListMembers(r.Context(), tenantID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveMembers.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, members)
}

// GetMember handles GET requests to retrieve a single membership by ID.
//
// Endpoint: GET /api/member/{uuid}
// Response: 200 OK with CooperativeMember
// Error: 400 Bad Request if member ID is invalid (validated by middleware)
// Error: 404 Not Found if member not found
// Error: 500 Internal Server Error if retrieval fails
func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "uuid")

	member, err := h.memberService.GetMember(r.Context(), memberID)
	if err != nil {
		if errors.Is(err, apperrors.ErrMemberNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrMemberNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveMembers.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, member)
}

// DeactivateMember handles DELETE requests to soft-deactivate a membership.
// The membership row is kept because dividend history references it.
//
// Endpoint: DELETE /api/member/{uuid}
// Response: 204 No Content
// Error: 400 Bad Request if member ID is invalid (validated by middleware)
// Error: 404 Not Found if member not found
// Error: 500 Internal Server Error if deactivation fails
func (h *MemberHandler) DeactivateMember(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "uuid")

	if err := h.memberService.DeactivateMember(r.Context(), memberID); err != nil {
		if errors.Is(err, apperrors.ErrMemberNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrMemberNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to deactivate member", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
