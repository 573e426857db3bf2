package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/quizhub/quizhub/internal/api/dto"
	"github.com/quizhub/quizhub/internal/api/middleware"
	"github.com/quizhub/quizhub/internal/database/models"
	"github.com/quizhub/quizhub/internal/membership"
)

type MembershipHandler struct {
	membershipService *membership.Service
}

func NewMembershipHandler(membershipService *membership.Service) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

// Create handles POST /api/v1/memberships
func (h *MembershipHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid company ID"})
		return
	}
	var userID uuid.UUID
	if req.UserID != "" {
		if userID, err = uuid.Parse(req.UserID); err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user ID"})
			return
		}
	}

	application, err := h.membershipService.Apply(r.Context(), middleware.GetCaller(r.Context()), membership.ApplicationInput{
		UserID:    userID,
		CompanyID: companyID,
		Type:      models.ApplicationType(req.Type),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, application)
}

// List handles GET /api/v1/memberships with optional type and company_id
// query parameters. No filter at all lists everything, superuser only.
func (h *MembershipHandler) List(w http.ResponseWriter, r *http.Request) {
	q := membership.Query{
		Type: models.ApplicationType(r.URL.Query().Get("type")),
	}
	if raw := r.URL.Query().Get("company_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid company ID"})
			return
		}
		q.CompanyID = id
	}

	applications, err := h.membershipService.List(r.Context(), middleware.GetCaller(r.Context()), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, applications)
}

// Accept handles POST /api/v1/memberships/:id/accept
func (h *MembershipHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid application ID"})
		return
	}

	member, err := h.membershipService.Accept(r.Context(), middleware.GetCaller(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

// Reject handles DELETE /api/v1/memberships/:id
func (h *MembershipHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid application ID"})
		return
	}

	if err := h.membershipService.Reject(r.Context(), middleware.GetCaller(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Application rejected"})
}

// ListMembers handles GET /api/v1/companies/:id/members
func (h *MembershipHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid company ID"})
		return
	}

	members, err := h.membershipService.ListMembers(r.Context(), middleware.GetCaller(r.Context()), companyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// UpdateRole handles PUT /api/v1/companies/:id/members/:userID/role
func (h *MembershipHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid company ID"})
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user ID"})
		return
	}

	var req dto.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	member, err := h.membershipService.UpdateRole(r.Context(), middleware.GetCaller(r.Context()),
		companyID, userID, models.Role(req.Role))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

// RemoveMember handles DELETE /api/v1/members/:id
func (h *MembershipHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid member ID"})
		return
	}

	if err := h.membershipService.RemoveMember(r.Context(), middleware.GetCaller(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Member removed"})
}
