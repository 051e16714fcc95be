package httpapi

import (
	"net/http"
	"strings"
	"time"

	"leadsyncflow.app/internal/obs"
)

type approveRequest struct {
	Role string `json:"role"`
}

type pendingView struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Sex        string    `json:"sex"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (a *API) handlePendingRequests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, ok := a.requireSuperAdmin(w, r); !ok {
		return
	}

	pending, err := a.svc.ListPending(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	requests := make([]pendingView, 0, len(pending))
	for _, p := range pending {
		requests = append(requests, pendingView{
			ID:         p.ID,
			Name:       p.Name,
			Email:      p.Email,
			Sex:        p.Sex,
			Department: p.Department,
			CreatedAt:  p.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"requests": requests,
	})
}

// handleRequestDecision routes /api/admin/requests/{id}/approve and
// /api/admin/requests/{id}/reject.
func (a *API) handleRequestDecision(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/requests/")
	id, action, ok := strings.Cut(rest, "/")
	if !ok || id == "" || strings.Contains(action, "/") {
		http.NotFound(w, r)
		return
	}

	switch action {
	case "approve":
		if r.Method != http.MethodPatch {
			methodNotAllowed(w, r, http.MethodPatch)
			return
		}
		a.approveRequest(w, r, id)
	case "reject":
		if r.Method != http.MethodDelete {
			methodNotAllowed(w, r, http.MethodDelete)
			return
		}
		a.rejectRequest(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (a *API) approveRequest(w http.ResponseWriter, r *http.Request, id string) {
	admin, ok := a.requireSuperAdmin(w, r)
	if !ok {
		return
	}

	var req approveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	account, err := a.svc.Approve(r.Context(), id, req.Role, admin.ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	obs.ApprovalsTotal.WithLabelValues("approved").Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User approved",
		"userId":  account.ID,
		"role":    account.Role,
	})
}

func (a *API) rejectRequest(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := a.requireSuperAdmin(w, r); !ok {
		return
	}

	if err := a.svc.Reject(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	obs.ApprovalsTotal.WithLabelValues("rejected").Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User rejected and deleted",
	})
}

// handleUserPromotion routes /api/admin/users/{id}/make-super-admin.
func (a *API) handleUserPromotion(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/users/")
	id, action, ok := strings.Cut(rest, "/")
	if !ok || id == "" || action != "make-super-admin" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPatch {
		methodNotAllowed(w, r, http.MethodPatch)
		return
	}
	if _, ok := a.requireSuperAdmin(w, r); !ok {
		return
	}

	account, err := a.svc.Promote(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	obs.ApprovalsTotal.WithLabelValues("promoted").Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User promoted to super admin",
		"user":    account.Public(),
	})
}
