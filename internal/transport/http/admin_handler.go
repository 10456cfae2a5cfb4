package http

import (
	"net/http"

	"classctf-service/internal/domain"
)

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	profile, _ := profileFrom(r.Context())
	if !profile.Role.CanViewAdminDashboard() {
		writeError(w, a.log, domain.ErrForbidden)
		return
	}

	users, err := a.admin.ListUsers(r.Context())
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=teacher admin super_admin"`
}

func (a *API) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	profile, _ := profileFrom(r.Context())
	if !profile.Role.CanChangeRoles() {
		writeError(w, a.log, domain.ErrForbidden)
		return
	}

	var req changeRoleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, a.log, err)
		return
	}

	err := a.admin.ChangeRole(r.Context(), profile.ID, r.PathValue("id"), domain.Role(req.Role))
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (a *API) handlePlatformStats(w http.ResponseWriter, r *http.Request) {
	profile, _ := profileFrom(r.Context())
	if !profile.Role.CanViewAdminDashboard() {
		writeError(w, a.log, domain.ErrForbidden)
		return
	}

	stats, err := a.admin.PlatformStats(r.Context())
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
