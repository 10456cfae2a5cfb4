package http

import (
	"net/http"
	"strconv"

	"classctf-service/internal/app"
	"classctf-service/internal/domain"
)

type publishRequest struct {
	GameID      string   `json:"game_id" validate:"required,uuid4"`
	Title       string   `json:"title" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=1000"`
	Subject     string   `json:"subject" validate:"max=50"`
	GradeLevel  string   `json:"grade_level" validate:"max=30"`
	Tags        []string `json:"tags" validate:"max=10"`
}

func (a *API) handlePublishToLibrary(w http.ResponseWriter, r *http.Request) {
	profile, _ := profileFrom(r.Context())

	var req publishRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, a.log, err)
		return
	}

	item, err := a.library.Publish(r.Context(), profile.ID, app.PublishParams{
		GameID:      req.GameID,
		Title:       req.Title,
		Description: req.Description,
		Subject:     req.Subject,
		GradeLevel:  req.GradeLevel,
		Tags:        req.Tags,
	})
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (a *API) handleListLibrary(w http.ResponseWriter, r *http.Request) {
	profile, _ := profileFrom(r.Context())
	q := r.URL.Query()

	filter := app.LibraryFilter{
		Subject:    q.Get("subject"),
		GradeLevel: q.Get("grade_level"),
		Search:     q.Get("search"),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	// Teachers browse approved items only. Reviewers may ask for any status.
	status := domain.ReviewStatus(q.Get("status"))
	if status == "" || !profile.Role.CanApproveLibrary() {
		status = domain.ReviewStatusApproved
	}
	filter.Status = status

	items, err := a.library.List(r.Context(), filter)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleGetLibraryItem(w http.ResponseWriter, r *http.Request) {
	item, err := a.library.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type reviewRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Notes  string `json:"notes" validate:"max=1000"`
}

func (a *API) handleReviewLibraryItem(w http.ResponseWriter, r *http.Request) {
	profile, _ := profileFrom(r.Context())
	if !profile.Role.CanApproveLibrary() {
		writeError(w, a.log, domain.ErrForbidden)
		return
	}

	var req reviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, a.log, err)
		return
	}

	err := a.library.Review(r.Context(), profile.ID, r.PathValue("id"), domain.ReviewStatus(req.Status), req.Notes)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (a *API) handleDeleteLibraryItem(w http.ResponseWriter, r *http.Request) {
	profile, _ := profileFrom(r.Context())
	if !profile.Role.CanDeleteLibraryItem() {
		writeError(w, a.log, domain.ErrForbidden)
		return
	}

	if err := a.library.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleCloneLibraryItem(w http.ResponseWriter, r *http.Request) {
	profile, _ := profileFrom(r.Context())

	game, err := a.library.Clone(r.Context(), profile.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, game)
}
