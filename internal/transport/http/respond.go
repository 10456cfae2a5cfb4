package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"classctf-service/internal/domain"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps the domain error taxonomy onto HTTP status codes. Every
// body is {"error": string}.
func writeError(w http.ResponseWriter, log *logrus.Logger, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusUnauthorized
		message = "Session not found. Please join again."
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
		message = "Access denied."
	case errors.Is(err, domain.ErrGameNotFound):
		status = http.StatusNotFound
		message = "Game not found."
	case errors.Is(err, domain.ErrChallengeNotFound):
		status = http.StatusNotFound
		message = "Challenge not found."
	case errors.Is(err, domain.ErrLibraryItemNotFound):
		status = http.StatusNotFound
		message = "Library item not found."
	case errors.Is(err, domain.ErrUserNotFound):
		status = http.StatusNotFound
		message = "User not found."
	case errors.Is(err, domain.ErrGameFull):
		status = http.StatusBadRequest
		message = "Game is full. Maximum number of teams reached."
	case errors.Is(err, domain.ErrTeamNameTaken):
		status = http.StatusBadRequest
		message = "This team name is already taken."
	case errors.Is(err, domain.ErrGameNeedsChallenge):
		status = http.StatusBadRequest
		message = "Game must have at least one challenge."
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
		message = "Too many attempts. Wait a minute."
	case errors.Is(err, domain.ErrReflectionExists):
		status = http.StatusConflict
		message = "Reflection already submitted."
	case errors.Is(err, domain.ErrSelfRoleChange):
		status = http.StatusBadRequest
		message = "You cannot change your own role."
	case errors.Is(err, domain.ErrValidation), errors.As(err, &validationErrs):
		status = http.StatusBadRequest
		message = "Invalid request."
	default:
		log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, errorBody{Error: message})
}

func errMissingParam(name string) error {
	return fmt.Errorf("%w: missing %s", domain.ErrValidation, name)
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.ErrValidation
	}
	return nil
}
