package http

import (
	"net/http"
)

type joinGameRequest struct {
	GameCode string `json:"game_code" validate:"required,len=6"`
	TeamName string `json:"team_name" validate:"required,max=30"`
}

type joinGameResponse struct {
	TeamID       string `json:"team_id"`
	SessionToken string `json:"session_token"`
	GameID       string `json:"game_id"`
	TeamName     string `json:"team_name"`
}

// handleJoinGame creates a team in an active game and returns its session
// token, the only time the token is ever sent.
func (a *API) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	var req joinGameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, a.log, err)
		return
	}

	team, err := a.play.JoinGame(r.Context(), req.GameCode, req.TeamName)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, joinGameResponse{
		TeamID:       team.ID,
		SessionToken: team.SessionToken,
		GameID:       team.GameID,
		TeamName:     team.Name,
	})
}

type submitAnswerRequest struct {
	SessionToken string `json:"session_token" validate:"required"`
	ChallengeID  string `json:"challenge_id" validate:"required,uuid4"`
	Answer       string `json:"answer" validate:"required"`
}

func (a *API) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req submitAnswerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, a.log, err)
		return
	}

	result, err := a.play.SubmitAnswer(r.Context(), req.SessionToken, req.ChallengeID, req.Answer)
	if err != nil {
		submissionsTotal.WithLabelValues("error").Inc()
		writeError(w, a.log, err)
		return
	}
	switch {
	case result.AlreadySolved:
		submissionsTotal.WithLabelValues("already_solved").Inc()
	case result.IsCorrect:
		submissionsTotal.WithLabelValues("correct").Inc()
	default:
		submissionsTotal.WithLabelValues("incorrect").Inc()
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handlePlayChallenges(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Session-Token")
	if token == "" {
		token = r.URL.Query().Get("session_token")
	}
	challenges, err := a.play.ChallengesForTeam(r.Context(), token)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, challenges)
}

func (a *API) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		writeError(w, a.log, errMissingParam("game_id"))
		return
	}
	lb, err := a.play.Leaderboard(r.Context(), gameID)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

type reflectionRequest struct {
	SessionToken       string  `json:"session_token" validate:"required"`
	HardestChallengeID *string `json:"hardest_challenge_id" validate:"omitempty,uuid4"`
	ImprovementText    string  `json:"improvement_text" validate:"required,max=500"`
	LikedText          *string `json:"liked_text" validate:"omitempty,max=300"`
}

func (a *API) handleSubmitReflection(w http.ResponseWriter, r *http.Request) {
	var req reflectionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, a.log, err)
		return
	}
	err := a.play.SubmitReflection(r.Context(), req.SessionToken, req.HardestChallengeID, req.ImprovementText, req.LikedText)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
