package http

import (
	"net/http"

	"classctf-service/internal/app"
	"classctf-service/internal/domain"
)

type createGameRequest struct {
	Title       string               `json:"title" validate:"required,max=100"`
	Description string               `json:"description" validate:"max=1000"`
	Settings    *domain.GameSettings `json:"settings"`
}

func (a *API) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	profile, _ := profileFrom(r.Context())

	var req createGameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, a.log, err)
		return
	}

	game, err := a.games.CreateGame(r.Context(), profile.ID, app.CreateGameParams{
		Title:       req.Title,
		Description: req.Description,
		Settings:    req.Settings,
	})
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

func (a *API) handleListGames(w http.ResponseWriter, r *http.Request) {
	profile, _ := profileFrom(r.Context())

	games, err := a.games.ListGames(r.Context(), profile.ID)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

type gameDetailResponse struct {
	domain.Game
	Challenges []domain.Challenge `json:"challenges"`
}

func (a *API) handleGetGame(w http.ResponseWriter, r *http.Request) {
	profile, _ := profileFrom(r.Context())

	game, challenges, err := a.games.GetGame(r.Context(), profile.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, gameDetailResponse{Game: game, Challenges: challenges})
}

type updateGameRequest struct {
	Title       *string              `json:"title" validate:"omitempty,max=100"`
	Description *string              `json:"description" validate:"omitempty,max=1000"`
	Status      *domain.GameStatus   `json:"status" validate:"omitempty,oneof=draft active paused finished"`
	Settings    *domain.GameSettings `json:"settings"`
}

func (a *API) handleUpdateGame(w http.ResponseWriter, r *http.Request) {
	profile, _ := profileFrom(r.Context())

	var req updateGameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, a.log, err)
		return
	}

	game, err := a.games.UpdateGame(r.Context(), profile.ID, r.PathValue("id"), app.UpdateGameParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Settings:    req.Settings,
	})
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (a *API) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	profile, _ := profileFrom(r.Context())

	if err := a.games.DeleteGame(r.Context(), profile.ID, r.PathValue("id")); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleGameReflections(w http.ResponseWriter, r *http.Request) {
	profile, _ := profileFrom(r.Context())
	gameID := r.PathValue("id")

	// Ownership check reuses the game lookup so a foreign game reads as 404.
	if _, _, err := a.games.GetGame(r.Context(), profile.ID, gameID); err != nil {
		writeError(w, a.log, err)
		return
	}
	reflections, err := a.reflections.ReflectionsByGame(r.Context(), gameID)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, reflections)
}

type createChallengeRequest struct {
	GameID      string   `json:"game_id" validate:"required,uuid4"`
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Type        string   `json:"type" validate:"omitempty,oneof=text multiple_choice number"`
	Points      int      `json:"points" validate:"omitempty,min=1,max=1000"`
	Answer      string   `json:"answer" validate:"required"`
	Hints       []string `json:"hints" validate:"max=5"`
	Options     []string `json:"options"`
	OrderIndex  int      `json:"order_index"`
	ImageURL    *string  `json:"image_url"`
}

func (a *API) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	profile, _ := profileFrom(r.Context())

	var req createChallengeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, a.log, err)
		return
	}

	params := app.CreateChallengeParams{
		GameID:      req.GameID,
		Title:       req.Title,
		Description: req.Description,
		Type:        domain.AnswerType(req.Type),
		Points:      req.Points,
		Answer:      req.Answer,
		Hints:       req.Hints,
		Options:     req.Options,
		OrderIndex:  req.OrderIndex,
		ImageURL:    req.ImageURL,
	}
	challenge, err := a.games.CreateChallenge(r.Context(), profile.ID, params)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, challenge)
}

func (a *API) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	profile, _ := profileFrom(r.Context())

	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		writeError(w, a.log, errMissingParam("game_id"))
		return
	}
	challenges, err := a.games.ListChallenges(r.Context(), profile.ID, gameID)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, challenges)
}

type updateChallengeRequest struct {
	Title       *string  `json:"title" validate:"omitempty,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Type        *string  `json:"type" validate:"omitempty,oneof=text multiple_choice number"`
	Points      *int     `json:"points" validate:"omitempty,min=1,max=1000"`
	Answer      *string  `json:"answer"`
	Hints       []string `json:"hints" validate:"omitempty,max=5"`
	Options     []string `json:"options"`
	OrderIndex  *int     `json:"order_index"`
	ImageURL    *string  `json:"image_url"`
}

func (a *API) handleUpdateChallenge(w http.ResponseWriter, r *http.Request) {
	profile, _ := profileFrom(r.Context())

	var req updateChallengeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, a.log, err)
		return
	}
	if err := a.validate.Struct(req); err != nil {
		writeError(w, a.log, err)
		return
	}

	params := app.UpdateChallengeParams{
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
		Answer:      req.Answer,
		Hints:       req.Hints,
		Options:     req.Options,
		OrderIndex:  req.OrderIndex,
		ImageURL:    req.ImageURL,
	}
	if req.Type != nil {
		answerType := domain.AnswerType(*req.Type)
		params.Type = &answerType
	}
	challenge, err := a.games.UpdateChallenge(r.Context(), profile.ID, r.PathValue("id"), params)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}

func (a *API) handleDeleteChallenge(w http.ResponseWriter, r *http.Request) {
	profile, _ := profileFrom(r.Context())

	if err := a.games.DeleteChallenge(r.Context(), profile.ID, r.PathValue("id")); err != nil {
		writeError(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
