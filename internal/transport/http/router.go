package http

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"classctf-service/internal/app"
)

// API bundles the HTTP handlers around the application services.
type API struct {
	play        *app.PlayService
	games       *app.GameService
	library     *app.LibraryService
	admin       *app.AdminService
	reflections app.ReflectionStore
	images      ImageStore
	auth        *authMiddleware
	validate    *validator.Validate
	upgrader    websocket.Upgrader
	log         *logrus.Logger
}

// Deps carries everything the router needs. Auth routes require JWTSecret
// and Profiles; player routes authenticate with session tokens instead.
type Deps struct {
	Play        *app.PlayService
	Games       *app.GameService
	Library     *app.LibraryService
	Admin       *app.AdminService
	Reflections app.ReflectionStore
	Profiles    app.ProfileStore
	Images      ImageStore
	JWTSecret   string
	Log         *logrus.Logger
}

func NewAPI(deps Deps) *API {
	return &API{
		play:        deps.Play,
		games:       deps.Games,
		library:     deps.Library,
		admin:       deps.Admin,
		reflections: deps.Reflections,
		images:      deps.Images,
		auth:        newAuthMiddleware(deps.JWTSecret, deps.Profiles, deps.Log),
		validate:    validator.New(),
		upgrader:    newUpgrader(),
		log:         deps.Log,
	}
}

// Handler builds the route table. Method patterns need go1.22 ServeMux.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Player routes, keyed by session token.
	mux.HandleFunc("POST /api/teams", a.handleJoinGame)
	mux.HandleFunc("POST /api/submissions", a.handleSubmitAnswer)
	mux.HandleFunc("POST /api/reflections", a.handleSubmitReflection)
	mux.HandleFunc("GET /api/play/challenges", a.handlePlayChallenges)
	mux.HandleFunc("GET /api/leaderboard", a.handleLeaderboard)
	mux.HandleFunc("GET /ws/leaderboard", a.handleLeaderboardWS)

	// Teacher routes.
	mux.HandleFunc("POST /api/games", a.auth.wrap(a.handleCreateGame))
	mux.HandleFunc("GET /api/games", a.auth.wrap(a.handleListGames))
	mux.HandleFunc("GET /api/games/{id}", a.auth.wrap(a.handleGetGame))
	mux.HandleFunc("PATCH /api/games/{id}", a.auth.wrap(a.handleUpdateGame))
	mux.HandleFunc("DELETE /api/games/{id}", a.auth.wrap(a.handleDeleteGame))
	mux.HandleFunc("GET /api/games/{id}/reflections", a.auth.wrap(a.handleGameReflections))

	mux.HandleFunc("POST /api/challenges", a.auth.wrap(a.handleCreateChallenge))
	mux.HandleFunc("GET /api/challenges", a.auth.wrap(a.handleListChallenges))
	mux.HandleFunc("PATCH /api/challenges/{id}", a.auth.wrap(a.handleUpdateChallenge))
	mux.HandleFunc("DELETE /api/challenges/{id}", a.auth.wrap(a.handleDeleteChallenge))

	mux.HandleFunc("POST /api/uploads/images", a.auth.wrap(a.handleUploadImage))

	// Template library.
	mux.HandleFunc("POST /api/library", a.auth.wrap(a.handlePublishToLibrary))
	mux.HandleFunc("GET /api/library", a.auth.wrap(a.handleListLibrary))
	mux.HandleFunc("GET /api/library/{id}", a.auth.wrap(a.handleGetLibraryItem))
	mux.HandleFunc("POST /api/library/{id}/review", a.auth.wrap(a.handleReviewLibraryItem))
	mux.HandleFunc("DELETE /api/library/{id}", a.auth.wrap(a.handleDeleteLibraryItem))
	mux.HandleFunc("POST /api/library/{id}/clone", a.auth.wrap(a.handleCloneLibraryItem))

	// Admin.
	mux.HandleFunc("GET /api/admin/users", a.auth.wrap(a.handleListUsers))
	mux.HandleFunc("PATCH /api/admin/users/{id}/role", a.auth.wrap(a.handleChangeRole))
	mux.HandleFunc("GET /api/admin/stats", a.auth.wrap(a.handlePlatformStats))

	return withObservability(a.log, mux)
}
