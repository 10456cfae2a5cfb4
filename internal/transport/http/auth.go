package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"

	"classctf-service/internal/app"
	"classctf-service/internal/domain"
)

type contextKey string

const profileKey contextKey = "profile"

// authMiddleware validates the Bearer token issued by the external auth
// provider (HS256, subject = user id) and attaches the user's profile.
// Player-side routes use session tokens instead and never pass through
// this middleware.
type authMiddleware struct {
	secret   []byte
	profiles app.ProfileStore
	log      *logrus.Logger
}

func newAuthMiddleware(secret string, profiles app.ProfileStore, log *logrus.Logger) *authMiddleware {
	return &authMiddleware{secret: []byte(secret), profiles: profiles, log: log}
}

func (m *authMiddleware) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, m.log, domain.ErrUnauthorized)
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		claims := jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			writeError(w, m.log, domain.ErrUnauthorized)
			return
		}

		profile, err := m.profiles.ProfileByID(r.Context(), claims.Subject)
		if err != nil {
			writeError(w, m.log, domain.ErrUnauthorized)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), profileKey, profile)))
	}
}

// profileFrom returns the authenticated profile attached by authMiddleware.
func profileFrom(ctx context.Context) (domain.Profile, bool) {
	profile, ok := ctx.Value(profileKey).(domain.Profile)
	return profile, ok
}
