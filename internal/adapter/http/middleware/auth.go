package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"go.uber.org/zap"
)

// TokenCookieName is the session cookie set on register and login.
const TokenCookieName = "token"

// JWTAuth resolves the caller from the session cookie or a Bearer header and
// stores the user on the request context. Requests without a valid token
// for an existing user get 401.
func JWTAuth(tokens domain.TokenManager, users domain.UserRepository, log *logger.Logger) func(http.Handler) http.Handler {
	log = log.Named("JWTAuth")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" {
				log.Debug("No token on request", zap.String("path", r.URL.Path))
				unauthorized(w, "Unauthorized")
				return
			}

			userID, err := tokens.Verify(raw)
			if err != nil {
				log.Warn("Token verification failed", zap.String("path", r.URL.Path), zap.Error(err))
				unauthorized(w, "Invalid token")
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				log.Warn("Token user not found", zap.String("user_id", userID), zap.Error(err))
				unauthorized(w, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(TokenCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
