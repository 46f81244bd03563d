package auth

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/apperr"
)

// RequireBearer rejects requests without a valid `Authorization: Bearer`
// token and stores the token subject on the request context.
func RequireBearer(tokens *TokenService, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			var raw string
			switch {
			case header == "":
			case len(header) > len("bearer ") && strings.EqualFold(header[:len("bearer ")], "bearer "):
				raw = strings.TrimSpace(header[len("bearer "):])
			default:
				writeError(w, apperr.Auth("Invalid Authorization Header", nil))
				return
			}
			email, err := tokens.Authenticate(raw)
			if err != nil {
				logger.Debugw("bearer rejected", "path", r.URL.Path, "err", err)
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), email)))
		})
	}
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.Status(err))
	_ = json.NewEncoder(w).Encode(map[string]string{"message": apperr.Message(err)})
}
