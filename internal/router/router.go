package router

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/auth"
	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/book"
	bookrepo "github.com/ovaphlow/pitchfork/service-bookshelf/internal/book/repo"
	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-bookshelf/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-bookshelf/pkg/utilities"
)

// Config holds the HTTP settings. AuthRateLimit is the number of signup and
// login requests allowed per minute per client IP; zero disables the limit.
type Config struct {
	Addr           string
	AllowedOrigins []string
	AuthRateLimit  int
	AutoMigrate    bool
}

// ConfigFromEnv reads HTTP_ADDR, CORS_ALLOWED_ORIGINS, AUTH_RATE_LIMIT and
// DATABASE_AUTO_MIGRATE.
func ConfigFromEnv() Config {
	cfg := Config{
		Addr:           os.Getenv("HTTP_ADDR"),
		AllowedOrigins: []string{"http://localhost:3000"},
		AuthRateLimit:  20,
	}
	if cfg.Addr == "" {
		cfg.Addr = "0.0.0.0:8431"
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.AllowedOrigins = origins
	}
	if v, err := strconv.Atoi(os.Getenv("AUTH_RATE_LIMIT")); err == nil && v >= 0 {
		cfg.AuthRateLimit = v
	}
	cfg.AutoMigrate, _ = strconv.ParseBool(os.Getenv("DATABASE_AUTO_MIGRATE"))
	return cfg
}

// Deps are the shared resources handed to every handler. A nil Hasher means
// bcrypt at cost 12.
type Deps struct {
	Logger *zap.SugaredLogger
	DB     *sqlx.DB
	Tokens *auth.TokenService
	Hasher user.PasswordHasher
	IDs    *utilities.IDGenerator
}

// RegisterRoutes mounts the HTTP handlers on an http.ServeMux and wraps it
// with the common middleware chain.
func RegisterRoutes(cfg Config, d Deps) http.Handler {
	users := userrepo.NewUserRepo(d.DB, d.IDs)
	books := bookrepo.NewBookRepo(d.DB, d.IDs)
	userSvc := user.NewUserService(users, d.Hasher, d.Tokens)
	bookSvc := book.NewService(books, userSvc)

	userHandler := user.NewHandler(userSvc, d.Logger)
	bookHandler := book.NewHandler(bookSvc, d.Logger)

	bearer := auth.RequireBearer(d.Tokens, d.Logger)
	limit := authLimiter(cfg.AuthRateLimit)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", healthHandler(d.DB, d.Logger))
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /api/books", bookHandler.List)
	mux.HandleFunc("GET /api/fields", bookHandler.Fields)
	mux.Handle("GET /api/books/preferences", bearer(http.HandlerFunc(bookHandler.Recommended)))

	mux.Handle("POST /api/user/signup", limit(http.HandlerFunc(userHandler.Signup)))
	mux.Handle("POST /api/user/login", limit(http.HandlerFunc(userHandler.Login)))
	mux.Handle("GET /api/user/getpreferences", bearer(http.HandlerFunc(userHandler.GetPreferences)))
	mux.Handle("POST /api/user/preferences", bearer(http.HandlerFunc(userHandler.SetPreferences)))

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})

	var h http.Handler = mux
	h = corsHandler(h)
	h = SecurityHeadersMiddleware()(h)
	h = MetricsMiddleware()(h)
	h = LoggingMiddleware(d.Logger)(h)
	h = RequestIDMiddleware()(h)
	return h
}

func authLimiter(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeMessage(w, http.StatusTooManyRequests, "Too many requests")
		}),
	)
}

func healthHandler(db *sqlx.DB, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			logger.Warnw("health check failed", "err", err)
			writeMessage(w, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
