package user

import (
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/auth"
	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/user/entity"
)

// Handler exposes HTTP endpoints for account and preference operations.
type Handler struct {
	svc    *UserService
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// SignupResponse is returned with 201 Created.
type SignupResponse struct {
	Message string         `json:"message"`
	User    entity.Profile `json:"user"`
}

// LoginResponse carries the bearer token.
type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid signup payload", "err", err)
		h.writeError(w, apperr.Validation("Invalid request body"))
		return
	}
	p, err := h.svc.Register(r.Context(), req)
	if err != nil {
		metrics.Signups.WithLabelValues(resultLabel(err)).Inc()
		h.logger.Debugw("signup failed", "err", err)
		h.writeError(w, err)
		return
	}
	metrics.Signups.WithLabelValues("success").Inc()
	h.writeJSON(w, http.StatusCreated, SignupResponse{Message: "User signed up successfully", User: *p})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		h.writeError(w, apperr.Validation("Invalid request body"))
		return
	}
	token, err := h.svc.Login(r.Context(), req)
	if err != nil {
		metrics.Logins.WithLabelValues(resultLabel(err)).Inc()
		h.logger.Debugw("login failed", "err", err)
		h.writeError(w, err)
		return
	}
	metrics.Logins.WithLabelValues("success").Inc()
	h.writeJSON(w, http.StatusOK, LoginResponse{Token: token, Message: "Logged in successfully!"})
}

func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.IdentityFromContext(r.Context())
	prefs, err := h.svc.GetPreferences(r.Context(), email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, prefs)
}

func (h *Handler) SetPreferences(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.IdentityFromContext(r.Context())
	var req PreferencesInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid preferences payload", "err", err)
		h.writeError(w, apperr.Validation("Invalid request body"))
		return
	}
	if err := h.svc.SetPreferences(r.Context(), email, req); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "User preferences saved successfully"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if apperr.KindOf(err) == apperr.KindUnexpected {
		h.logger.Errorw("request failed", "err", err)
	}
	h.writeJSON(w, apperr.Status(err), messageResponse{Message: apperr.Message(err)})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func resultLabel(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return "invalid"
	case apperr.KindConflict:
		return "conflict"
	case apperr.KindNotFound:
		return "not_found"
	case apperr.KindAuth:
		return "bad_credentials"
	default:
		return "error"
	}
}
