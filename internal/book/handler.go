package book

import (
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-bookshelf/internal/auth"
)

// Handler exposes the catalog endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.svc.ListBooks(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, books)
}

func (h *Handler) Fields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.svc.ListFields(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, fields)
}

// Recommended lists books matching the caller's stored preferences.
func (h *Handler) Recommended(w http.ResponseWriter, r *http.Request) {
	email, _ := auth.IdentityFromContext(r.Context())
	books, err := h.svc.ListRecommended(r.Context(), email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, books)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if apperr.KindOf(err) == apperr.KindUnexpected {
		h.logger.Errorw("request failed", "err", err)
	}
	h.writeJSON(w, apperr.Status(err), map[string]string{"message": apperr.Message(err)})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
