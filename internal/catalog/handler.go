package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quotedesk/quotedesk/internal/auth"
	"github.com/quotedesk/quotedesk/internal/platform/httpx"
)

const defaultSearchLimit = 20

// Handler exposes catalog search for the wizard's autocomplete surface.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	sessions *auth.SessionManager
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, sessions *auth.SessionManager) *Handler {
	return &Handler{logger: logger, service: service, sessions: sessions}
}

// MountRoutes registers catalog routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/catalog", h.list)
	r.Get("/catalog/search", h.search)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.respondEntries(w, r, "", 0)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	h.respondEntries(w, r, r.URL.Query().Get("q"), limit)
}

func (h *Handler) respondEntries(w http.ResponseWriter, r *http.Request, query string, limit int) {
	sess := auth.SessionFromContext(r.Context())
	entries, err := h.service.Entries(r.Context(), sess.ID)
	if err != nil {
		h.sessions.InvalidateOnUnauthorized(sess, err)
		if !auth.IsUnauthorized(err) {
			h.logger.Error("load catalog", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"entries": Search(entries, query, limit),
	})
}
