package wizard

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/quotedesk/quotedesk/internal/auth"
	"github.com/quotedesk/quotedesk/internal/backend"
	"github.com/quotedesk/quotedesk/internal/platform/httpx"
)

// Handler exposes the wizard over HTTP. Every mutating endpoint
// returns the full updated state so the client never has to diff.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	sessions *auth.SessionManager
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, sessions *auth.SessionManager) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		sessions: sessions,
		validate: validator.New(),
	}
}

// MountRoutes registers wizard routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/wizard", func(r chi.Router) {
		r.Post("/invoice/from-quotation/{quotationID}", h.convert)

		r.Route("/{kind}", func(r chi.Router) {
			r.Get("/", h.state)
			r.Get("/guard", h.guard)
			r.Post("/mode", h.switchMode)
			r.Post("/parse", h.parse)
			r.Post("/items/catalog", h.addCatalogItem)
			r.Post("/items/custom", h.addCustomItem)
			r.Post("/items/blank", h.addBlankItem)
			r.Patch("/items/{itemID}/name", h.renameItem)
			r.Patch("/items/{itemID}/quantity", h.changeQuantity)
			r.Patch("/items/{itemID}/rate", h.changeRate)
			r.Delete("/items/{itemID}", h.removeItem)
			r.Put("/tax", h.setTax)
			r.Put("/discount", h.setDiscount)
			r.Put("/customer", h.setCustomer)
			r.Put("/dates", h.setDates)
			r.Put("/notes", h.setNotes)
			r.Post("/advance", h.advance)
			r.Post("/back", h.back)
			r.Post("/fresh", h.freshStart)
			r.Post("/save", h.save)
		})
	})
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Get(r.Context(), sessionID(r), kindParam(r))
	h.respond(w, r, doc, err)
}

func (h *Handler) guard(w http.ResponseWriter, r *http.Request) {
	armed, err := h.service.Guard(r.Context(), sessionID(r), kindParam(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"unsavedWork": armed})
}

func (h *Handler) switchMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if !h.decode(w, r, &req) {
		return
	}
	doc, err := h.service.SwitchMode(r.Context(), sessionID(r), kindParam(r), Mode(req.Mode))
	h.respond(w, r, doc, err)
}

func (h *Handler) parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !h.decode(w, r, &req) {
		return
	}
	doc, source, err := h.service.ParseText(r.Context(), sessionID(r), kindParam(r), req.RawText)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	view := newStateView(doc)
	view.ParseSource = source
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) addCatalogItem(w http.ResponseWriter, r *http.Request) {
	var req catalogItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	doc, err := h.service.AddCatalogItem(r.Context(), sessionID(r), kindParam(r), req.EntryID)
	h.respond(w, r, doc, err)
}

func (h *Handler) addCustomItem(w http.ResponseWriter, r *http.Request) {
	var req customItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	doc, err := h.service.AddCustomItem(r.Context(), sessionID(r), kindParam(r), req.Name, req.Rate)
	h.respond(w, r, doc, err)
}

func (h *Handler) addBlankItem(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.AddBlankItem(r.Context(), sessionID(r), kindParam(r))
	h.respond(w, r, doc, err)
}

func (h *Handler) renameItem(w http.ResponseWriter, r *http.Request) {
	var req itemNameRequest
	if !h.decode(w, r, &req) {
		return
	}
	doc, err := h.service.UpdateItemName(r.Context(), sessionID(r), kindParam(r), chi.URLParam(r, "itemID"), req.Name)
	h.respond(w, r, doc, err)
}

func (h *Handler) changeQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if !h.decode(w, r, &req) {
		return
	}
	doc, err := h.service.UpdateQuantity(r.Context(), sessionID(r), kindParam(r), chi.URLParam(r, "itemID"), req.Delta)
	h.respond(w, r, doc, err)
}

func (h *Handler) changeRate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if !h.decode(w, r, &req) {
		return
	}
	doc, err := h.service.UpdateRate(r.Context(), sessionID(r), kindParam(r), chi.URLParam(r, "itemID"), req.Rate)
	h.respond(w, r, doc, err)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.RemoveItem(r.Context(), sessionID(r), kindParam(r), chi.URLParam(r, "itemID"))
	h.respond(w, r, doc, err)
}

func (h *Handler) setTax(w http.ResponseWriter, r *http.Request) {
	var req taxRequest
	if !h.decode(w, r, &req) {
		return
	}
	doc, err := h.service.SetTax(r.Context(), sessionID(r), kindParam(r), req.Percent)
	h.respond(w, r, doc, err)
}

func (h *Handler) setDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if !h.decode(w, r, &req) {
		return
	}
	doc, err := h.service.SetDiscount(r.Context(), sessionID(r), kindParam(r), req.Amount)
	h.respond(w, r, doc, err)
}

func (h *Handler) setCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !h.decode(w, r, &req) {
		return
	}
	customer := Customer{Name: req.Name, Phone: req.Phone, Address: req.Address}
	doc, err := h.service.SetCustomer(r.Context(), sessionID(r), kindParam(r), customer)
	h.respond(w, r, doc, err)
}

func (h *Handler) setDates(w http.ResponseWriter, r *http.Request) {
	var req datesRequest
	if !h.decode(w, r, &req) {
		return
	}
	doc, err := h.service.SetDates(r.Context(), sessionID(r), kindParam(r), req.ValidUntil, req.DueDate)
	h.respond(w, r, doc, err)
}

func (h *Handler) setNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if !h.decode(w, r, &req) {
		return
	}
	doc, err := h.service.SetNotes(r.Context(), sessionID(r), kindParam(r), req.Notes)
	h.respond(w, r, doc, err)
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Advance(r.Context(), sessionID(r), kindParam(r))
	h.respond(w, r, doc, err)
}

func (h *Handler) back(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Back(r.Context(), sessionID(r), kindParam(r))
	h.respond(w, r, doc, err)
}

func (h *Handler) freshStart(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.FreshStart(r.Context(), sessionID(r), kindParam(r))
	h.respond(w, r, doc, err)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Save(r.Context(), sessionID(r), kindParam(r))
	h.respond(w, r, doc, err)
}

func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	quotationID, err := strconv.ParseInt(chi.URLParam(r, "quotationID"), 10, 64)
	if err != nil || quotationID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "quotation id must be a positive integer")
		return
	}
	doc, err := h.service.ConvertFromQuotation(r.Context(), sessionID(r), quotationID)
	h.respond(w, r, doc, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, doc *Document, err error) {
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newStateView(doc))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	h.sessions.InvalidateOnUnauthorized(auth.SessionFromContext(r.Context()), err)

	var rejected *backend.RejectedError
	var transport *backend.TransportError
	switch {
	case errors.Is(err, ErrItemNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvoiceLocked):
		httpx.Problem(w, http.StatusConflict, "Invoice Locked", err.Error())
	case isInputError(err):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.As(err, &rejected):
		// Backend rejections carry messages meant for the user.
		httpx.Problem(w, http.StatusBadRequest, "Request Rejected", rejected.Message)
	case errors.As(err, &transport):
		h.logger.Error("backend unreachable", slog.String("path", transport.Path), slog.Any("error", transport.Err))
		httpx.Problem(w, http.StatusBadGateway, "Backend Unreachable", "the service is temporarily unavailable")
	default:
		if !auth.IsUnauthorized(err) {
			h.logger.Error("wizard request failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}

func isInputError(err error) bool {
	for _, sentinel := range []error{
		ErrUnknownKind,
		ErrUnknownMode,
		ErrTextRequired,
		ErrNoItems,
		ErrZeroSubtotal,
		ErrItemNameRequired,
		ErrItemRateInvalid,
		ErrCustomerNameRequired,
		ErrCustomerPhoneNeeded,
		ErrNothingToSave,
		ErrParseFailed,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func sessionID(r *http.Request) string {
	if sess := auth.SessionFromContext(r.Context()); sess != nil {
		return sess.ID
	}
	return ""
}

func kindParam(r *http.Request) Kind {
	return Kind(chi.URLParam(r, "kind"))
}
