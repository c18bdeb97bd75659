// Package documents proxies the saved-document surface: listing,
// detail, deletion and PDF download for quotations and invoices. All
// state lives in the backend; this layer only adapts it to the
// client-facing API.
package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quotedesk/quotedesk/internal/auth"
	"github.com/quotedesk/quotedesk/internal/backend"
	"github.com/quotedesk/quotedesk/internal/platform/httpx"
)

// QuotationBackend is the saved-quotation API slice this package uses.
type QuotationBackend interface {
	List(ctx context.Context) ([]backend.QuotationSummary, error)
	Get(ctx context.Context, id int64) (*backend.QuotationRecord, error)
	Delete(ctx context.Context, id int64) error
}

// InvoiceBackend is the saved-invoice API slice this package uses.
type InvoiceBackend interface {
	List(ctx context.Context) ([]backend.InvoiceSummary, error)
	Get(ctx context.Context, id int64) (*backend.InvoiceRecord, error)
	Delete(ctx context.Context, id int64) error
}

// PDFBackend renders saved documents.
type PDFBackend interface {
	Quotation(ctx context.Context, id int64) ([]byte, error)
	Invoice(ctx context.Context, id int64) ([]byte, error)
}

// Handler serves the saved-document routes.
type Handler struct {
	logger     *slog.Logger
	quotations QuotationBackend
	invoices   InvoiceBackend
	pdf        PDFBackend
	sessions   *auth.SessionManager
}

// NewHandler constructs a Handler.
func NewHandler(
	logger *slog.Logger,
	quotations QuotationBackend,
	invoices InvoiceBackend,
	pdf PDFBackend,
	sessions *auth.SessionManager,
) *Handler {
	return &Handler{
		logger:     logger,
		quotations: quotations,
		invoices:   invoices,
		pdf:        pdf,
		sessions:   sessions,
	}
}

// MountRoutes registers document routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Route("/quotations", func(r chi.Router) {
			r.Get("/", h.listQuotations)
			r.Get("/{id}", h.getQuotation)
			r.Delete("/{id}", h.deleteQuotation)
			r.Get("/{id}/pdf", h.quotationPDF)
		})
		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", h.listInvoices)
			r.Get("/{id}", h.getInvoice)
			r.Delete("/{id}", h.deleteInvoice)
			r.Get("/{id}/pdf", h.invoicePDF)
		})
	})
}

func (h *Handler) listQuotations(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.quotations.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if summaries == nil {
		summaries = []backend.QuotationSummary{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"quotations": summaries})
}

func (h *Handler) getQuotation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	record, err := h.quotations.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func (h *Handler) deleteQuotation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.quotations.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) quotationPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	data, err := h.pdf.Quotation(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	servePDF(w, fmt.Sprintf("quotation-%d.pdf", id), data)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.invoices.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if summaries == nil {
		summaries = []backend.InvoiceSummary{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": summaries})
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	record, err := h.invoices.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, record)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.invoices.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) invoicePDF(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	data, err := h.pdf.Invoice(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	servePDF(w, fmt.Sprintf("invoice-%d.pdf", id), data)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	h.sessions.InvalidateOnUnauthorized(auth.SessionFromContext(r.Context()), err)

	var rejected *backend.RejectedError
	var transport *backend.TransportError
	switch {
	case errors.As(err, &rejected):
		httpx.Problem(w, http.StatusBadRequest, "Request Rejected", rejected.Message)
	case errors.As(err, &transport):
		h.logger.Error("backend unreachable", slog.String("path", transport.Path), slog.Any("error", transport.Err))
		httpx.Problem(w, http.StatusBadGateway, "Backend Unreachable", "the service is temporarily unavailable")
	default:
		if !auth.IsUnauthorized(err) && !errors.Is(err, httpx.ErrNotFound) {
			h.logger.Error("document request failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}

func servePDF(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be a positive integer")
		return 0, false
	}
	return id, true
}
