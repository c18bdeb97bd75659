package backend

import (
	"context"
	"fmt"

	"github.com/quotedesk/quotedesk/internal/platform/httpx"
)

// InvoiceItem is a persisted invoice line item.
type InvoiceItem struct {
	IntPkInvoiceItemID int64   `json:"intPkInvoiceItemId"`
	IntInventoryID     *int64  `json:"intInventoryId"`
	StrItemCode        *string `json:"strItemCode"`
	StrItemName        string  `json:"strItemName"`
	StrUnit            string  `json:"strUnit"`
	DblQuantity        float64 `json:"dblQuantity"`
	DblUnitPrice       float64 `json:"dblUnitPrice"`
	DblTotalPrice      float64 `json:"dblTotalPrice"`
	IntSortOrder       int     `json:"intSortOrder"`
}

// InvoiceRecord is a persisted invoice with items.
type InvoiceRecord struct {
	IntPkInvoiceID     int64         `json:"intPkInvoiceId"`
	StrInvoiceNumber   string        `json:"strInvoiceNumber"`
	DatInvoiceDate     string        `json:"datInvoiceDate"`
	StrCustomerName    string        `json:"strCustomerName"`
	StrCustomerPhone   *string       `json:"strCustomerPhone"`
	StrCustomerAddress *string       `json:"strCustomerAddress"`
	DblSubtotal        float64       `json:"dblSubtotal"`
	DblTaxPercent      float64       `json:"dblTaxPercent"`
	DblTaxAmount       float64       `json:"dblTaxAmount"`
	DblDiscountAmount  float64       `json:"dblDiscountAmount"`
	DblTotalAmount     float64       `json:"dblTotalAmount"`
	StrNotes           *string       `json:"strNotes"`
	StrPaymentStatus   string        `json:"strPaymentStatus"`
	DatDueDate         *string       `json:"datDueDate"`
	IntQuotationID     *int64        `json:"intQuotationId"`
	StrQuotationNumber *string       `json:"strQuotationNumber"`
	LstItems           []InvoiceItem `json:"lstItems"`
}

// InvoiceSummary is one row of the invoice list view.
type InvoiceSummary struct {
	IntPkInvoiceID     int64   `json:"intPkInvoiceId"`
	StrInvoiceNumber   string  `json:"strInvoiceNumber"`
	DatInvoiceDate     string  `json:"datInvoiceDate"`
	StrCustomerName    string  `json:"strCustomerName"`
	DblTotalAmount     float64 `json:"dblTotalAmount"`
	StrPaymentStatus   string  `json:"strPaymentStatus"`
	IntItemCount       int     `json:"intItemCount"`
	StrQuotationNumber *string `json:"strQuotationNumber"`
}

// CreateInvoicePayload is the request body for /invoice/add. An
// optional source quotation id preserves the conversion linkage.
type CreateInvoicePayload struct {
	IntQuotationID     *int64        `json:"intQuotationId"`
	StrCustomerName    string        `json:"strCustomerName"`
	StrCustomerPhone   *string       `json:"strCustomerPhone"`
	StrCustomerAddress *string       `json:"strCustomerAddress"`
	DatInvoiceDate     *string       `json:"datInvoiceDate"`
	DatDueDate         *string       `json:"datDueDate"`
	DblTaxPercent      float64       `json:"dblTaxPercent"`
	DblDiscountAmount  float64       `json:"dblDiscountAmount"`
	StrNotes           *string       `json:"strNotes"`
	StrPaymentStatus   string        `json:"strPaymentStatus"`
	LstItems           []ItemPayload `json:"lstItems"`
}

type invoiceResponse struct {
	Envelope
	Data *InvoiceRecord `json:"data"`
}

type invoiceListResponse struct {
	Envelope
	LstInvoice []InvoiceSummary `json:"lstInvoice"`
}

type invoiceIDRequest struct {
	IntInvoiceID int64 `json:"intInvoiceId"`
}

// InvoiceService talks to the invoice persistence endpoints. The
// backend exposes no invoice update: invoices are immutable once
// created.
type InvoiceService struct {
	client *Client
}

// NewInvoiceService constructs an InvoiceService.
func NewInvoiceService(client *Client) *InvoiceService {
	return &InvoiceService{client: client}
}

// Create persists a new invoice and returns the saved record with its
// generated number.
func (s *InvoiceService) Create(ctx context.Context, payload CreateInvoicePayload) (*InvoiceRecord, error) {
	var resp invoiceResponse
	if err := s.client.Call(ctx, "/invoice/add", payload, &resp); err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("create invoice: empty response")
	}
	return resp.Data, nil
}

// Get fetches one invoice with all items.
func (s *InvoiceService) Get(ctx context.Context, id int64) (*InvoiceRecord, error) {
	var resp invoiceResponse
	if err := s.client.Call(ctx, "/invoice/get", invoiceIDRequest{IntInvoiceID: id}, &resp); err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if resp.Empty() || resp.Data == nil {
		return nil, fmt.Errorf("get invoice %d: %w", id, httpx.ErrNotFound)
	}
	return resp.Data, nil
}

// Delete removes an invoice.
func (s *InvoiceService) Delete(ctx context.Context, id int64) error {
	var resp struct{ Envelope }
	if err := s.client.Call(ctx, "/invoice/delete", invoiceIDRequest{IntInvoiceID: id}, &resp); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

// List fetches invoice summaries. "No data" yields an empty slice.
func (s *InvoiceService) List(ctx context.Context) ([]InvoiceSummary, error) {
	var resp invoiceListResponse
	if err := s.client.Call(ctx, "/invoice/list", nil, &resp); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return resp.LstInvoice, nil
}
