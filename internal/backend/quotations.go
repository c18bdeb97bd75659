package backend

import (
	"context"
	"fmt"

	"github.com/quotedesk/quotedesk/internal/platform/httpx"
)

// ItemPayload is the wire shape of one line item on create/update.
type ItemPayload struct {
	IntInventoryID *int64  `json:"intInventoryId"`
	StrItemCode    *string `json:"strItemCode"`
	StrItemName    string  `json:"strItemName"`
	StrUnit        string  `json:"strUnit"`
	DblQuantity    float64 `json:"dblQuantity"`
	DblUnitPrice   float64 `json:"dblUnitPrice"`
	IntSortOrder   int     `json:"intSortOrder"`
}

// QuotationItem is a persisted line item as returned by the backend.
type QuotationItem struct {
	IntPkQuotationItemID int64   `json:"intPkQuotationItemId"`
	IntInventoryID       *int64  `json:"intInventoryId"`
	StrItemCode          *string `json:"strItemCode"`
	StrItemName          string  `json:"strItemName"`
	StrUnit              string  `json:"strUnit"`
	DblQuantity          float64 `json:"dblQuantity"`
	DblUnitPrice         float64 `json:"dblUnitPrice"`
	DblTotalPrice        float64 `json:"dblTotalPrice"`
	IntSortOrder         int     `json:"intSortOrder"`
}

// QuotationRecord is a persisted quotation with items.
type QuotationRecord struct {
	IntPkQuotationID   int64           `json:"intPkQuotationId"`
	StrQuotationNumber string          `json:"strQuotationNumber"`
	DatQuotationDate   string          `json:"datQuotationDate"`
	StrCustomerName    string          `json:"strCustomerName"`
	StrCustomerPhone   *string         `json:"strCustomerPhone"`
	StrCustomerAddress *string         `json:"strCustomerAddress"`
	DblSubtotal        float64         `json:"dblSubtotal"`
	DblTaxPercent      float64         `json:"dblTaxPercent"`
	DblTaxAmount       float64         `json:"dblTaxAmount"`
	DblDiscountAmount  float64         `json:"dblDiscountAmount"`
	DblTotalAmount     float64         `json:"dblTotalAmount"`
	StrNotes           *string         `json:"strNotes"`
	StrStatus          string          `json:"strStatus"`
	DatValidUntil      *string         `json:"datValidUntil"`
	LstItems           []QuotationItem `json:"lstItems"`
}

// QuotationSummary is one row of the quotation list view.
type QuotationSummary struct {
	IntPkQuotationID   int64   `json:"intPkQuotationId"`
	StrQuotationNumber string  `json:"strQuotationNumber"`
	DatQuotationDate   string  `json:"datQuotationDate"`
	StrCustomerName    string  `json:"strCustomerName"`
	DblTotalAmount     float64 `json:"dblTotalAmount"`
	StrStatus          string  `json:"strStatus"`
	IntItemCount       int     `json:"intItemCount"`
}

// CreateQuotationPayload is the request body for /quotation/add.
type CreateQuotationPayload struct {
	StrCustomerName    string        `json:"strCustomerName"`
	StrCustomerPhone   *string       `json:"strCustomerPhone"`
	StrCustomerAddress *string       `json:"strCustomerAddress"`
	DatQuotationDate   *string       `json:"datQuotationDate"`
	DatValidUntil      *string       `json:"datValidUntil"`
	DblTaxPercent      float64       `json:"dblTaxPercent"`
	DblDiscountAmount  float64       `json:"dblDiscountAmount"`
	StrNotes           *string       `json:"strNotes"`
	StrStatus          string        `json:"strStatus"`
	LstItems           []ItemPayload `json:"lstItems"`
}

// UpdateQuotationPayload is the request body for /quotation/update.
// Items, when present, wholly replace the persisted item list.
type UpdateQuotationPayload struct {
	IntPkQuotationID int64 `json:"intPkQuotationId"`
	CreateQuotationPayload
}

type quotationResponse struct {
	Envelope
	Data *QuotationRecord `json:"data"`
}

type quotationListResponse struct {
	Envelope
	LstQuotation []QuotationSummary `json:"lstQuotation"`
}

type quotationIDRequest struct {
	IntQuotationID int64 `json:"intQuotationId"`
}

// QuotationService talks to the quotation persistence endpoints.
type QuotationService struct {
	client *Client
}

// NewQuotationService constructs a QuotationService.
func NewQuotationService(client *Client) *QuotationService {
	return &QuotationService{client: client}
}

// Create persists a new quotation and returns the saved record with
// its generated number.
func (s *QuotationService) Create(ctx context.Context, payload CreateQuotationPayload) (*QuotationRecord, error) {
	var resp quotationResponse
	if err := s.client.Call(ctx, "/quotation/add", payload, &resp); err != nil {
		return nil, fmt.Errorf("create quotation: %w", err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("create quotation: empty response")
	}
	return resp.Data, nil
}

// Update replaces a saved quotation addressed by its server id.
func (s *QuotationService) Update(ctx context.Context, payload UpdateQuotationPayload) (*QuotationRecord, error) {
	var resp quotationResponse
	if err := s.client.Call(ctx, "/quotation/update", payload, &resp); err != nil {
		return nil, fmt.Errorf("update quotation: %w", err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("update quotation: empty response")
	}
	return resp.Data, nil
}

// Get fetches one quotation with all items.
func (s *QuotationService) Get(ctx context.Context, id int64) (*QuotationRecord, error) {
	var resp quotationResponse
	if err := s.client.Call(ctx, "/quotation/get", quotationIDRequest{IntQuotationID: id}, &resp); err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	if resp.Empty() || resp.Data == nil {
		return nil, fmt.Errorf("get quotation %d: %w", id, httpx.ErrNotFound)
	}
	return resp.Data, nil
}

// Delete removes a quotation.
func (s *QuotationService) Delete(ctx context.Context, id int64) error {
	var resp struct{ Envelope }
	if err := s.client.Call(ctx, "/quotation/delete", quotationIDRequest{IntQuotationID: id}, &resp); err != nil {
		return fmt.Errorf("delete quotation: %w", err)
	}
	return nil
}

// List fetches quotation summaries. "No data" yields an empty slice.
func (s *QuotationService) List(ctx context.Context) ([]QuotationSummary, error) {
	var resp quotationListResponse
	if err := s.client.Call(ctx, "/quotation/list", nil, &resp); err != nil {
		return nil, fmt.Errorf("list quotations: %w", err)
	}
	return resp.LstQuotation, nil
}
