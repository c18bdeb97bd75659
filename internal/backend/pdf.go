package backend

import (
	"context"
	"fmt"
)

// PDFService requests rendered documents from the backend. Rendering
// itself is entirely backend-owned; callers only stream the bytes.
type PDFService struct {
	client *Client
}

// NewPDFService constructs a PDFService.
func NewPDFService(client *Client) *PDFService {
	return &PDFService{client: client}
}

// Quotation renders a saved quotation to PDF.
func (s *PDFService) Quotation(ctx context.Context, id int64) ([]byte, error) {
	data, err := s.client.CallRaw(ctx, "/pdf/quotation", quotationIDRequest{IntQuotationID: id})
	if err != nil {
		return nil, fmt.Errorf("render quotation pdf: %w", err)
	}
	return data, nil
}

// Invoice renders a saved invoice to PDF.
func (s *PDFService) Invoice(ctx context.Context, id int64) ([]byte, error) {
	data, err := s.client.CallRaw(ctx, "/pdf/invoice", invoiceIDRequest{IntInvoiceID: id})
	if err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return data, nil
}
