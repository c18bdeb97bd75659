package backend

import (
	"context"
	"fmt"
)

// AIItem is one structured line item returned by the AI parser.
type AIItem struct {
	IntInventoryID *int64  `json:"intInventoryId"`
	StrItemCode    *string `json:"strItemCode"`
	StrItemName    string  `json:"strItemName"`
	StrUnit        string  `json:"strUnit"`
	DblQuantity    float64 `json:"dblQuantity"`
	DblUnitPrice   float64 `json:"dblUnitPrice"`
}

// AIParseResult is the structured output of the text-to-items service.
type AIParseResult struct {
	Envelope
	LstItems         []AIItem `json:"lstItems"`
	StrCustomerName  string   `json:"strCustomerName"`
	StrCustomerPhone string   `json:"strCustomerPhone"`
	StrNotes         string   `json:"strNotes"`
}

type aiProcessRequest struct {
	StrRawText string `json:"strRawText"`
}

// AIService delegates free-text parsing to the backend AI endpoint.
type AIService struct {
	client *Client
}

// NewAIService constructs an AIService.
func NewAIService(client *Client) *AIService {
	return &AIService{client: client}
}

// Process sends the raw text for structured extraction. Best effort:
// callers fall back to local parsing on any error.
func (s *AIService) Process(ctx context.Context, rawText string) (*AIParseResult, error) {
	var resp AIParseResult
	if err := s.client.Call(ctx, "/ai/process", aiProcessRequest{StrRawText: rawText}, &resp); err != nil {
		return nil, fmt.Errorf("ai process: %w", err)
	}
	return &resp, nil
}
