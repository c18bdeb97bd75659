package backend

import (
	"context"
	"fmt"
)

// InventoryItem is the wire shape of one inventory catalog row.
type InventoryItem struct {
	IntPkInventoryID int64   `json:"intPkInventoryId"`
	StrItemCode      string  `json:"strItemCode"`
	StrItemName      string  `json:"strItemName"`
	StrCategory      string  `json:"strCategory"`
	StrUnit          string  `json:"strUnit"`
	DblUnitPrice     float64 `json:"dblUnitPrice"`
	IntStockQuantity int     `json:"intStockQuantity"`
}

type inventoryListResponse struct {
	Envelope
	LstItem []InventoryItem `json:"lstItem"`
}

// InventoryService reads the inventory catalog from the backend.
type InventoryService struct {
	client *Client
}

// NewInventoryService constructs an InventoryService.
func NewInventoryService(client *Client) *InventoryService {
	return &InventoryService{client: client}
}

// List fetches all catalog rows. A "no data" envelope yields an empty
// slice, not an error.
func (s *InventoryService) List(ctx context.Context) ([]InventoryItem, error) {
	var resp inventoryListResponse
	if err := s.client.Call(ctx, "/inventory/list", nil, &resp); err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return resp.LstItem, nil
}
