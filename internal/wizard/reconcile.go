package wizard

import (
	"strconv"
	"strings"

	"github.com/quotedesk/quotedesk/internal/catalog"
)

// AddFromCatalog adds a catalog entry to the draft. Picking the same
// entry again increments the existing row's quantity instead of
// appending a duplicate. The unit price is copied at add-time and
// never re-synced against later catalog changes.
func (d *Document) AddFromCatalog(entry catalog.Entry) {
	for i := range d.Items {
		if strings.EqualFold(d.Items[i].Name, entry.Name) {
			d.Items[i].Quantity++
			return
		}
	}
	unit := entry.Unit
	if unit == "" {
		unit = "piece"
	}
	d.Items = append(d.Items, LineItem{
		ID:        newItemID(),
		Name:      entry.Name,
		Quantity:  1,
		UnitPrice: entry.UnitPrice,
		Unit:      unit,
		InventoryRef: &InventoryRef{
			ID:   entry.ID,
			Code: entry.Code,
		},
		IsCustom: false,
	})
}

// AddCustom appends a catalog-less item. The name must be non-empty
// and the rate a parseable non-negative number.
func (d *Document) AddCustom(name, rate string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrItemNameRequired
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(rate), 64)
	if err != nil || parsed < 0 {
		return ErrItemRateInvalid
	}
	d.Items = append(d.Items, LineItem{
		ID:        newItemID(),
		Name:      name,
		Quantity:  1,
		UnitPrice: parsed,
		Unit:      "piece",
		IsCustom:  true,
	})
	return nil
}

// AddBlank appends an empty row for manual entry.
func (d *Document) AddBlank() {
	d.Items = append(d.Items, LineItem{
		ID:       newItemID(),
		Quantity: 1,
		Unit:     "piece",
		IsCustom: true,
	})
}

// UpdateQuantity applies a signed delta to a row's quantity, clamped
// to a minimum of 1.
func (d *Document) UpdateQuantity(id string, delta float64) error {
	item := d.find(id)
	if item == nil {
		return ErrItemNotFound
	}
	item.Quantity += delta
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	return nil
}

// UpdateRate sets a row's unit price from raw user input. Unparseable
// or negative input coerces to 0.
func (d *Document) UpdateRate(id string, raw string) error {
	item := d.find(id)
	if item == nil {
		return ErrItemNotFound
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || parsed < 0 {
		parsed = 0
	}
	item.UnitPrice = parsed
	return nil
}

// UpdateName renames a row in place.
func (d *Document) UpdateName(id string, name string) error {
	item := d.find(id)
	if item == nil {
		return ErrItemNotFound
	}
	item.Name = strings.TrimSpace(name)
	return nil
}

// Remove deletes a row. The list may become empty; step gating then
// blocks progression until an item is added back.
func (d *Document) Remove(id string) error {
	for i := range d.Items {
		if d.Items[i].ID == id {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

// ReplaceItems wholly replaces the cart, e.g. after re-running the
// free-text parser.
func (d *Document) ReplaceItems(items []LineItem) {
	if items == nil {
		items = []LineItem{}
	}
	d.Items = items
}

func (d *Document) find(id string) *LineItem {
	for i := range d.Items {
		if d.Items[i].ID == id {
			return &d.Items[i]
		}
	}
	return nil
}
