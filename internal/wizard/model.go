// Package wizard implements the quotation/invoice drafting workflow:
// the editable line-item cart, the step state machine, derived totals,
// and the save/convert orchestration against the backend.
package wizard

import (
	"strings"

	"github.com/google/uuid"
)

// Kind discriminates the two document flavours the wizard drafts.
type Kind string

const (
	KindQuotation Kind = "quotation"
	KindInvoice   Kind = "invoice"
)

// Valid reports whether the kind is one of the known document kinds.
func (k Kind) Valid() bool {
	return k == KindQuotation || k == KindInvoice
}

// EditableAfterSave is the per-kind editability policy: quotations may
// be re-saved after first persistence, invoices are immutable once
// created. This asymmetry is product behaviour, not an accident.
func (k Kind) EditableAfterSave() bool {
	return k == KindQuotation
}

// Mode selects how items enter the draft at the input step.
type Mode string

const (
	// ModeAI accepts free text parsed into items.
	ModeAI Mode = "ai"
	// ModeManual accepts rows entered one by one.
	ModeManual Mode = "manual"
)

// Step is the wizard position. Saved is not a step: it is an overlay
// state carried by Document.Server.
type Step string

const (
	StepInput    Step = "input"
	StepItems    Step = "items"
	StepCustomer Step = "customer"
)

// InventoryRef links a line item back to its catalog entry.
type InventoryRef struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
}

// LineItem is one row of the draft. Amount is always derived from
// quantity and unit price, never stored.
type LineItem struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Quantity     float64       `json:"quantity"`
	UnitPrice    float64       `json:"unitPrice"`
	Unit         string        `json:"unit"`
	InventoryRef *InventoryRef `json:"inventoryRef,omitempty"`
	IsCustom     bool          `json:"isCustom"`
}

// Amount is the derived row total.
func (li LineItem) Amount() float64 {
	return li.Quantity * li.UnitPrice
}

// NeedsRate flags a custom item still priced at zero. Flagged for the
// user's attention but never blocking.
func (li LineItem) NeedsRate() bool {
	return li.IsCustom && li.UnitPrice == 0
}

// Customer holds the buyer details collected at the final step.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Empty reports whether no customer field has been filled in.
func (c Customer) Empty() bool {
	return strings.TrimSpace(c.Name) == "" &&
		strings.TrimSpace(c.Phone) == "" &&
		strings.TrimSpace(c.Address) == ""
}

// ServerState is attached once the backend confirms persistence.
type ServerState struct {
	ID     int64  `json:"id"`
	Number string `json:"number"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

// SourceRef records the quotation an invoice was converted from.
type SourceRef struct {
	QuotationID int64  `json:"quotationId"`
	Number      string `json:"number"`
}

// Document is the working quotation or invoice. It is owned by one
// wizard session and mirrored to the draft store after each change.
type Document struct {
	Kind           Kind       `json:"kind"`
	Step           Step       `json:"step"`
	Mode           Mode       `json:"mode"`
	RawText        string     `json:"rawText"`
	Items          []LineItem `json:"items"`
	Customer       Customer   `json:"customer"`
	TaxPercent     float64    `json:"taxPercent"`
	DiscountAmount float64    `json:"discountAmount"`
	ValidUntil     string     `json:"validUntil,omitempty"`
	DueDate        string     `json:"dueDate,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Source         *SourceRef `json:"source,omitempty"`
	// Server is nil while unsaved; set exactly once per creation.
	Server *ServerState `json:"server,omitempty"`
	// Updated flips when a saved quotation is re-saved; it only tunes
	// the success message wording.
	Updated bool `json:"updated,omitempty"`
}

const defaultTaxPercent = 18

// NewDocument starts an empty draft of the given kind. Invoices begin
// in manual mode, and manual mode always presents one blank row.
func NewDocument(kind Kind) *Document {
	mode := ModeAI
	if kind == KindInvoice {
		mode = ModeManual
	}
	doc := &Document{
		Kind:       kind,
		Step:       StepInput,
		Mode:       mode,
		Items:      []LineItem{},
		TaxPercent: defaultTaxPercent,
	}
	if mode == ModeManual {
		doc.AddBlank()
	}
	return doc
}

// Saved reports whether the backend has confirmed persistence.
func (d *Document) Saved() bool {
	return d != nil && d.Server != nil
}

// HasUnsavedWork arms the unsaved-changes guard: the document is not
// yet saved and carries at least one non-empty field.
func (d *Document) HasUnsavedWork() bool {
	if d == nil || d.Saved() {
		return false
	}
	return len(d.Items) > 0 || !d.Customer.Empty() || strings.TrimSpace(d.RawText) != ""
}

func newItemID() string {
	return uuid.NewString()
}
