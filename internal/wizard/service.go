package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/quotedesk/quotedesk/internal/auth"
	"github.com/quotedesk/quotedesk/internal/backend"
	"github.com/quotedesk/quotedesk/internal/catalog"
)

// DraftStore durably mirrors in-progress documents. Implementations
// swallow their own failures: losing draft durability is non-fatal.
type DraftStore interface {
	Load(ctx context.Context, sessionID string, kind Kind) *Document
	Save(ctx context.Context, sessionID string, doc *Document)
	Clear(ctx context.Context, sessionID string, kind Kind)
}

// QuotationBackend is the slice of the quotation persistence API the
// wizard needs.
type QuotationBackend interface {
	Create(ctx context.Context, payload backend.CreateQuotationPayload) (*backend.QuotationRecord, error)
	Update(ctx context.Context, payload backend.UpdateQuotationPayload) (*backend.QuotationRecord, error)
	Get(ctx context.Context, id int64) (*backend.QuotationRecord, error)
}

// InvoiceBackend is the slice of the invoice persistence API the
// wizard needs. There is no Update: invoices are immutable post-save.
type InvoiceBackend interface {
	Create(ctx context.Context, payload backend.CreateInvoicePayload) (*backend.InvoiceRecord, error)
}

// CatalogProvider serves the session's inventory catalog.
type CatalogProvider interface {
	Entries(ctx context.Context, sessionID string) ([]catalog.Entry, error)
}

// TextParser runs the two-tier free-text parse.
type TextParser interface {
	Parse(ctx context.Context, rawText string, entries []catalog.Entry) (ParseOutcome, error)
}

// Service orchestrates the drafting workflow: it loads the draft for
// the session, applies one mutation, mirrors the result back to the
// draft store and, on explicit save, talks to the backend.
type Service struct {
	drafts     DraftStore
	quotations QuotationBackend
	invoices   InvoiceBackend
	catalog    CatalogProvider
	parser     TextParser
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs a wizard Service.
func NewService(
	drafts DraftStore,
	quotations QuotationBackend,
	invoices InvoiceBackend,
	catalogProvider CatalogProvider,
	parser TextParser,
	logger *slog.Logger,
) *Service {
	return &Service{
		drafts:     drafts,
		quotations: quotations,
		invoices:   invoices,
		catalog:    catalogProvider,
		parser:     parser,
		logger:     logger,
		now:        time.Now,
	}
}

// Get returns the session's current draft, starting a fresh one if
// none survives in the store.
func (s *Service) Get(ctx context.Context, sessionID string, kind Kind) (*Document, error) {
	if !kind.Valid() {
		return nil, ErrUnknownKind
	}
	return s.load(ctx, sessionID, kind), nil
}

// SwitchMode changes the acquisition mode at the input step. Items
// produced in the other mode are kept; only an explicit fresh start
// discards them. Entering manual mode seeds one blank row.
func (s *Service) SwitchMode(ctx context.Context, sessionID string, kind Kind, mode Mode) (*Document, error) {
	if mode != ModeAI && mode != ModeManual {
		return nil, ErrUnknownMode
	}
	return s.mutate(ctx, sessionID, kind, func(doc *Document) error {
		doc.Mode = mode
		if mode == ModeManual && len(doc.Items) == 0 {
			doc.AddBlank()
		}
		return nil
	})
}

// ParseText runs the free-text parse and, on success, wholly replaces
// the cart and advances to the items step. Re-running the parse
// overwrites earlier parse results; manual edits to quantities or
// rates never trigger a re-parse.
func (s *Service) ParseText(ctx context.Context, sessionID string, kind Kind, rawText string) (*Document, ParseSource, error) {
	if !kind.Valid() {
		return nil, ParseSourceFailed, ErrUnknownKind
	}
	if strings.TrimSpace(rawText) == "" {
		return nil, ParseSourceFailed, ErrTextRequired
	}

	entries, err := s.catalog.Entries(ctx, sessionID)
	if err != nil {
		if auth.IsUnauthorized(err) {
			return nil, ParseSourceFailed, err
		}
		// A missing catalog only weakens fallback matching.
		s.logger.Warn("catalog unavailable for parse", slog.Any("error", err))
		entries = nil
	}

	outcome, err := s.parser.Parse(ctx, rawText, entries)
	if err != nil {
		return nil, ParseSourceFailed, err
	}
	if outcome.Source == ParseSourceFailed {
		return nil, ParseSourceFailed, ErrParseFailed
	}

	doc, err := s.mutate(ctx, sessionID, kind, func(doc *Document) error {
		doc.RawText = rawText
		doc.ReplaceItems(outcome.Items)
		if outcome.CustomerName != "" && doc.Customer.Name == "" {
			doc.Customer.Name = outcome.CustomerName
			doc.Customer.Phone = outcome.CustomerPhone
		}
		doc.Step = StepItems
		return nil
	})
	if err != nil {
		return nil, ParseSourceFailed, err
	}
	return doc, outcome.Source, nil
}

// AddCatalogItem adds the catalog entry with the given id, merging
// quantities on repeat picks.
func (s *Service) AddCatalogItem(ctx context.Context, sessionID string, kind Kind, entryID int64) (*Document, error) {
	entries, err := s.catalog.Entries(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	entry, ok := catalog.ByID(entries, entryID)
	if !ok {
		return nil, fmt.Errorf("catalog entry %d: %w", entryID, ErrItemNotFound)
	}
	return s.mutate(ctx, sessionID, kind, func(doc *Document) error {
		doc.AddFromCatalog(entry)
		return nil
	})
}

// AddCustomItem appends a catalog-less row.
func (s *Service) AddCustomItem(ctx context.Context, sessionID string, kind Kind, name, rate string) (*Document, error) {
	return s.mutate(ctx, sessionID, kind, func(doc *Document) error {
		return doc.AddCustom(name, rate)
	})
}

// AddBlankItem appends an empty row for manual entry.
func (s *Service) AddBlankItem(ctx context.Context, sessionID string, kind Kind) (*Document, error) {
	return s.mutate(ctx, sessionID, kind, func(doc *Document) error {
		doc.AddBlank()
		return nil
	})
}

// UpdateQuantity applies a delta to a row, clamped at 1.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID string, kind Kind, itemID string, delta float64) (*Document, error) {
	return s.mutate(ctx, sessionID, kind, func(doc *Document) error {
		return doc.UpdateQuantity(itemID, delta)
	})
}

// UpdateRate sets a row's rate from raw input.
func (s *Service) UpdateRate(ctx context.Context, sessionID string, kind Kind, itemID, raw string) (*Document, error) {
	return s.mutate(ctx, sessionID, kind, func(doc *Document) error {
		return doc.UpdateRate(itemID, raw)
	})
}

// UpdateItemName renames a row.
func (s *Service) UpdateItemName(ctx context.Context, sessionID string, kind Kind, itemID, name string) (*Document, error) {
	return s.mutate(ctx, sessionID, kind, func(doc *Document) error {
		return doc.UpdateName(itemID, name)
	})
}

// RemoveItem deletes a row.
func (s *Service) RemoveItem(ctx context.Context, sessionID string, kind Kind, itemID string) (*Document, error) {
	return s.mutate(ctx, sessionID, kind, func(doc *Document) error {
		return doc.Remove(itemID)
	})
}

// SetTax updates the tax percentage, clamped to 0..100.
func (s *Service) SetTax(ctx context.Context, sessionID string, kind Kind, percent float64) (*Document, error) {
	return s.mutate(ctx, sessionID, kind, func(doc *Document) error {
		if percent < 0 {
			percent = 0
		}
		if percent > 100 {
			percent = 100
		}
		doc.TaxPercent = percent
		return nil
	})
}

// SetDiscount updates the flat discount amount, clamped at 0.
func (s *Service) SetDiscount(ctx context.Context, sessionID string, kind Kind, amount float64) (*Document, error) {
	return s.mutate(ctx, sessionID, kind, func(doc *Document) error {
		if amount < 0 {
			amount = 0
		}
		doc.DiscountAmount = amount
		return nil
	})
}

// SetCustomer updates the buyer details.
func (s *Service) SetCustomer(ctx context.Context, sessionID string, kind Kind, customer Customer) (*Document, error) {
	return s.mutate(ctx, sessionID, kind, func(doc *Document) error {
		doc.Customer = customer
		return nil
	})
}

// SetDates updates the optional validity/due dates.
func (s *Service) SetDates(ctx context.Context, sessionID string, kind Kind, validUntil, dueDate string) (*Document, error) {
	return s.mutate(ctx, sessionID, kind, func(doc *Document) error {
		doc.ValidUntil = validUntil
		doc.DueDate = dueDate
		return nil
	})
}

// SetNotes updates the free-form notes.
func (s *Service) SetNotes(ctx context.Context, sessionID string, kind Kind, notes string) (*Document, error) {
	return s.mutate(ctx, sessionID, kind, func(doc *Document) error {
		doc.Notes = notes
		return nil
	})
}

// Advance moves one step forward after gating.
func (s *Service) Advance(ctx context.Context, sessionID string, kind Kind) (*Document, error) {
	return s.mutate(ctx, sessionID, kind, func(doc *Document) error {
		return doc.Advance()
	})
}

// Back moves one step backward; always permitted.
func (s *Service) Back(ctx context.Context, sessionID string, kind Kind) (*Document, error) {
	return s.mutate(ctx, sessionID, kind, func(doc *Document) error {
		doc.Back()
		return nil
	})
}

// FreshStart discards the draft entirely: items, customer, raw text
// and the stored mirror.
func (s *Service) FreshStart(ctx context.Context, sessionID string, kind Kind) (*Document, error) {
	if !kind.Valid() {
		return nil, ErrUnknownKind
	}
	s.drafts.Clear(ctx, sessionID, kind)
	return NewDocument(kind), nil
}

// Guard reports whether the unsaved-changes warning should arm.
func (s *Service) Guard(ctx context.Context, sessionID string, kind Kind) (bool, error) {
	if !kind.Valid() {
		return false, ErrUnknownKind
	}
	doc := s.drafts.Load(ctx, sessionID, kind)
	if doc == nil {
		return false, nil
	}
	return doc.HasUnsavedWork(), nil
}

// Save submits the draft to the backend. An unsaved document issues a
// create; a saved quotation issues an update addressed by the stored
// server id; a saved invoice is rejected before any network call. The
// saved state only flips after an explicit backend acknowledgment —
// failures leave the document untouched.
func (s *Service) Save(ctx context.Context, sessionID string, kind Kind) (*Document, error) {
	if !kind.Valid() {
		return nil, ErrUnknownKind
	}
	doc := s.drafts.Load(ctx, sessionID, kind)
	if doc == nil {
		return nil, ErrNothingToSave
	}
	if len(doc.Items) == 0 {
		return nil, ErrNoItems
	}
	if err := doc.CanSubmit(); err != nil {
		return nil, err
	}
	if doc.Saved() && !kind.EditableAfterSave() {
		return nil, ErrInvoiceLocked
	}

	var err error
	switch kind {
	case KindQuotation:
		err = s.saveQuotation(ctx, doc)
	case KindInvoice:
		err = s.saveInvoice(ctx, doc)
	}
	if err != nil {
		return nil, err
	}

	s.drafts.Clear(ctx, sessionID, kind)
	s.drafts.Save(ctx, sessionID, doc)
	return doc, nil
}

// ConvertFromQuotation seeds a new invoice draft from a saved
// quotation. The new document starts unsaved regardless of the source
// state, and any lingering invoice draft is discarded first so the
// fresh draft can never inherit a stale success state.
func (s *Service) ConvertFromQuotation(ctx context.Context, sessionID string, quotationID int64) (*Document, error) {
	record, err := s.quotations.Get(ctx, quotationID)
	if err != nil {
		return nil, err
	}

	doc := NewDocument(KindInvoice)
	doc.Step = StepItems
	doc.Mode = ModeManual
	doc.TaxPercent = record.DblTaxPercent
	doc.DiscountAmount = record.DblDiscountAmount
	doc.Customer = Customer{
		Name:    record.StrCustomerName,
		Phone:   strValue(record.StrCustomerPhone),
		Address: strValue(record.StrCustomerAddress),
	}
	doc.Notes = strValue(record.StrNotes)
	doc.Source = &SourceRef{
		QuotationID: record.IntPkQuotationID,
		Number:      record.StrQuotationNumber,
	}

	items := make([]LineItem, 0, len(record.LstItems))
	for _, raw := range record.LstItems {
		item := LineItem{
			ID:        newItemID(),
			Name:      raw.StrItemName,
			Quantity:  raw.DblQuantity,
			UnitPrice: raw.DblUnitPrice,
			Unit:      raw.StrUnit,
			IsCustom:  raw.IntInventoryID == nil,
		}
		if item.Unit == "" {
			item.Unit = "piece"
		}
		if raw.IntInventoryID != nil {
			item.InventoryRef = &InventoryRef{
				ID:   *raw.IntInventoryID,
				Code: strValue(raw.StrItemCode),
			}
		}
		items = append(items, item)
	}
	doc.Items = items

	s.drafts.Clear(ctx, sessionID, KindInvoice)
	s.drafts.Save(ctx, sessionID, doc)
	return doc, nil
}

func (s *Service) saveQuotation(ctx context.Context, doc *Document) error {
	payload := backend.CreateQuotationPayload{
		StrCustomerName:    doc.Customer.Name,
		StrCustomerPhone:   strPtr(doc.Customer.Phone),
		StrCustomerAddress: strPtr(doc.Customer.Address),
		DatQuotationDate:   strPtr(s.now().Format("2006-01-02")),
		DatValidUntil:      strPtr(doc.ValidUntil),
		DblTaxPercent:      doc.TaxPercent,
		DblDiscountAmount:  doc.DiscountAmount,
		StrNotes:           strPtr(doc.Notes),
		StrStatus:          "draft",
		LstItems:           itemPayloads(doc.Items),
	}

	if doc.Saved() {
		payload.StrStatus = doc.Server.Status
		payload.DatQuotationDate = strPtr(doc.Server.Date)
		record, err := s.quotations.Update(ctx, backend.UpdateQuotationPayload{
			IntPkQuotationID:       doc.Server.ID,
			CreateQuotationPayload: payload,
		})
		if err != nil {
			return err
		}
		doc.Server = quotationState(record)
		doc.Updated = true
		return nil
	}

	record, err := s.quotations.Create(ctx, payload)
	if err != nil {
		return err
	}
	doc.Server = quotationState(record)
	return nil
}

func (s *Service) saveInvoice(ctx context.Context, doc *Document) error {
	payload := backend.CreateInvoicePayload{
		StrCustomerName:    doc.Customer.Name,
		StrCustomerPhone:   strPtr(doc.Customer.Phone),
		StrCustomerAddress: strPtr(doc.Customer.Address),
		DatInvoiceDate:     strPtr(s.now().Format("2006-01-02")),
		DatDueDate:         strPtr(doc.DueDate),
		DblTaxPercent:      doc.TaxPercent,
		DblDiscountAmount:  doc.DiscountAmount,
		StrNotes:           strPtr(doc.Notes),
		StrPaymentStatus:   "pending",
		LstItems:           itemPayloads(doc.Items),
	}
	if doc.Source != nil {
		id := doc.Source.QuotationID
		payload.IntQuotationID = &id
	}

	record, err := s.invoices.Create(ctx, payload)
	if err != nil {
		return err
	}
	doc.Server = &ServerState{
		ID:     record.IntPkInvoiceID,
		Number: record.StrInvoiceNumber,
		Date:   record.DatInvoiceDate,
		Status: record.StrPaymentStatus,
	}
	return nil
}

func (s *Service) load(ctx context.Context, sessionID string, kind Kind) *Document {
	if doc := s.drafts.Load(ctx, sessionID, kind); doc != nil {
		return doc
	}
	return NewDocument(kind)
}

func (s *Service) mutate(ctx context.Context, sessionID string, kind Kind, fn func(*Document) error) (*Document, error) {
	if !kind.Valid() {
		return nil, ErrUnknownKind
	}
	doc := s.load(ctx, sessionID, kind)
	if err := fn(doc); err != nil {
		return nil, err
	}
	s.drafts.Save(ctx, sessionID, doc)
	return doc, nil
}

func quotationState(record *backend.QuotationRecord) *ServerState {
	return &ServerState{
		ID:     record.IntPkQuotationID,
		Number: record.StrQuotationNumber,
		Date:   record.DatQuotationDate,
		Status: record.StrStatus,
	}
}

func itemPayloads(items []LineItem) []backend.ItemPayload {
	payloads := make([]backend.ItemPayload, 0, len(items))
	for i, item := range items {
		payload := backend.ItemPayload{
			StrItemName:  item.Name,
			StrUnit:      item.Unit,
			DblQuantity:  item.Quantity,
			DblUnitPrice: item.UnitPrice,
			IntSortOrder: i,
		}
		if item.InventoryRef != nil {
			id := item.InventoryRef.ID
			payload.IntInventoryID = &id
			payload.StrItemCode = strPtr(item.InventoryRef.Code)
		}
		payloads = append(payloads, payload)
	}
	return payloads
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
