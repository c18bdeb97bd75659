package wizard

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quotedesk/quotedesk/internal/backend"
	"github.com/quotedesk/quotedesk/internal/catalog"
	"github.com/quotedesk/quotedesk/internal/platform/httpx"
)

type memoryDraftStore struct {
	docs   map[string]*Document
	clears int
}

func newMemoryDraftStore() *memoryDraftStore {
	return &memoryDraftStore{docs: make(map[string]*Document)}
}

func (s *memoryDraftStore) key(sessionID string, kind Kind) string {
	return sessionID + ":" + string(kind)
}

func (s *memoryDraftStore) Load(ctx context.Context, sessionID string, kind Kind) *Document {
	return s.docs[s.key(sessionID, kind)]
}

func (s *memoryDraftStore) Save(ctx context.Context, sessionID string, doc *Document) {
	s.docs[s.key(sessionID, doc.Kind)] = doc
}

func (s *memoryDraftStore) Clear(ctx context.Context, sessionID string, kind Kind) {
	s.clears++
	delete(s.docs, s.key(sessionID, kind))
}

type fakeQuotations struct {
	records   map[int64]*backend.QuotationRecord
	nextID    int64
	created   []backend.CreateQuotationPayload
	updated   []backend.UpdateQuotationPayload
	createErr error
	updateErr error
}

func newFakeQuotations() *fakeQuotations {
	return &fakeQuotations{records: make(map[int64]*backend.QuotationRecord)}
}

func (f *fakeQuotations) Create(ctx context.Context, payload backend.CreateQuotationPayload) (*backend.QuotationRecord, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, payload)
	f.nextID++
	record := &backend.QuotationRecord{
		IntPkQuotationID:   f.nextID,
		StrQuotationNumber: fmt.Sprintf("QT-2025-%04d", f.nextID),
		DatQuotationDate:   "2025-11-02",
		StrCustomerName:    payload.StrCustomerName,
		StrCustomerPhone:   payload.StrCustomerPhone,
		StrCustomerAddress: payload.StrCustomerAddress,
		DblTaxPercent:      payload.DblTaxPercent,
		DblDiscountAmount:  payload.DblDiscountAmount,
		StrNotes:           payload.StrNotes,
		StrStatus:          payload.StrStatus,
	}
	for i, item := range payload.LstItems {
		record.LstItems = append(record.LstItems, backend.QuotationItem{
			IntPkQuotationItemID: int64(i + 1),
			IntInventoryID:       item.IntInventoryID,
			StrItemCode:          item.StrItemCode,
			StrItemName:          item.StrItemName,
			StrUnit:              item.StrUnit,
			DblQuantity:          item.DblQuantity,
			DblUnitPrice:         item.DblUnitPrice,
			IntSortOrder:         item.IntSortOrder,
		})
	}
	f.records[record.IntPkQuotationID] = record
	return record, nil
}

func (f *fakeQuotations) Update(ctx context.Context, payload backend.UpdateQuotationPayload) (*backend.QuotationRecord, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updated = append(f.updated, payload)
	record, ok := f.records[payload.IntPkQuotationID]
	if !ok {
		return nil, fmt.Errorf("get quotation %d: %w", payload.IntPkQuotationID, httpx.ErrNotFound)
	}
	record.StrCustomerName = payload.StrCustomerName
	return record, nil
}

func (f *fakeQuotations) Get(ctx context.Context, id int64) (*backend.QuotationRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, fmt.Errorf("get quotation %d: %w", id, httpx.ErrNotFound)
	}
	return record, nil
}

type fakeInvoices struct {
	nextID    int64
	created   []backend.CreateInvoicePayload
	createErr error
}

func (f *fakeInvoices) Create(ctx context.Context, payload backend.CreateInvoicePayload) (*backend.InvoiceRecord, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, payload)
	f.nextID++
	return &backend.InvoiceRecord{
		IntPkInvoiceID:   f.nextID,
		StrInvoiceNumber: fmt.Sprintf("INV-2025-%04d", f.nextID),
		DatInvoiceDate:   "2025-11-02",
		StrPaymentStatus: "pending",
		IntQuotationID:   payload.IntQuotationID,
	}, nil
}

type stubCatalog struct {
	entries []catalog.Entry
	err     error
}

func (s *stubCatalog) Entries(ctx context.Context, sessionID string) ([]catalog.Entry, error) {
	return s.entries, s.err
}

type stubParser struct {
	outcome ParseOutcome
	err     error
}

func (s *stubParser) Parse(ctx context.Context, rawText string, entries []catalog.Entry) (ParseOutcome, error) {
	return s.outcome, s.err
}

type serviceFixture struct {
	service    *Service
	drafts     *memoryDraftStore
	quotations *fakeQuotations
	invoices   *fakeInvoices
	catalog    *stubCatalog
	parser     *stubParser
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		drafts:     newMemoryDraftStore(),
		quotations: newFakeQuotations(),
		invoices:   &fakeInvoices{},
		catalog:    &stubCatalog{},
		parser:     &stubParser{},
	}
	f.service = NewService(f.drafts, f.quotations, f.invoices, f.catalog, f.parser, testLogger())
	return f
}

const sid = "sess-1"

func readyQuotation(t *testing.T, f *serviceFixture) *Document {
	t.Helper()
	_, err := f.service.AddCustomItem(context.Background(), sid, KindQuotation, "Cement", "410")
	require.NoError(t, err)
	doc, err := f.service.SetCustomer(context.Background(), sid, KindQuotation, Customer{
		Name:  "Sharma Traders",
		Phone: "9876543210",
	})
	require.NoError(t, err)
	return doc
}

func TestSaveCreatesQuotationAndRecordsServerState(t *testing.T) {
	f := newServiceFixture()
	readyQuotation(t, f)

	doc, err := f.service.Save(context.Background(), sid, KindQuotation)
	require.NoError(t, err)
	require.True(t, doc.Saved())
	require.Equal(t, "QT-2025-0001", doc.Server.Number)
	require.Equal(t, "draft", doc.Server.Status)
	require.False(t, doc.Updated)
	require.Len(t, f.quotations.created, 1)
	require.Equal(t, "Sharma Traders", f.quotations.created[0].StrCustomerName)

	// The stored draft now mirrors the saved state, so a reload shows
	// the success screen instead of rearming the guard.
	stored := f.drafts.Load(context.Background(), sid, KindQuotation)
	require.NotNil(t, stored)
	require.True(t, stored.Saved())

	armed, err := f.service.Guard(context.Background(), sid, KindQuotation)
	require.NoError(t, err)
	require.False(t, armed)
}

func TestResaveQuotationIssuesUpdate(t *testing.T) {
	f := newServiceFixture()
	readyQuotation(t, f)

	_, err := f.service.Save(context.Background(), sid, KindQuotation)
	require.NoError(t, err)

	_, err = f.service.SetCustomer(context.Background(), sid, KindQuotation, Customer{
		Name:  "Sharma Traders Pvt Ltd",
		Phone: "9876543210",
	})
	require.NoError(t, err)

	doc, err := f.service.Save(context.Background(), sid, KindQuotation)
	require.NoError(t, err)
	require.True(t, doc.Updated)
	require.Len(t, f.quotations.created, 1)
	require.Len(t, f.quotations.updated, 1)
	require.Equal(t, int64(1), f.quotations.updated[0].IntPkQuotationID)
	require.Equal(t, "Sharma Traders Pvt Ltd", f.quotations.updated[0].StrCustomerName)
}

func TestSavedInvoiceIsLocked(t *testing.T) {
	f := newServiceFixture()
	_, err := f.service.AddCustomItem(context.Background(), sid, KindInvoice, "Labour", "500")
	require.NoError(t, err)
	_, err = f.service.SetCustomer(context.Background(), sid, KindInvoice, Customer{Name: "Sharma Traders"})
	require.NoError(t, err)

	doc, err := f.service.Save(context.Background(), sid, KindInvoice)
	require.NoError(t, err)
	require.True(t, doc.Saved())

	_, err = f.service.Save(context.Background(), sid, KindInvoice)
	require.ErrorIs(t, err, ErrInvoiceLocked)
	require.Len(t, f.invoices.created, 1)
}

func TestSaveValidatesBeforeAnyBackendCall(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.Save(context.Background(), sid, KindQuotation)
	require.ErrorIs(t, err, ErrNothingToSave)

	_, err = f.service.AddCustomItem(context.Background(), sid, KindQuotation, "Cement", "410")
	require.NoError(t, err)
	_, err = f.service.Save(context.Background(), sid, KindQuotation)
	require.ErrorIs(t, err, ErrCustomerNameRequired)

	_, err = f.service.SetCustomer(context.Background(), sid, KindQuotation, Customer{Name: "Sharma Traders"})
	require.NoError(t, err)
	_, err = f.service.Save(context.Background(), sid, KindQuotation)
	require.ErrorIs(t, err, ErrCustomerPhoneNeeded)

	require.Empty(t, f.quotations.created)
}

func TestSaveFailureLeavesDraftUnsaved(t *testing.T) {
	f := newServiceFixture()
	readyQuotation(t, f)
	f.quotations.createErr = &backend.RejectedError{Message: "quotation limit reached"}

	_, err := f.service.Save(context.Background(), sid, KindQuotation)
	require.Error(t, err)

	doc, err := f.service.Get(context.Background(), sid, KindQuotation)
	require.NoError(t, err)
	require.False(t, doc.Saved())

	armed, err := f.service.Guard(context.Background(), sid, KindQuotation)
	require.NoError(t, err)
	require.True(t, armed)
}

func TestConvertFromQuotationSeedsUnsavedInvoice(t *testing.T) {
	f := newServiceFixture()
	readyQuotation(t, f)
	saved, err := f.service.Save(context.Background(), sid, KindQuotation)
	require.NoError(t, err)

	// Leave a stale saved invoice draft behind to prove conversion
	// discards it.
	stale := NewDocument(KindInvoice)
	stale.Server = &ServerState{ID: 99, Number: "INV-2025-0099"}
	f.drafts.Save(context.Background(), sid, stale)

	doc, err := f.service.ConvertFromQuotation(context.Background(), sid, saved.Server.ID)
	require.NoError(t, err)
	require.Equal(t, KindInvoice, doc.Kind)
	require.False(t, doc.Saved())
	require.Equal(t, StepItems, doc.Step)
	require.Equal(t, ModeManual, doc.Mode)
	require.NotNil(t, doc.Source)
	require.Equal(t, saved.Server.ID, doc.Source.QuotationID)
	require.Equal(t, saved.Server.Number, doc.Source.Number)

	require.Len(t, doc.Items, 1)
	require.Equal(t, "Cement", doc.Items[0].Name)
	require.Equal(t, 410.0, doc.Items[0].UnitPrice)
	require.NotEmpty(t, doc.Items[0].ID)

	require.Equal(t, "Sharma Traders", doc.Customer.Name)

	stored := f.drafts.Load(context.Background(), sid, KindInvoice)
	require.NotNil(t, stored)
	require.False(t, stored.Saved())
}

func TestConvertedInvoiceCarriesQuotationLinkOnSave(t *testing.T) {
	f := newServiceFixture()
	readyQuotation(t, f)
	saved, err := f.service.Save(context.Background(), sid, KindQuotation)
	require.NoError(t, err)

	_, err = f.service.ConvertFromQuotation(context.Background(), sid, saved.Server.ID)
	require.NoError(t, err)

	doc, err := f.service.Save(context.Background(), sid, KindInvoice)
	require.NoError(t, err)
	require.True(t, doc.Saved())
	require.Len(t, f.invoices.created, 1)
	require.NotNil(t, f.invoices.created[0].IntQuotationID)
	require.Equal(t, saved.Server.ID, *f.invoices.created[0].IntQuotationID)
}

func TestConvertFromMissingQuotation(t *testing.T) {
	f := newServiceFixture()
	_, err := f.service.ConvertFromQuotation(context.Background(), sid, 42)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestParseTextReplacesItemsAndSeedsCustomer(t *testing.T) {
	f := newServiceFixture()
	f.parser.outcome = ParseOutcome{
		Source: ParseSourceRemote,
		Items: []LineItem{
			{ID: "p1", Name: "Cement", Quantity: 100, UnitPrice: 410, Unit: "bag"},
		},
		CustomerName:  "Sharma Traders",
		CustomerPhone: "9876543210",
	}

	_, err := f.service.AddCustomItem(context.Background(), sid, KindQuotation, "Old row", "1")
	require.NoError(t, err)

	doc, source, err := f.service.ParseText(context.Background(), sid, KindQuotation, "100 bags cement")
	require.NoError(t, err)
	require.Equal(t, ParseSourceRemote, source)
	require.Equal(t, StepItems, doc.Step)
	require.Len(t, doc.Items, 1)
	require.Equal(t, "Cement", doc.Items[0].Name)
	require.Equal(t, "Sharma Traders", doc.Customer.Name)
}

func TestParseTextDoesNotOverwriteExistingCustomer(t *testing.T) {
	f := newServiceFixture()
	f.parser.outcome = ParseOutcome{
		Source:       ParseSourceLocal,
		Items:        []LineItem{{ID: "p1", Name: "Cement", Quantity: 1}},
		CustomerName: "Parsed Name",
	}

	_, err := f.service.SetCustomer(context.Background(), sid, KindQuotation, Customer{Name: "Existing Name"})
	require.NoError(t, err)

	doc, _, err := f.service.ParseText(context.Background(), sid, KindQuotation, "cement")
	require.NoError(t, err)
	require.Equal(t, "Existing Name", doc.Customer.Name)
}

func TestParseTextRejectsEmptyInput(t *testing.T) {
	f := newServiceFixture()
	_, _, err := f.service.ParseText(context.Background(), sid, KindQuotation, "   ")
	require.ErrorIs(t, err, ErrTextRequired)
}

func TestParseTextSurfacesTotalFailure(t *testing.T) {
	f := newServiceFixture()
	f.parser.outcome = ParseOutcome{Source: ParseSourceFailed}

	_, _, err := f.service.ParseText(context.Background(), sid, KindQuotation, "gibberish")
	require.ErrorIs(t, err, ErrParseFailed)
}

func TestSwitchToManualSeedsBlankRow(t *testing.T) {
	f := newServiceFixture()
	doc, err := f.service.SwitchMode(context.Background(), sid, KindQuotation, ModeManual)
	require.NoError(t, err)
	require.Equal(t, ModeManual, doc.Mode)
	require.Len(t, doc.Items, 1)
	require.True(t, doc.Items[0].IsCustom)

	// Switching back keeps whatever was entered.
	doc, err = f.service.SwitchMode(context.Background(), sid, KindQuotation, ModeAI)
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)

	_, err = f.service.SwitchMode(context.Background(), sid, KindQuotation, Mode("voice"))
	require.ErrorIs(t, err, ErrUnknownMode)
}

func TestAddCatalogItemLooksUpEntry(t *testing.T) {
	f := newServiceFixture()
	f.catalog.entries = []catalog.Entry{
		{ID: 5, Code: "CEM-50", Name: "Cement OPC 50kg", UnitPrice: 410, Unit: "bag"},
	}

	doc, err := f.service.AddCatalogItem(context.Background(), sid, KindQuotation, 5)
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)
	require.Equal(t, 410.0, doc.Items[0].UnitPrice)

	_, err = f.service.AddCatalogItem(context.Background(), sid, KindQuotation, 404)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestTaxAndDiscountClamping(t *testing.T) {
	f := newServiceFixture()

	doc, err := f.service.SetTax(context.Background(), sid, KindQuotation, 150)
	require.NoError(t, err)
	require.Equal(t, 100.0, doc.TaxPercent)

	doc, err = f.service.SetTax(context.Background(), sid, KindQuotation, -3)
	require.NoError(t, err)
	require.Equal(t, 0.0, doc.TaxPercent)

	doc, err = f.service.SetDiscount(context.Background(), sid, KindQuotation, -50)
	require.NoError(t, err)
	require.Equal(t, 0.0, doc.DiscountAmount)
}

func TestFreshStartDiscardsEverything(t *testing.T) {
	f := newServiceFixture()
	readyQuotation(t, f)

	doc, err := f.service.FreshStart(context.Background(), sid, KindQuotation)
	require.NoError(t, err)
	require.Empty(t, doc.Items)
	require.True(t, doc.Customer.Empty())
	require.Nil(t, f.drafts.Load(context.Background(), sid, KindQuotation))
}

func TestGuardArmsOnlyWithUnsavedWork(t *testing.T) {
	f := newServiceFixture()

	armed, err := f.service.Guard(context.Background(), sid, KindQuotation)
	require.NoError(t, err)
	require.False(t, armed)

	_, err = f.service.AddCustomItem(context.Background(), sid, KindQuotation, "Cement", "410")
	require.NoError(t, err)
	armed, err = f.service.Guard(context.Background(), sid, KindQuotation)
	require.NoError(t, err)
	require.True(t, armed)
}

func TestUnknownKindRejectedEverywhere(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.Get(context.Background(), sid, Kind("receipt"))
	require.ErrorIs(t, err, ErrUnknownKind)
	_, err = f.service.Save(context.Background(), sid, Kind("receipt"))
	require.ErrorIs(t, err, ErrUnknownKind)
	_, _, err = f.service.ParseText(context.Background(), sid, Kind("receipt"), "text")
	require.ErrorIs(t, err, ErrUnknownKind)
}
