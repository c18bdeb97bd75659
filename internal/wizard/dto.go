package wizard

type modeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=ai manual"`
}

type parseRequest struct {
	RawText string `json:"rawText" validate:"required"`
}

type catalogItemRequest struct {
	EntryID int64 `json:"entryId" validate:"required,gt=0"`
}

type customItemRequest struct {
	Name string `json:"name"`
	Rate string `json:"rate"`
}

type itemNameRequest struct {
	Name string `json:"name"`
}

type quantityRequest struct {
	Delta float64 `json:"delta"`
}

type rateRequest struct {
	Rate string `json:"rate"`
}

type taxRequest struct {
	Percent float64 `json:"percent"`
}

type discountRequest struct {
	Amount float64 `json:"amount"`
}

type customerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type datesRequest struct {
	ValidUntil string `json:"validUntil"`
	DueDate    string `json:"dueDate"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type itemView struct {
	LineItem
	Amount    float64 `json:"amount"`
	NeedsRate bool    `json:"needsRate"`
}

// stateView is the single response shape of every wizard endpoint: the
// document, its derived totals and the gate verdicts the client renders
// as button states.
type stateView struct {
	*Document
	Items       []itemView  `json:"items"`
	Totals      Totals      `json:"totals"`
	CanAdvance  bool        `json:"canAdvance"`
	CanSubmit   bool        `json:"canSubmit"`
	ParseSource ParseSource `json:"parseSource,omitempty"`
}

func newStateView(doc *Document) stateView {
	items := make([]itemView, 0, len(doc.Items))
	for _, item := range doc.Items {
		items = append(items, itemView{
			LineItem:  item,
			Amount:    item.Amount(),
			NeedsRate: item.NeedsRate(),
		})
	}
	return stateView{
		Document:   doc,
		Items:      items,
		Totals:     doc.Totals(),
		CanAdvance: doc.CanAdvance() == nil,
		CanSubmit:  doc.CanSubmit() == nil,
	}
}
