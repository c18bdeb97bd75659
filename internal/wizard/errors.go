package wizard

import "errors"

// Validation errors raised before any network call. Handlers surface
// them inline; the backend never sees the request.
var (
	ErrUnknownKind          = errors.New("unknown document kind")
	ErrUnknownMode          = errors.New("unknown input mode")
	ErrTextRequired         = errors.New("describe what you need before continuing")
	ErrNoItems              = errors.New("add at least one item")
	ErrZeroSubtotal         = errors.New("set a rate on at least one item")
	ErrItemNotFound         = errors.New("item not found in draft")
	ErrItemNameRequired     = errors.New("item name is required")
	ErrItemRateInvalid      = errors.New("item rate must be a non-negative number")
	ErrCustomerNameRequired = errors.New("customer name is required")
	ErrCustomerPhoneNeeded  = errors.New("customer phone is required")
	ErrNothingToSave        = errors.New("no draft in progress")
	ErrParseFailed          = errors.New("could not extract any items from the text")
	// ErrInvoiceLocked enforces the post-save immutability of invoices.
	ErrInvoiceLocked = errors.New("a saved invoice can no longer be edited")
)
