package wizard

import "strings"

// CanAdvance reports whether the document may move forward from its
// current step. A nil return permits the transition.
func (d *Document) CanAdvance() error {
	switch d.Step {
	case StepInput:
		if d.Mode == ModeAI && strings.TrimSpace(d.RawText) == "" && len(d.Items) == 0 {
			return ErrTextRequired
		}
		if len(d.Items) == 0 {
			return ErrNoItems
		}
		return nil
	case StepItems:
		if len(d.Items) == 0 {
			return ErrNoItems
		}
		if d.Totals().Subtotal == 0 {
			return ErrZeroSubtotal
		}
		return nil
	default:
		return d.CanSubmit()
	}
}

// Advance moves one step forward after its gate passes.
func (d *Document) Advance() error {
	if err := d.CanAdvance(); err != nil {
		return err
	}
	switch d.Step {
	case StepInput:
		d.Step = StepItems
	case StepItems:
		d.Step = StepCustomer
	}
	return nil
}

// Back moves one step backward. Backward transitions are always
// permitted and never discard state.
func (d *Document) Back() {
	switch d.Step {
	case StepCustomer:
		d.Step = StepItems
	case StepItems:
		d.Step = StepInput
	}
}

// CanSubmit gates the final save. Quotations require a name and a
// phone number; invoices only a name.
func (d *Document) CanSubmit() error {
	if strings.TrimSpace(d.Customer.Name) == "" {
		return ErrCustomerNameRequired
	}
	if d.Kind == KindQuotation && strings.TrimSpace(d.Customer.Phone) == "" {
		return ErrCustomerPhoneNeeded
	}
	return nil
}
