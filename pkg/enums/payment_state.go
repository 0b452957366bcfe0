package enums

// PaymentState tracks a card confirmation attempt against a payment intent.
type PaymentState string

const (
	PaymentStateIdle       PaymentState = "idle"
	PaymentStateSubmitting PaymentState = "submitting"
	PaymentStateSucceeded  PaymentState = "succeeded"
	PaymentStateFailed     PaymentState = "failed"
)

// String implements fmt.Stringer.
func (s PaymentState) String() string {
	return string(s)
}

// IsTerminal reports whether the confirmation attempt has finished.
func (s PaymentState) IsTerminal() bool {
	return s == PaymentStateSucceeded || s == PaymentStateFailed
}
