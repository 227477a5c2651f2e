package checkout

import "errors"

var (
	ErrEmptyCart             = errors.New("cart is empty, nothing to checkout")
	ErrInvalidTransition     = errors.New("illegal checkout step transition")
	ErrIncompleteAddress     = errors.New("shipping address fields must all be filled")
	ErrPaymentMethodRequired = errors.New("a payment method must be selected")
	ErrSubmitInFlight        = errors.New("an order submission is already in flight")
)

// SubmissionError is returned when the order-submission collaborator rejects
// the order or the call times out. Retryable tells the caller whether trying
// again without changes can succeed.
type SubmissionError struct {
	Reason    string
	Retryable bool
}

func (e *SubmissionError) Error() string {
	return "order submission failed: " + e.Reason
}
