package checkout

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vborodin/storefront/internal/cart"
	"github.com/vborodin/storefront/internal/domain"
	"github.com/vborodin/storefront/internal/pricing"
)

// DefaultSubmitTimeout bounds the order-submission call so navigating away
// mid-submit cannot leave a dangling callback forever.
const DefaultSubmitTimeout = 30 * time.Second

// OrderSubmitter is the order-submission collaborator.
type OrderSubmitter interface {
	Submit(ctx context.Context, order *domain.OrderRequest) (*domain.OrderConfirmation, error)
}

// EventSink receives a notification after an order was accepted. Failures are
// logged and never surfaced to the user.
type EventSink interface {
	OrderSubmitted(ctx context.Context, conf *domain.OrderConfirmation, order *domain.OrderRequest) error
}

// Flow is the checkout state machine:
//
//	Review -> Shipping -> Payment -> Submitting -> Succeeded
//	                         ^            |
//	                         +---failed---+
//
// Going back moves one step towards Review. The flow object, not the UI, is
// the source of truth for the double-submit guard. A Flow lives for one
// checkout attempt and is never persisted; a reload starts back at Review
// against the still-persisted cart.
type Flow struct {
	mu        sync.Mutex
	cart      *cart.Store
	submitter OrderSubmitter
	events    EventSink
	timeout   time.Duration

	step     Step
	address  domain.ShippingAddress
	method   domain.PaymentMethod
	lastErr  string
	orderID  string
	inFlight bool
}

type Option func(*Flow)

// WithSubmitTimeout overrides the order-submission timeout.
func WithSubmitTimeout(d time.Duration) Option {
	return func(f *Flow) { f.timeout = d }
}

// WithEventSink attaches a best-effort order event publisher.
func WithEventSink(sink EventSink) Option {
	return func(f *Flow) { f.events = sink }
}

// NewFlow creates a checkout flow over the cart store. Begin must be called
// before any step operation.
func NewFlow(cartStore *cart.Store, submitter OrderSubmitter, opts ...Option) *Flow {
	f := &Flow{
		cart:      cartStore,
		submitter: submitter,
		timeout:   DefaultSubmitTimeout,
		step:      StepReview,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Begin enters checkout at Review. Checkout is not enterable with an empty
// cart; the caller redirects back to the catalog instead.
func (f *Flow) Begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.inFlight {
		return ErrSubmitInFlight
	}
	if f.cart.ItemCount() == 0 {
		return ErrEmptyCart
	}

	f.step = StepReview
	f.address = domain.ShippingAddress{}
	f.method = ""
	f.lastErr = ""
	f.orderID = ""
	return nil
}

// ProceedToShipping moves Review -> Shipping.
func (f *Flow) ProceedToShipping() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepReview {
		return ErrInvalidTransition
	}
	if f.cart.ItemCount() == 0 {
		return ErrEmptyCart
	}

	f.step = StepShipping
	return nil
}

// SubmitShipping records the address and moves Shipping -> Payment. All
// required address fields must be non-empty.
func (f *Flow) SubmitShipping(address domain.ShippingAddress) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepShipping {
		return ErrInvalidTransition
	}
	if !address.Complete() {
		return ErrIncompleteAddress
	}

	f.address = address
	f.step = StepPayment
	return nil
}

// SelectPayment records the payment method at the Payment step. It does not
// advance; Submit does.
func (f *Flow) SelectPayment(method domain.PaymentMethod) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step != StepPayment {
		return ErrInvalidTransition
	}
	if !method.IsValid() {
		return ErrPaymentMethodRequired
	}

	f.method = method
	return nil
}

// Back moves one step towards Review. Form data entered so far is kept so a
// forward pass does not re-ask for it.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.step {
	case StepShipping:
		f.step = StepReview
	case StepPayment:
		f.step = StepShipping
	default:
		return ErrInvalidTransition
	}
	return nil
}

// Submit builds the order payload from the current cart snapshot plus the
// recorded address and payment method, then hands it to the order-submission
// collaborator. The payload is fixed at this moment; later cart mutations do
// not affect it. Exactly one submission can be in flight: a second Submit
// while Submitting fails with ErrSubmitInFlight and does not reach the
// collaborator.
//
// On success the cart is cleared and the flow ends at Succeeded with the
// returned order ID retained. On failure the flow returns to Payment with the
// reason recorded and the cart untouched, so the user can retry without
// re-entering the address.
func (f *Flow) Submit(ctx context.Context) (*domain.OrderConfirmation, error) {
	f.mu.Lock()
	if f.inFlight || f.step == StepSubmitting {
		f.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if f.step != StepPayment {
		f.mu.Unlock()
		return nil, ErrInvalidTransition
	}
	if !f.method.IsValid() {
		f.mu.Unlock()
		return nil, ErrPaymentMethodRequired
	}

	lines := f.cart.Lines()
	if len(lines) == 0 {
		f.mu.Unlock()
		return nil, ErrEmptyCart
	}

	order := buildOrder(lines, f.address, f.method)
	f.step = StepSubmitting
	f.inFlight = true
	f.mu.Unlock()

	subCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	conf, err := f.submitter.Submit(subCtx, order)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false

	if err != nil {
		subErr := classify(err)
		f.step = StepPayment
		f.lastErr = subErr.Reason
		return nil, subErr
	}

	f.step = StepSucceeded
	f.orderID = conf.OrderID
	f.lastErr = ""

	if errClear := f.cart.Clear(ctx); errClear != nil {
		log.Printf("cart clear after checkout failed: %v", errClear)
	}
	if f.events != nil {
		if errPub := f.events.OrderSubmitted(ctx, conf, order); errPub != nil {
			log.Printf("order event publish failed: %v", errPub)
		}
	}

	return conf, nil
}

// Reset abandons the checkout session. The cart persists; all step data is
// discarded. Resetting while a submission is in flight is rejected.
func (f *Flow) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.inFlight {
		return ErrSubmitInFlight
	}

	f.step = StepReview
	f.address = domain.ShippingAddress{}
	f.method = ""
	f.lastErr = ""
	f.orderID = ""
	return nil
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *Flow) Address() domain.ShippingAddress {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.address
}

func (f *Flow) Method() domain.PaymentMethod {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.method
}

// LastError is the recorded reason of the most recent failed submission, empty
// when the last attempt succeeded or none was made.
func (f *Flow) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// OrderID is the identifier returned by a successful submission.
func (f *Flow) OrderID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orderID
}

func buildOrder(lines []domain.CartLine, address domain.ShippingAddress, method domain.PaymentMethod) *domain.OrderRequest {
	orderLines := make([]domain.OrderLine, 0, len(lines))
	for _, line := range lines {
		orderLines = append(orderLines, domain.OrderLine{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			DiscountPercent: line.DiscountPercent,
		})
	}

	return &domain.OrderRequest{
		Lines:           orderLines,
		ShippingAddress: address,
		PaymentMethod:   method,
		Total:           pricing.OrderTotal(lines),
		Currency:        "USD",
		IdempotencyKey:  uuid.New().String(),
		CapturedAt:      time.Now(),
	}
}

// classify normalizes submitter errors into a SubmissionError. Timeouts are
// retryable.
func classify(err error) *SubmissionError {
	var subErr *SubmissionError
	if errors.As(err, &subErr) {
		return subErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &SubmissionError{Reason: "order submission timed out", Retryable: true}
	}
	return &SubmissionError{Reason: err.Error(), Retryable: true}
}
