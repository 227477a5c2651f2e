package checkout

// Step is the current position in the checkout sequence.
type Step string

const (
	StepReview     Step = "review"
	StepShipping   Step = "shipping"
	StepPayment    Step = "payment"
	StepSubmitting Step = "submitting"
	StepSucceeded  Step = "succeeded"
	StepFailed     Step = "failed"
)

func (s Step) IsTerminal() bool {
	return s == StepSucceeded || s == StepFailed
}

// String representation (for logging)
func (s Step) String() string {
	return string(s)
}
