package payment

import "context"

// IntentStatus is the gateway's view of a payment intent.
type IntentStatus string

const (
	StatusRequiresCapture IntentStatus = "requires_capture"
	StatusSucceeded       IntentStatus = "succeeded"
	StatusFailed          IntentStatus = "failed"
)

// Capturable reports whether the intent is authorized or already captured.
func (s IntentStatus) Capturable() bool {
	return s == StatusRequiresCapture || s == StatusSucceeded
}

// Intent is the gateway's record of an authorization.
type Intent struct {
	ID     string
	Status IntentStatus
}

// Gateway is the narrow payment-processor contract the booking and violation
// engines consume. Amounts are in major currency units; implementations own
// the minor-unit conversion. Calls are synchronous; no idempotency keys are
// used, so callers must not retry blindly.
type Gateway interface {
	// CreateOrAttachCustomer returns the processor-side customer id for a
	// user, creating one when absent.
	CreateOrAttachCustomer(ctx context.Context, userID, email, name string) (string, error)

	// CreateConnectedAccount provisions a payout account for a provider.
	CreateConnectedAccount(ctx context.Context, email string) (string, error)

	// CreateIntent authorizes amount in manual-capture mode, with commission
	// kept as an application fee and the remainder routed to destination.
	CreateIntent(ctx context.Context, amount, commission float64, currency, customerID, destination string) (*Intent, error)

	// CreateImmediateCharge charges amount against the customer right away
	// (invoice payments, no provider split).
	CreateImmediateCharge(ctx context.Context, amount float64, currency, customerID, description string) (*Intent, error)

	CaptureIntent(ctx context.Context, intentID string) (*Intent, error)
	CreateRefund(ctx context.Context, intentID string, amount float64) error
	RetrieveIntent(ctx context.Context, intentID string) (*Intent, error)
}
