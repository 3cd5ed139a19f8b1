package payment

import (
	"context"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/account"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"go.uber.org/zap"
)

// StripeGateway implements Gateway on Stripe Connect. The secret key is set
// globally (stripe.Key) during startup.
type StripeGateway struct {
	logger *zap.Logger
}

// NewStripeGateway creates the production Gateway.
func NewStripeGateway(logger *zap.Logger) *StripeGateway {
	return &StripeGateway{logger: logger}
}

// minorUnits converts a major-unit amount to the smallest currency unit.
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func mapStatus(s stripe.PaymentIntentStatus) IntentStatus {
	switch s {
	case stripe.PaymentIntentStatusRequiresCapture:
		return StatusRequiresCapture
	case stripe.PaymentIntentStatusSucceeded:
		return StatusSucceeded
	default:
		return StatusFailed
	}
}

func (g *StripeGateway) CreateOrAttachCustomer(ctx context.Context, userID, email, name string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
		Metadata: map[string]string{
			"user_id": userID,
		},
	}
	params.Context = ctx
	c, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create customer: %w", err)
	}
	return c.ID, nil
}

func (g *StripeGateway) CreateConnectedAccount(ctx context.Context, email string) (string, error) {
	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
	}
	params.Context = ctx
	a, err := account.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create connected account: %w", err)
	}
	return a.ID, nil
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount, commission float64, currency, customerID, destination string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:               stripe.Int64(minorUnits(amount)),
		Currency:             stripe.String(currency),
		Customer:             stripe.String(customerID),
		CaptureMethod:        stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		ApplicationFeeAmount: stripe.Int64(minorUnits(commission)),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(destination),
		},
		Confirm: stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String(string(stripe.PaymentIntentAutomaticPaymentMethodsAllowRedirectsNever)),
		},
	}
	params.Context = ctx
	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	g.logger.Info("payment intent created",
		zap.String("intent", pi.ID), zap.String("status", string(pi.Status)))
	return &Intent{ID: pi.ID, Status: mapStatus(pi.Status)}, nil
}

func (g *StripeGateway) CreateImmediateCharge(ctx context.Context, amount float64, currency, customerID, description string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(minorUnits(amount)),
		Currency:    stripe.String(currency),
		Customer:    stripe.String(customerID),
		Description: stripe.String(description),
		Confirm:     stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String(string(stripe.PaymentIntentAutomaticPaymentMethodsAllowRedirectsNever)),
		},
	}
	params.Context = ctx
	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create charge: %w", err)
	}
	return &Intent{ID: pi.ID, Status: mapStatus(pi.Status)}, nil
}

func (g *StripeGateway) CaptureIntent(ctx context.Context, intentID string) (*Intent, error) {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	pi, err := paymentintent.Capture(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to capture intent %s: %w", intentID, err)
	}
	return &Intent{ID: pi.ID, Status: mapStatus(pi.Status)}, nil
}

func (g *StripeGateway) CreateRefund(ctx context.Context, intentID string, amount float64) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
		Amount:        stripe.Int64(minorUnits(amount)),
	}
	params.Context = ctx
	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("failed to refund intent %s: %w", intentID, err)
	}
	return nil
}

func (g *StripeGateway) RetrieveIntent(ctx context.Context, intentID string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := paymentintent.Get(intentID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve intent %s: %w", intentID, err)
	}
	return &Intent{ID: pi.ID, Status: mapStatus(pi.Status)}, nil
}
