package booking

import (
	"context"
	"testing"
	"time"

	userRepo "servora/database/repository/user"
	"servora/models"
	"servora/services/notification"
	"servora/services/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- fakes ---

type memBookings struct {
	items map[string]models.Booking
}

func newMemBookings() *memBookings { return &memBookings{items: map[string]models.Booking{}} }

func (m *memBookings) Create(b *models.Booking) error { m.items[b.ID] = *b; return nil }
func (m *memBookings) GetByID(id string) (*models.Booking, error) {
	b, ok := m.items[id]
	if !ok {
		return nil, assert.AnError
	}
	out := b
	return &out, nil
}
func (m *memBookings) Update(b *models.Booking) error { m.items[b.ID] = *b; return nil }
func (m *memBookings) UpdateStatusIf(id, expected, next string) (bool, error) {
	b, ok := m.items[id]
	if !ok || b.Status != expected {
		return false, nil
	}
	b.Status = next
	m.items[id] = b
	return true, nil
}
func (m *memBookings) ListByUser(userID string) ([]models.BookingWithRole, error) {
	var out []models.BookingWithRole
	for _, b := range m.items {
		switch userID {
		case b.CustomerID:
			out = append(out, models.BookingWithRole{Booking: b, Role: "customer"})
		case b.ProviderID:
			out = append(out, models.BookingWithRole{Booking: b, Role: "provider"})
		}
	}
	return out, nil
}
func (m *memBookings) CountByService(serviceID string) (int64, error) {
	var n int64
	for _, b := range m.items {
		if b.ServiceID == serviceID {
			n++
		}
	}
	return n, nil
}

type memPayments struct {
	items map[string]models.Payment
}

func newMemPayments() *memPayments { return &memPayments{items: map[string]models.Payment{}} }

func (m *memPayments) Create(p *models.Payment) error { m.items[p.ID] = *p; return nil }
func (m *memPayments) GetByID(id string) (*models.Payment, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, assert.AnError
	}
	out := p
	return &out, nil
}
func (m *memPayments) GetByBooking(bookingID string) (*models.Payment, error) {
	for _, p := range m.items {
		if p.BookingID == bookingID {
			out := p
			return &out, nil
		}
	}
	return nil, assert.AnError
}
func (m *memPayments) Update(p *models.Payment) error { m.items[p.ID] = *p; return nil }

type memUsers struct {
	items map[string]models.User
}

func (m *memUsers) Create(u *models.User) error { m.items[u.ID] = *u; return nil }
func (m *memUsers) GetByID(id string) (*models.User, error) {
	u, ok := m.items[id]
	if !ok {
		return nil, assert.AnError
	}
	out := u
	return &out, nil
}
func (m *memUsers) GetByIDs(ids []string) ([]models.User, error) { return nil, nil }
func (m *memUsers) Update(u *models.User) error                  { m.items[u.ID] = *u; return nil }
func (m *memUsers) UpdateStatus(id, status string) error {
	u := m.items[id]
	u.Status = status
	m.items[id] = u
	return nil
}
func (m *memUsers) ApplyLocationIfNewer(id string, loc models.UserLocation) (bool, error) {
	return false, nil
}
func (m *memUsers) SweepStaleLocations(cutoff time.Time) (int64, error) { return 0, nil }
func (m *memUsers) FindCandidates(filter userRepo.CandidateFilter) ([]models.User, error) {
	return nil, nil
}

type stubSettings struct {
	commission float64
	policy     models.CancellationPolicy
}

func (s *stubSettings) GetCommissionPercent() (float64, error) { return s.commission, nil }
func (s *stubSettings) SetCommissionPercent(p float64) error   { s.commission = p; return nil }
func (s *stubSettings) GetCancellationPolicy() (*models.CancellationPolicy, error) {
	p := s.policy
	return &p, nil
}
func (s *stubSettings) SetCancellationPolicy(p models.CancellationPolicy) error {
	s.policy = p
	return nil
}
func (s *stubSettings) CreateCategory(c *models.Category) error         { return nil }
func (s *stubSettings) GetCategory(id string) (*models.Category, error) { return nil, assert.AnError }
func (s *stubSettings) GetCategories(ids []string) ([]models.Category, error) {
	return nil, nil
}
func (s *stubSettings) ListCategories() ([]models.Category, error) { return nil, nil }

type fakeGateway struct {
	intentStatus   payment.IntentStatus // what CreateIntent reports
	retrieveStatus payment.IntentStatus // what RetrieveIntent reports
	createErr      error
	captureErr     error

	attachedCustomers []string
	intentsCreated    int
	captures          int
	refunds           []float64
	lastCommission    float64
}

func (g *fakeGateway) CreateOrAttachCustomer(ctx context.Context, userID, email, name string) (string, error) {
	g.attachedCustomers = append(g.attachedCustomers, userID)
	return "cus_" + userID, nil
}

func (g *fakeGateway) CreateConnectedAccount(ctx context.Context, email string) (string, error) {
	return "acct_new", nil
}

func (g *fakeGateway) CreateIntent(ctx context.Context, amount, commission float64, currency, customerID, destination string) (*payment.Intent, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.intentsCreated++
	g.lastCommission = commission
	return &payment.Intent{ID: "pi_test", Status: g.intentStatus}, nil
}

func (g *fakeGateway) CreateImmediateCharge(ctx context.Context, amount float64, currency, customerID, description string) (*payment.Intent, error) {
	return &payment.Intent{ID: "pi_charge", Status: payment.StatusSucceeded}, nil
}

func (g *fakeGateway) CaptureIntent(ctx context.Context, intentID string) (*payment.Intent, error) {
	if g.captureErr != nil {
		return nil, g.captureErr
	}
	g.captures++
	return &payment.Intent{ID: intentID, Status: payment.StatusSucceeded}, nil
}

func (g *fakeGateway) CreateRefund(ctx context.Context, intentID string, amount float64) error {
	g.refunds = append(g.refunds, amount)
	return nil
}

func (g *fakeGateway) RetrieveIntent(ctx context.Context, intentID string) (*payment.Intent, error) {
	return &payment.Intent{ID: intentID, Status: g.retrieveStatus}, nil
}

type recordingEmail struct {
	confirmations []string
	otpRecipients []string
	lastOTP       string
}

func (e *recordingEmail) SendBookingConfirmation(ctx context.Context, recipientID string, b models.Booking) error {
	e.confirmations = append(e.confirmations, recipientID)
	return nil
}

func (e *recordingEmail) SendStartOTP(ctx context.Context, recipientID, otp string, b models.Booking) error {
	e.otpRecipients = append(e.otpRecipients, recipientID)
	e.lastOTP = otp
	return nil
}

func (e *recordingEmail) SendInvoiceNotice(ctx context.Context, recipientID string, inv models.Invoice) error {
	return nil
}

type recordingPerformance struct {
	providerID string
	completed  int
	failed     int
	calls      int
}

func (r *recordingPerformance) RecordBatch(providerID string, completed, failed int) error {
	r.providerID = providerID
	r.completed = completed
	r.failed = failed
	r.calls++
	return nil
}

type stubClock struct {
	t time.Time
}

func (c *stubClock) Now() time.Time { return c.t }

// --- harness ---

type fixture struct {
	svc      *Service
	bookings *memBookings
	payments *memPayments
	users    *memUsers
	gateway  *fakeGateway
	email    *recordingEmail
	perf     *recordingPerformance
	clock    *stubClock
}

func newFixture() *fixture {
	f := &fixture{
		bookings: newMemBookings(),
		payments: newMemPayments(),
		users: &memUsers{items: map[string]models.User{
			"cust-1": {ID: "cust-1", Name: "Ada", Email: "ada@example.com",
				Status: models.UserStatusActive, PaymentCustomerID: "cus_existing"},
			"prov-1": {ID: "prov-1", Name: "Ben", Email: "ben@example.com",
				Status: models.UserStatusActive, PayoutAccountID: "acct_prov1"},
		}},
		gateway: &fakeGateway{
			intentStatus:   payment.StatusRequiresCapture,
			retrieveStatus: payment.StatusRequiresCapture,
		},
		email: &recordingEmail{},
		perf:  &recordingPerformance{},
		clock: &stubClock{t: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)},
	}
	f.svc = &Service{
		Bookings:    f.bookings,
		Payments:    f.payments,
		Users:       f.users,
		Settings:    &stubSettings{commission: 20, policy: models.CancellationPolicy{Enabled: true, Percent: 10}},
		Gateway:     f.gateway,
		Notifier:    &notification.LogNotificationService{Logger: zap.NewNop()},
		Email:       f.email,
		Performance: f.perf,
		Clock:       f.clock,
		Logger:      zap.NewNop(),
	}
	return f
}

func (f *fixture) create(t *testing.T, amount float64) *models.Booking {
	t.Helper()
	b, err := f.svc.CreateBooking(context.Background(), CreateInput{
		CustomerID: "cust-1", ProviderID: "prov-1", ServiceID: "svc-1",
		Amount: amount, Currency: "usd",
	})
	require.NoError(t, err)
	return b
}

// --- tests ---

func TestCommissionSplit(t *testing.T) {
	cases := []struct {
		amount, percent, commission, provider float64
	}{
		{500, 20, 100, 400},
		{100, 10, 10, 90},
		{250, 15, 38, 212},
		{33, 15, 5, 28},
		{0.4, 20, 0, 0.4},
	}
	for _, c := range cases {
		commission, provider := CommissionSplit(c.amount, c.percent)
		assert.Equal(t, c.commission, commission, "amount %v at %v%%", c.amount, c.percent)
		assert.Equal(t, c.provider, provider, "amount %v at %v%%", c.amount, c.percent)
		assert.Equal(t, c.amount, commission+provider, "split must sum back to gross")
	}
}

func TestCreateBookingHappyPath(t *testing.T) {
	f := newFixture()
	b := f.create(t, 500)

	assert.Equal(t, models.BookingBooked, b.Status)
	assert.Equal(t, 1, f.gateway.intentsCreated)
	assert.Equal(t, 100.0, f.gateway.lastCommission)

	pay, err := f.payments.GetByBooking(b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, pay.Status)
	assert.Equal(t, 100.0, pay.Commission)
	assert.Equal(t, 400.0, pay.ProviderAmount)
	assert.Equal(t, "pi_test", pay.IntentRef)

	// Both parties get a confirmation email; no customer was attached because
	// one already existed.
	assert.ElementsMatch(t, []string{"cust-1", "prov-1"}, f.email.confirmations)
	assert.Empty(t, f.gateway.attachedCustomers)
}

func TestCreateBookingAttachesNewCustomer(t *testing.T) {
	f := newFixture()
	u := f.users.items["cust-1"]
	u.PaymentCustomerID = ""
	f.users.items["cust-1"] = u

	f.create(t, 200)

	assert.Equal(t, []string{"cust-1"}, f.gateway.attachedCustomers)
	stored, err := f.users.GetByID("cust-1")
	require.NoError(t, err)
	assert.Equal(t, "cus_cust-1", stored.PaymentCustomerID)
}

func TestCreateBookingRequiresPayoutAccount(t *testing.T) {
	f := newFixture()
	u := f.users.items["prov-1"]
	u.PayoutAccountID = ""
	f.users.items["prov-1"] = u

	_, err := f.svc.CreateBooking(context.Background(), CreateInput{
		CustomerID: "cust-1", ProviderID: "prov-1", ServiceID: "svc-1", Amount: 100,
	})
	assert.ErrorIs(t, err, ErrNoPayoutAccount)
	assert.Zero(t, f.gateway.intentsCreated)
	assert.Empty(t, f.bookings.items)
}

func TestCreateBookingGatewayFailureMarksRecordsFailed(t *testing.T) {
	f := newFixture()
	f.gateway.createErr = assert.AnError

	_, err := f.svc.CreateBooking(context.Background(), CreateInput{
		CustomerID: "cust-1", ProviderID: "prov-1", ServiceID: "svc-1", Amount: 100,
	})
	require.Error(t, err)

	// The pending pair is written before the gateway call and closed out
	// as failed when it errors.
	require.Len(t, f.bookings.items, 1)
	require.Len(t, f.payments.items, 1)
	for _, b := range f.bookings.items {
		assert.Equal(t, models.BookingPaymentFailed, b.Status)
	}
	for _, pay := range f.payments.items {
		assert.Equal(t, models.PaymentFailed, pay.Status)
	}
}

func TestCreateBookingDeclinedIntent(t *testing.T) {
	f := newFixture()
	f.gateway.intentStatus = payment.StatusFailed

	b := f.create(t, 100)
	assert.Equal(t, models.BookingPaymentFailed, b.Status)

	pay, err := f.payments.GetByBooking(b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, pay.Status)
	assert.Empty(t, f.email.confirmations, "no confirmation for a failed payment")
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateBooking(context.Background(), CreateInput{
		CustomerID: "cust-1", ProviderID: "prov-1", ServiceID: "svc-1", Amount: 0,
	})
	assert.Error(t, err)

	_, err = f.svc.CreateBooking(context.Background(), CreateInput{
		ProviderID: "prov-1", ServiceID: "svc-1", Amount: 100,
	})
	assert.Error(t, err)
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture()
	b := f.create(t, 500)

	started, err := f.svc.StartService(context.Background(), b.ID)
	require.NoError(t, err)
	require.Len(t, started.StartOTP, StartOTPDigits)
	assert.Equal(t, []string{"cust-1"}, f.email.otpRecipients, "code goes to the customer only")
	assert.Equal(t, started.StartOTP, f.email.lastOTP)

	verified, err := f.svc.VerifyStartOTP(context.Background(), b.ID, started.StartOTP)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStarted, verified.Status)
	assert.Empty(t, verified.StartOTP, "code cleared after use")

	done, err := f.svc.CompleteService(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, done.Status)
	assert.Equal(t, 1, f.gateway.captures)

	pay, err := f.payments.GetByBooking(b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, pay.Status)
	require.NotNil(t, pay.CompletedAt)

	assert.Equal(t, 1, f.perf.calls)
	assert.Equal(t, "prov-1", f.perf.providerID)
	assert.Equal(t, 1, f.perf.completed)
	assert.Equal(t, 0, f.perf.failed)
}

func TestVerifyOTPExpired(t *testing.T) {
	f := newFixture()
	b := f.create(t, 100)
	started, err := f.svc.StartService(context.Background(), b.ID)
	require.NoError(t, err)

	f.clock.t = f.clock.t.Add(StartOTPTTL + time.Second)
	_, err = f.svc.VerifyStartOTP(context.Background(), b.ID, started.StartOTP)
	assert.ErrorIs(t, err, ErrOTPExpired)
}

func TestVerifyOTPExactExpiryStillValid(t *testing.T) {
	f := newFixture()
	b := f.create(t, 100)
	started, err := f.svc.StartService(context.Background(), b.ID)
	require.NoError(t, err)

	// Strict comparison: exactly at the deadline is not expired yet.
	f.clock.t = f.clock.t.Add(StartOTPTTL)
	verified, err := f.svc.VerifyStartOTP(context.Background(), b.ID, started.StartOTP)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStarted, verified.Status)
}

func TestVerifyOTPMismatch(t *testing.T) {
	f := newFixture()
	b := f.create(t, 100)
	_, err := f.svc.StartService(context.Background(), b.ID)
	require.NoError(t, err)

	_, err = f.svc.VerifyStartOTP(context.Background(), b.ID, "0000000")
	assert.ErrorIs(t, err, ErrOTPMismatch)

	// The booking stays booked and the code stays usable.
	stored, err := f.bookings.GetByID(b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingBooked, stored.Status)
}

func TestVerifyOTPNotIssued(t *testing.T) {
	f := newFixture()
	b := f.create(t, 100)

	_, err := f.svc.VerifyStartOTP(context.Background(), b.ID, "1234")
	assert.ErrorIs(t, err, ErrOTPNotIssued)
}

func TestStartRequiresBookedState(t *testing.T) {
	f := newFixture()
	f.gateway.intentStatus = payment.StatusFailed
	b := f.create(t, 100)

	_, err := f.svc.StartService(context.Background(), b.ID)
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestCompleteRequiresStartedState(t *testing.T) {
	f := newFixture()
	b := f.create(t, 100)

	_, err := f.svc.CompleteService(context.Background(), b.ID)
	assert.ErrorIs(t, err, ErrWrongState)
	assert.Zero(t, f.gateway.captures)
}

func TestCancelBookingWithFee(t *testing.T) {
	f := newFixture()
	b := f.create(t, 500)

	cancelled, err := f.svc.CancelBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)

	// Authorization is captured in full first, then 450 refunded.
	assert.Equal(t, 1, f.gateway.captures)
	require.Len(t, f.gateway.refunds, 1)
	assert.Equal(t, 450.0, f.gateway.refunds[0])

	pay, err := f.payments.GetByBooking(b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, pay.Status)
	assert.Equal(t, 450.0, pay.RefundAmount)
	assert.Equal(t, 50.0, pay.RefundFee)
	require.NotNil(t, pay.RefundedAt)
}

func TestCancelSkipsCaptureWhenAlreadyCharged(t *testing.T) {
	f := newFixture()
	f.gateway.retrieveStatus = payment.StatusSucceeded
	b := f.create(t, 500)

	_, err := f.svc.CancelBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Zero(t, f.gateway.captures)
	require.Len(t, f.gateway.refunds, 1)
	assert.Equal(t, 450.0, f.gateway.refunds[0])
}

func TestCancelWithPolicyDisabledRefundsEverything(t *testing.T) {
	f := newFixture()
	f.svc.Settings = &stubSettings{commission: 20, policy: models.CancellationPolicy{Enabled: false, Percent: 10}}
	b := f.create(t, 500)

	_, err := f.svc.CancelBooking(context.Background(), b.ID)
	require.NoError(t, err)
	require.Len(t, f.gateway.refunds, 1)
	assert.Equal(t, 500.0, f.gateway.refunds[0])
}

func TestCancelRequiresBookedState(t *testing.T) {
	f := newFixture()
	b := f.create(t, 100)
	_, err := f.svc.StartService(context.Background(), b.ID)
	require.NoError(t, err)
	started, err := f.svc.VerifyStartOTP(context.Background(), b.ID, f.email.lastOTP)
	require.NoError(t, err)
	require.Equal(t, models.BookingStarted, started.Status)

	_, err = f.svc.CancelBooking(context.Background(), b.ID)
	assert.ErrorIs(t, err, ErrWrongState)
	assert.Empty(t, f.gateway.refunds)
}
