package booking

import "errors"

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrWrongState      = errors.New("booking is not in a state that allows this transition")
	ErrNoPayoutAccount = errors.New("provider has no linked payout account")
	ErrOTPNotIssued    = errors.New("no start code has been issued for this booking")
	ErrOTPExpired      = errors.New("start code has expired")
	ErrOTPMismatch     = errors.New("start code does not match")
)
