package payment

import "errors"

// Typed validation failures surfaced by the authorizer. Checks run in a
// fixed order and the first failure wins, so callers always see exactly
// one of these per attempt.
var (
	// ErrForbidden: the authenticated caller is not the user named in
	// the request. Reported before any lookup happens.
	ErrForbidden = errors.New("operation not permitted")

	// ErrUserNotFound: the requested user external ID does not resolve.
	ErrUserNotFound = errors.New("user not found")

	// ErrBillNotFound: the requested bill external ID does not resolve.
	ErrBillNotFound = errors.New("bill not found")

	// ErrOwnershipMismatch: the bill exists but belongs to someone else.
	ErrOwnershipMismatch = errors.New("bill does not belong to user")

	// ErrAlreadyPaid: the bill already left the DUE state. Retrying a
	// successful payment lands here, never on a double charge.
	ErrAlreadyPaid = errors.New("bill already paid")

	// ErrAmountMismatch: the offered amount differs from the bill
	// amount. Compared exactly, no tolerance.
	ErrAmountMismatch = errors.New("payment amount does not match bill amount")
)
