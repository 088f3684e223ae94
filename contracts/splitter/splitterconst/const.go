/*
Package splitterconst contains constants shared by the Splitter contract and
the off-chain code working with it.
*/
package splitterconst

// Ledger states as returned by the 'state' method and carried by the
// StateChanged notification.
const (
	Active    = 0
	Suspended = 1
	Destroyed = 2
)

// Exception messages of the contract. A failed invocation FAULTs with one of
// them as the exception text.
const (
	// ErrZeroValueDeposit is thrown by split when the deposit is not positive.
	ErrZeroValueDeposit = "zero value deposit"
	// ErrNothingToWithdraw is thrown by withdraw when the balance is zero.
	ErrNothingToWithdraw = "nothing to withdraw"
	// ErrInvalidStateTransition is thrown when the ledger is in a state that
	// doesn't allow the operation.
	ErrInvalidStateTransition = "invalid state transition"
	// ErrUnauthorized is thrown when the required witness is missing.
	ErrUnauthorized = "unauthorized"
	// ErrArithmeticOverflow is thrown when a balance would exceed the
	// 64-bit signed integer range.
	ErrArithmeticOverflow = "arithmetic overflow"
	// ErrTransferFailed is thrown when GAS can't be moved in or out of
	// custody.
	ErrTransferFailed = "transfer failed"
	// ErrInvalidAccount is thrown for accounts that are not 20-byte script
	// hashes.
	ErrInvalidAccount = "invalid account"
)

// Notification names.
const (
	SplitEvent        = "Split"
	WithdrawalEvent   = "Withdrawal"
	StateChangedEvent = "StateChanged"
)

// MaxBalance is the largest balance a single account can hold.
const MaxBalance = 1<<63 - 1
