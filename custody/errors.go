package custody

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-splitter/contracts/splitter/splitterconst"
)

// Errors returned by Client when the contract rejects an invocation. They
// can be matched with errors.Is.
var (
	ErrZeroValueDeposit       = errors.New(splitterconst.ErrZeroValueDeposit)
	ErrNothingToWithdraw      = errors.New(splitterconst.ErrNothingToWithdraw)
	ErrInvalidStateTransition = errors.New(splitterconst.ErrInvalidStateTransition)
	ErrUnauthorized           = errors.New(splitterconst.ErrUnauthorized)
	ErrArithmeticOverflow     = errors.New(splitterconst.ErrArithmeticOverflow)
	ErrTransferFailed         = errors.New(splitterconst.ErrTransferFailed)
	ErrInvalidAccount         = errors.New(splitterconst.ErrInvalidAccount)

	// ErrFault is returned for failed invocations with an exception not
	// thrown by the contract itself.
	ErrFault = errors.New("invocation failed")
)

var contractErrors = []error{
	ErrZeroValueDeposit,
	ErrNothingToWithdraw,
	ErrInvalidStateTransition,
	ErrUnauthorized,
	ErrArithmeticOverflow,
	ErrTransferFailed,
	ErrInvalidAccount,
}

// faultKind returns the contract error mentioned in the exception text or
// nil.
func faultKind(exception string) error {
	for _, e := range contractErrors {
		if strings.Contains(exception, e.Error()) {
			return e
		}
	}
	return nil
}

// nativeCallFailure is reported when a native contract call fails. An
// exception thrown by the recipient of GAS from its payment callback crosses
// the native GAS contract and cannot be caught by the ledger, so it fails the
// invocation with this text instead of a contract error.
const nativeCallFailure = "failed native call"

// payoutFaultKind is faultKind for operations paying GAS out of custody: any
// native call failure there is a failed payout.
func payoutFaultKind(exception string) error {
	if strings.Contains(exception, nativeCallFailure) {
		return ErrTransferFailed
	}
	return faultKind(exception)
}

// faultError builds the error for the transaction that ended in FAULT state.
func faultError(kindOf func(string) error, exception string) error {
	if kind := kindOf(exception); kind != nil {
		return fmt.Errorf("%w: %s", kind, exception)
	}
	return fmt.Errorf("%w: %s", ErrFault, exception)
}

// wrapSendError classifies errors of transaction sending. Test invocation
// preceding the actual sending fails with the same exception the
// transaction would fail with.
func wrapSendError(kindOf func(string) error, err error) error {
	if kind := kindOf(err.Error()); kind != nil {
		return fmt.Errorf("%w: %w", kind, err)
	}
	return err
}
