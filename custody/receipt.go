package custody

import (
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-splitter/contracts/splitter/splitterconst"
)

// SplitReceipt describes an accepted deposit.
type SplitReceipt struct {
	Tx         util.Uint256
	Depositor  util.Uint160
	RecipientA util.Uint160
	RecipientB util.Uint160
	// Amount is the whole deposit.
	Amount int64
	// Share is what each recipient has been credited with.
	Share int64
	// Remainder is what the depositor has been credited with.
	Remainder int64
}

// WithdrawalReceipt describes a completed withdrawal.
type WithdrawalReceipt struct {
	Tx      util.Uint256
	Account util.Uint160
	Amount  int64
}

// SweepReceipt describes the destruction of the ledger.
type SweepReceipt struct {
	Tx     util.Uint256
	Amount int64
}

// State is the lifecycle state of the ledger.
type State int64

// Ledger states.
const (
	Active    State = splitterconst.Active
	Suspended State = splitterconst.Suspended
	Destroyed State = splitterconst.Destroyed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Suspended:
		return "suspended"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// StateReceipt describes a lifecycle transition.
type StateReceipt struct {
	Tx    util.Uint256
	State State
}
