package reentrant

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// Payment handling modes.
const (
	// ModeAccept takes the payment.
	ModeAccept = 0
	// ModeReject throws from the payment callback.
	ModeReject = 1
	// ModeReenter withdraws again from the payment callback.
	ModeReenter = 2
	// ModeReenterCatch withdraws again from the payment callback and
	// swallows the failure, remembering its message.
	ModeReenterCatch = 3
)

const (
	splitterKey = "splitter"
	modeKey     = "mode"
	failureKey  = "failure"
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		return
	}

	args := data.([]any)
	ctx := storage.GetContext()
	storage.Put(ctx, splitterKey, args[0].(interop.Hash160))
	storage.Put(ctx, modeKey, args[1].(int))
}

func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	switch storage.Get(storage.GetReadOnlyContext(), modeKey).(int) {
	case ModeReject:
		panic("payment rejected")
	case ModeReenter:
		Withdraw()
	case ModeReenterCatch:
		tryWithdraw()
	}
}

// Withdraw withdraws the balance of this contract from the splitter.
func Withdraw() int {
	splitter := storage.Get(storage.GetReadOnlyContext(), splitterKey).(interop.Hash160)
	return contract.Call(splitter, "withdraw", contract.All, runtime.GetExecutingScriptHash()).(int)
}

func SetMode(mode int) {
	storage.Put(storage.GetContext(), modeKey, mode)
}

// LastFailure returns the message of the last failure swallowed in
// ModeReenterCatch.
func LastFailure() string {
	val := storage.Get(storage.GetReadOnlyContext(), failureKey)
	if val == nil {
		return ""
	}
	return val.(string)
}

func tryWithdraw() {
	defer func() {
		if r := recover(); r != nil {
			storage.Put(storage.GetContext(), failureKey, r)
		}
	}()

	Withdraw()
}
