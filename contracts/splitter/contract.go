package splitter

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/neo-splitter/common"
	"github.com/nspcc-dev/neo-splitter/contracts/splitter/splitterconst"
)

const pendingKey = "pending"

// _deploy sets the owner and the pauser of the ledger. Deploy data is
// [owner, pauser], both optional: owner defaults to the transaction sender
// and pauser defaults to owner.
// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()

	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	var owner, pauser interop.Hash160
	if data != nil {
		args := data.([]any)
		if len(args) > 0 && args[0] != nil {
			owner = args[0].(interop.Hash160)
		}
		if len(args) > 1 && args[1] != nil {
			pauser = args[1].(interop.Hash160)
		}
	}

	if len(owner) == 0 {
		owner = runtime.GetScriptContainer().Sender
	}
	if len(pauser) == 0 {
		pauser = owner
	}

	if !common.IsValidHash160(owner) || !common.IsValidHash160(pauser) {
		panic("incorrect length of administrator script hash")
	}

	storage.Put(ctx, ownerKey, owner)
	storage.Put(ctx, pauserKey, pauser)
	storage.Put(ctx, stateKey, splitterconst.Active)

	runtime.Log("splitter contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by the owner.
func Update(script []byte, manifest []byte, data any) {
	ctx := storage.GetReadOnlyContext()
	if isDestroyed(ctx) {
		return
	}

	checkOwner(ctx)

	common.UpdateContract(script, manifest, data)
	runtime.Log("splitter contract updated")
}

// OnNEP17Payment is a callback for NEP-17 compatible native GAS contract.
// The contract accepts only deposits it pulls itself in Split, any other
// payment is aborted.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	caller := runtime.GetCallingScriptHash()
	if !caller.Equals(gas.Hash) {
		common.AbortWithMessage("splitter contract accepts GAS only")
	}

	pending := storage.Get(storage.GetReadOnlyContext(), pendingKey)
	if pending == nil || pending.(int) != amount {
		common.AbortWithMessage("direct payments are not accepted, use split")
	}
}

// Split takes amount of GAS from the depositor and credits half of it to each
// recipient. The indivisible remainder is credited back to the depositor.
// Recipients may coincide with each other and with the depositor, the credits
// accumulate then.
//
// The ledger must be active and the depositor must witness the invocation.
// Produces Split notification.
func Split(from, recipientA, recipientB interop.Hash160, amount int) {
	ctx := storage.GetContext()
	if isDestroyed(ctx) {
		return
	}

	requireState(ctx, splitterconst.Active)

	if amount <= 0 {
		panic(splitterconst.ErrZeroValueDeposit)
	}

	checkAccount(from)
	checkAccount(recipientA)
	checkAccount(recipientB)

	common.CheckWitness(from, splitterconst.ErrUnauthorized)

	receive(ctx, from, amount)

	half := amount / 2
	credit(ctx, recipientA, half)
	credit(ctx, recipientB, half)
	credit(ctx, from, amount-2*half)

	runtime.Notify("Split", from, recipientA, recipientB, amount)
}

// Withdraw sends the whole balance of the account to it and returns the sent
// amount. The balance is zeroed before the transfer, so a recipient calling
// Withdraw again from its payment callback has nothing to take. If the
// transfer fails, the invocation fails and the balance stays as it was.
//
// The ledger must be active and the account must witness the invocation.
// Produces Withdrawal notification.
func Withdraw(account interop.Hash160) int {
	ctx := storage.GetContext()
	if isDestroyed(ctx) {
		return 0
	}

	requireState(ctx, splitterconst.Active)
	checkAccount(account)
	common.CheckWitness(account, splitterconst.ErrUnauthorized)

	amount := drainAll(ctx, account)
	payout(account, amount)

	runtime.Notify("Withdrawal", account, amount)

	return amount
}

// BalanceOf returns the amount of GAS credited to the account.
func BalanceOf(account interop.Hash160) int {
	return getBalance(storage.GetReadOnlyContext(), account)
}

// ListBalances returns an iterator over all non-zero balances. Keys are
// account script hashes, values are balances.
func ListBalances() iterator.Iterator {
	return iterateBalances(storage.GetReadOnlyContext())
}

// Suspend freezes splits and withdrawals. It can be invoked by the pauser or
// the owner of the active ledger. Produces StateChanged notification.
func Suspend() {
	ctx := storage.GetContext()
	if isDestroyed(ctx) {
		return
	}

	checkPauser(ctx)
	transition(ctx, splitterconst.Active, splitterconst.Suspended)
}

// Resume makes the suspended ledger active again. It can be invoked by the
// pauser or the owner. Produces StateChanged notification.
func Resume() {
	ctx := storage.GetContext()
	if isDestroyed(ctx) {
		return
	}

	checkPauser(ctx)
	transition(ctx, splitterconst.Suspended, splitterconst.Active)
}

// DestroyAndSweep destroys the suspended ledger and transfers all GAS held by
// the contract to the owner, including GAS still credited to accounts. It
// returns the swept amount. Only the owner can invoke it. After destruction
// every method of the contract does nothing.
//
// Produces StateChanged notification.
func DestroyAndSweep() int {
	ctx := storage.GetContext()
	if isDestroyed(ctx) {
		return 0
	}

	owner := checkOwner(ctx)
	requireState(ctx, splitterconst.Suspended)

	destroy(ctx)

	held := gas.BalanceOf(runtime.GetExecutingScriptHash())
	if held > 0 {
		payout(owner, held)
	}

	return held
}

// SetPauser changes the account allowed to suspend and resume the ledger.
// Only the owner can invoke it.
func SetPauser(pauser interop.Hash160) {
	ctx := storage.GetContext()
	if isDestroyed(ctx) {
		return
	}

	checkOwner(ctx)
	checkAccount(pauser)

	storage.Put(ctx, pauserKey, pauser)
}

// State returns the current state of the ledger.
func State() int {
	ctx := storage.GetReadOnlyContext()
	if isDestroyed(ctx) {
		return splitterconst.Destroyed
	}

	return getState(ctx)
}

// Owner returns the owner account, nil for the destroyed ledger.
func Owner() interop.Hash160 {
	return common.GetHash160(storage.GetReadOnlyContext(), ownerKey)
}

// Pauser returns the pauser account, nil for the destroyed ledger.
func Pauser() interop.Hash160 {
	return common.GetHash160(storage.GetReadOnlyContext(), pauserKey)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

func checkAccount(h interop.Hash160) {
	if !common.IsValidHash160(h) {
		panic(splitterconst.ErrInvalidAccount)
	}
}

// receive pulls amount of GAS from the account into custody.
func receive(ctx storage.Context, from interop.Hash160, amount int) {
	storage.Put(ctx, pendingKey, amount)

	if !gas.Transfer(from, runtime.GetExecutingScriptHash(), amount, nil) {
		panic(splitterconst.ErrTransferFailed)
	}

	storage.Delete(ctx, pendingKey)
}

// payout sends amount of GAS out of custody. A refused transfer fails the
// invocation with ErrTransferFailed. An exception thrown by the recipient
// from its payment callback can't be caught across the native GAS call, it
// fails the invocation as a native call failure.
func payout(to interop.Hash160, amount int) {
	if !gas.Transfer(runtime.GetExecutingScriptHash(), to, amount, nil) {
		panic(splitterconst.ErrTransferFailed)
	}
}
