package splitter

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/neo-splitter/contracts/splitter/splitterconst"
)

const balancePrefix = 'b'

func balanceKey(account interop.Hash160) []byte {
	return append([]byte{balancePrefix}, account...)
}

func getBalance(ctx storage.Context, account interop.Hash160) int {
	data := storage.Get(ctx, balanceKey(account))
	if data == nil {
		return 0
	}

	return data.(int)
}

// credit adds amount to the account balance. Zero credits don't create
// storage items.
func credit(ctx storage.Context, account interop.Hash160, amount int) {
	if amount == 0 {
		return
	}

	balance := getBalance(ctx, account)
	if balance > splitterconst.MaxBalance-amount {
		panic(splitterconst.ErrArithmeticOverflow)
	}

	storage.Put(ctx, balanceKey(account), balance+amount)
}

// drainAll zeroes the account balance and returns what it was. The balance
// is gone from storage before the caller gets the amount.
func drainAll(ctx storage.Context, account interop.Hash160) int {
	balance := getBalance(ctx, account)
	if balance == 0 {
		panic(splitterconst.ErrNothingToWithdraw)
	}

	storage.Delete(ctx, balanceKey(account))

	return balance
}

func iterateBalances(ctx storage.Context) iterator.Iterator {
	return storage.Find(ctx, []byte{balancePrefix}, storage.RemovePrefix)
}

// wipe deletes every storage item of the contract.
func wipe(ctx storage.Context) {
	keys := [][]byte{}

	it := storage.Find(ctx, []byte{}, storage.KeysOnly)
	for iterator.Next(it) {
		keys = append(keys, iterator.Value(it).([]byte))
	}

	for i := range keys {
		storage.Delete(ctx, keys[i])
	}
}
