package splitter

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/neo-splitter/common"
	"github.com/nspcc-dev/neo-splitter/contracts/splitter/splitterconst"
)

const (
	ownerKey     = "owner"
	pauserKey    = "pauser"
	stateKey     = "state"
	tombstoneKey = "tombstone"
)

// isDestroyed reports whether the ledger has been destroyed. Exported methods
// return immediately if it has.
func isDestroyed(ctx storage.Context) bool {
	return storage.Get(ctx, tombstoneKey) != nil
}

func getState(ctx storage.Context) int {
	data := storage.Get(ctx, stateKey)
	if data == nil {
		return splitterconst.Active
	}

	return data.(int)
}

func requireState(ctx storage.Context, expected int) {
	if getState(ctx) != expected {
		panic(splitterconst.ErrInvalidStateTransition)
	}
}

func transition(ctx storage.Context, from, to int) {
	requireState(ctx, from)
	storage.Put(ctx, stateKey, to)
	runtime.Notify("StateChanged", to)
}

// checkOwner panics unless the owner witnessed the invocation. It returns
// the owner account.
func checkOwner(ctx storage.Context) interop.Hash160 {
	owner := common.GetHash160(ctx, ownerKey)
	common.CheckWitness(owner, splitterconst.ErrUnauthorized)

	return owner
}

// checkPauser panics unless either the pauser or the owner witnessed the
// invocation.
func checkPauser(ctx storage.Context) {
	owner := common.GetHash160(ctx, ownerKey)
	pauser := common.GetHash160(ctx, pauserKey)
	common.CheckEitherWitness(pauser, owner, splitterconst.ErrUnauthorized)
}

// destroy wipes the ledger and leaves the tombstone in its place.
func destroy(ctx storage.Context) {
	wipe(ctx)
	storage.Put(ctx, tombstoneKey, []byte{1})
	runtime.Notify("StateChanged", splitterconst.Destroyed)
}
