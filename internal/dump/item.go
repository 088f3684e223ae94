package dump

import (
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Kinds of storage items.
const (
	KindBalance   = "balance"
	KindOwner     = "owner"
	KindPauser    = "pauser"
	KindState     = "state"
	KindPending   = "pending"
	KindTombstone = "tombstone"
	KindRaw       = "raw"
)

// Item is a storage item of the Splitter contract in a human-readable form.
type Item struct {
	Kind  string
	Key   string
	Value string
}

// DecodeItem recognizes the contract storage item by its key. Unknown or
// malformed items are returned as KindRaw with base64-encoded key and value.
func DecodeItem(key, value []byte) Item {
	if len(key) == 1+util.Uint160Size && key[0] == 'b' {
		acc, err := util.Uint160DecodeBytesBE(key[1:])
		if err == nil {
			return Item{
				Kind:  KindBalance,
				Key:   address.Uint160ToString(acc),
				Value: bigint.FromBytes(value).String(),
			}
		}
	}

	switch k := string(key); k {
	case KindOwner, KindPauser:
		acc, err := util.Uint160DecodeBytesBE(value)
		if err == nil {
			return Item{Kind: k, Value: address.Uint160ToString(acc)}
		}
	case KindState, KindPending:
		return Item{Kind: k, Value: bigint.FromBytes(value).String()}
	case KindTombstone:
		return Item{Kind: k}
	}

	return Item{
		Kind:  KindRaw,
		Key:   _encoding.EncodeToString(key),
		Value: _encoding.EncodeToString(value),
	}
}
