package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// GetHash160 returns the script hash stored under key or nil if there is none.
func GetHash160(ctx storage.Context, key any) interop.Hash160 {
	data := storage.Get(ctx, key)
	if data == nil {
		return nil
	}

	return data.(interop.Hash160)
}
