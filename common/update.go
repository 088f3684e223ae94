package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
)

// UpdateContract replaces code and manifest of the calling contract. The
// version of the running code is appended to data and checked by _deploy of
// the new one. Access checks are up to the caller.
func UpdateContract(script []byte, manifest []byte, data any) {
	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, AppendVersion(data))
}
