package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/util"
)

// AbortWithMessage calls `runtime.Log` with passed message
// and calls `ABORT` opcode. Unlike panic, ABORT can't be caught
// by the calling contract.
func AbortWithMessage(msg string) {
	runtime.Log(msg)
	util.Abort()
}
