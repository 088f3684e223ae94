package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
)

// CheckWitness panics with msg if account hasn't witnessed the invocation.
func CheckWitness(account interop.Hash160, msg string) {
	if !runtime.CheckWitness(account) {
		panic(msg)
	}
}

// CheckEitherWitness panics with msg if neither of the accounts has
// witnessed the invocation.
func CheckEitherWitness(a, b interop.Hash160, msg string) {
	if !runtime.CheckWitness(a) && !runtime.CheckWitness(b) {
		panic(msg)
	}
}

// IsValidHash160 checks that h has the length of a script hash.
func IsValidHash160(h interop.Hash160) bool {
	return len(h) == interop.Hash160Len
}
