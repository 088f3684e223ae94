package splitter

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Name is the manifest name of the Splitter contract.
const Name = "Splitter"

// ContractStateGetter is the interface required for contract state resolution
// using a known contract hash.
type ContractStateGetter interface {
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// ParseHash parses the contract script hash given either as an LE hex string
// or as a Neo address.
func ParseHash(s string) (util.Uint160, error) {
	h, err := util.Uint160DecodeStringLE(s)
	if err == nil {
		return h, nil
	}

	h, err = address.StringToUint160(s)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("neither a script hash nor an address: %s", s)
	}

	return h, nil
}

// CheckDeployed makes sure the contract deployed at h is a Splitter.
func CheckDeployed(sg ContractStateGetter, h util.Uint160) error {
	c, err := sg.GetContractStateByHash(h)
	if err != nil {
		return fmt.Errorf("get contract state %s: %w", h.StringLE(), err)
	}

	if c.Manifest.Name != Name {
		return fmt.Errorf("contract %s is %q, not %q", h.StringLE(), c.Manifest.Name, Name)
	}

	return nil
}
