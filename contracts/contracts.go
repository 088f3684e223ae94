/*
Package contracts provides compiled Splitter contract: NEF and manifest. The
contract can be compiled from its source code or read from the files produced
by a previous build.
*/
package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/nspcc-dev/neo-go/cli/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/compiler"
	"github.com/nspcc-dev/neo-go/pkg/config"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

const (
	// SplitterDir is the directory with the Splitter contract source code
	// relative to the repository root.
	SplitterDir = "contracts/splitter"

	nefName      = "contract.nef"
	manifestName = "manifest.json"
	configName   = "config.yml"
)

// Contract groups information about Neo contract required for deployment.
type Contract struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

var (
	errInvalidNEF      = errors.New("invalid NEF")
	errInvalidManifest = errors.New("invalid manifest")
)

// Hash returns the address the contract gets when deployed by sender.
func (c Contract) Hash(sender util.Uint160) util.Uint160 {
	return state.CreateContractHash(sender, c.NEF.Checksum, c.Manifest.Name)
}

// Compile compiles the contract from the Go package in srcDir. The package
// directory must contain config.yml with the manifest settings.
func Compile(srcDir string) (Contract, error) {
	var c Contract

	// nef.NewFile() cares about version a lot.
	if config.Version == "" {
		config.Version = "0.0.0-splitter"
	}

	compiled, di, err := compiler.CompileWithOptions(srcDir, nil, nil)
	if err != nil {
		return c, fmt.Errorf("compile %s: %w", srcDir, err)
	}
	avm := compiled.Script

	ne, err := nef.NewFile(avm)
	if err != nil {
		return c, fmt.Errorf("make NEF: %w", err)
	}

	conf, err := smartcontract.ParseContractConfig(filepath.Join(srcDir, configName))
	if err != nil {
		return c, fmt.Errorf("read contract config: %w", err)
	}

	o := &compiler.Options{}
	o.Name = conf.Name
	o.ContractEvents = conf.Events
	o.ContractSupportedStandards = conf.SupportedStandards
	o.Permissions = make([]manifest.Permission, len(conf.Permissions))
	for i := range conf.Permissions {
		o.Permissions[i] = manifest.Permission(conf.Permissions[i])
	}
	o.SafeMethods = conf.SafeMethods

	m, err := compiler.CreateManifest(di, o)
	if err != nil {
		return c, fmt.Errorf("make manifest: %w", err)
	}

	c.NEF = *ne
	c.Manifest = *m

	return c, nil
}

// Read reads the contract previously saved by Write into dir of fsys.
func Read(fsys fs.FS, dir string) (Contract, error) {
	var c Contract

	// fs.FS uses "/" even on Windows, so filepath.Join() is not applicable.
	fNEF, err := fsys.Open(path.Join(dir, nefName))
	if err != nil {
		return c, fmt.Errorf("open NEF: %w", err)
	}
	defer fNEF.Close()

	fManifest, err := fsys.Open(path.Join(dir, manifestName))
	if err != nil {
		return c, fmt.Errorf("open manifest: %w", err)
	}
	defer fManifest.Close()

	bReader := io.NewBinReaderFromIO(fNEF)
	c.NEF.DecodeBinary(bReader)
	if bReader.Err != nil {
		return c, fmt.Errorf("%w: %w", errInvalidNEF, bReader.Err)
	}

	err = json.NewDecoder(fManifest).Decode(&c.Manifest)
	if err != nil {
		return c, fmt.Errorf("%w: %w", errInvalidManifest, err)
	}

	return c, nil
}

// Write saves the contract into dir creating it if necessary.
func Write(dir string, c Contract) error {
	bNEF, err := c.NEF.Bytes()
	if err != nil {
		return fmt.Errorf("encode NEF: %w", err)
	}

	jManifest, err := json.Marshal(c.Manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err = os.WriteFile(filepath.Join(dir, nefName), bNEF, 0o644); err != nil {
		return fmt.Errorf("write NEF: %w", err)
	}

	if err = os.WriteFile(filepath.Join(dir, manifestName), jManifest, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}
