package dump

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ID is a unique identifier of the snapshot.
type ID struct {
	// Label of the snapshot source (e.g. testnet, mainnet).
	Label string
	// Blockchain height at which the state was pulled.
	Block uint32
}

// String returns hyphen-separated ID fields.
func (x ID) String() string {
	return x.Label + sep + strconv.FormatUint(uint64(x.Block), 10)
}

// decodeString decodes ID fields from the hyphen-separated string. Label
// may contain separators itself, block is always the last word.
func (x *ID) decodeString(s string) error {
	i := strings.LastIndex(s, sep)
	if i <= 0 {
		return fmt.Errorf("expected '%s'-separated label and block", sep)
	}

	n, err := strconv.ParseUint(s[i+1:], 10, 32)
	if err != nil {
		return fmt.Errorf("decode block number from '%s': %w", s[i+1:], err)
	}

	x.Label = s[:i]
	x.Block = uint32(n)

	return nil
}

// global encoding of unrecognized binary values.
var _encoding = base64.StdEncoding

const (
	// word separator used in snapshot file naming
	sep = "-"
	// suffix of file with contract state
	stateFileSuffix = "contract.json"
	// suffix of file with storage items
	storageFileSuffix = "storage.csv"
)

func statePath(dir string, id ID) string {
	return filepath.Join(dir, id.String()+sep+stateFileSuffix)
}

func storagePath(dir string, id ID) string {
	return filepath.Join(dir, id.String()+sep+storageFileSuffix)
}

// checkFileNotExists checks that there is no file at the specified path.
func checkFileNotExists(p string) error {
	_, err := os.Stat(p)
	if !os.IsNotExist(err) {
		if err == nil {
			err = os.ErrExist
		}
		return fmt.Errorf("file '%s' absence check failed: %w", p, err)
	}
	return nil
}
