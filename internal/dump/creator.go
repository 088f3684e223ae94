package dump

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
)

// Creator dumps the state of the Splitter contract. Output file format:
//
//	'<label>-<block>-contract.json': JSON-encoded contract state
//	'<label>-<block>-storage.csv': CSV of storage items
//
// Storage CSV rows are 'kind,key,value', see DecodeItem.
//
// Use Read to access existing snapshots.
type Creator struct {
	contract state.Contract

	stateFile, storageFile *os.File

	storageItemsCSV *csv.Writer
}

// NewCreator returns Creator which dumps the contract into given directory.
// The snapshot is identified by specified ID. Resulting Creator should be
// closed when finished working with it.
//
// NewCreator fails if snapshot with provided ID already exists.
func NewCreator(dir string, id ID, contract state.Contract) (*Creator, error) {
	pState, pStorage := statePath(dir, id), storagePath(dir, id)

	for _, p := range []string{pState, pStorage} {
		if err := checkFileNotExists(p); err != nil {
			return nil, err
		}
	}

	res := Creator{contract: contract}

	var err error

	res.stateFile, err = os.OpenFile(pState, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("open file with contract state: %w", err)
	}

	res.storageFile, err = os.OpenFile(pStorage, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		_ = res.stateFile.Close()
		return nil, fmt.Errorf("open file with storage items: %w", err)
	}

	res.storageItemsCSV = csv.NewWriter(res.storageFile)

	return &res, nil
}

// Write saves given binary key-value as decoded storage item.
func (x *Creator) Write(key, value []byte) error {
	it := DecodeItem(key, value)

	err := x.storageItemsCSV.Write([]string{it.Kind, it.Key, it.Value})
	if err != nil {
		return fmt.Errorf("write storage item as CSV data: %w", err)
	}

	return nil
}

// Flush flushes accumulated snapshot to the file system.
func (x *Creator) Flush() error {
	jEnc := json.NewEncoder(x.stateFile)
	jEnc.SetIndent("", " ")

	err := jEnc.Encode(x.contract)
	if err != nil {
		return fmt.Errorf("encode contract state to JSON: %w", err)
	}

	x.storageItemsCSV.Flush()

	err = x.storageItemsCSV.Error()
	if err != nil {
		return fmt.Errorf("flush CSV data: %w", err)
	}

	return nil
}

// Close releases underlying resources of the Creator and makes it unusable.
func (x *Creator) Close() {
	_ = x.storageFile.Close()
	_ = x.stateFile.Close()
}
