package dump

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
)

// Snapshot is the contract state read from the file system.
type Snapshot struct {
	Contract state.Contract
	Items    []Item
}

// Balances returns balances of the snapshot indexed by account address.
func (x Snapshot) Balances() map[string]string {
	res := make(map[string]string)
	for i := range x.Items {
		if x.Items[i].Kind == KindBalance {
			res[x.Items[i].Key] = x.Items[i].Value
		}
	}
	return res
}

// List returns IDs of all snapshots in the specified directory ordered by
// label and block. Missing directory has no snapshots.
func List(dir string) ([]ID, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var res []ID

	for i := range entries {
		name := entries[i].Name()
		if entries[i].IsDir() || !strings.HasSuffix(name, sep+stateFileSuffix) {
			continue
		}

		var id ID

		err = id.decodeString(strings.TrimSuffix(name, sep+stateFileSuffix))
		if err != nil {
			return nil, fmt.Errorf("decode snapshot ID from file name '%s': %w", name, err)
		}

		res = append(res, id)
	}

	sort.Slice(res, func(i, j int) bool {
		if res[i].Label != res[j].Label {
			return res[i].Label < res[j].Label
		}
		return res[i].Block < res[j].Block
	})

	return res, nil
}

// Read reads the snapshot with the given ID from the specified directory.
func Read(dir string, id ID) (*Snapshot, error) {
	fState, err := os.Open(statePath(dir, id))
	if err != nil {
		return nil, fmt.Errorf("open file with contract state: %w", err)
	}
	defer fState.Close()

	fStorage, err := os.Open(storagePath(dir, id))
	if err != nil {
		return nil, fmt.Errorf("open file with storage items: %w", err)
	}
	defer fStorage.Close()

	var res Snapshot

	err = json.NewDecoder(fState).Decode(&res.Contract)
	if err != nil {
		return nil, fmt.Errorf("decode contract state from JSON: %w", err)
	}

	_csv := csv.NewReader(fStorage)
	_csv.FieldsPerRecord = 3

	for {
		rec, err := _csv.Read()
		if err != nil {
			if err == io.EOF {
				return &res, nil
			}
			return nil, fmt.Errorf("read next CSV record: %w", err)
		}

		// out-of-range safety guaranteed by csv settings
		res.Items = append(res.Items, Item{Kind: rec[0], Key: rec[1], Value: rec[2]})
	}
}
