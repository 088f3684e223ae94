package dump

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func testContract(t *testing.T) state.Contract {
	ne, err := nef.NewFile([]byte{0x40})
	require.NoError(t, err)

	m := manifest.NewManifest("Splitter")
	m.ABI.Methods = []manifest.Method{{Name: "version", ReturnType: smartcontract.IntegerType, Safe: true}}

	return state.Contract{
		ContractBase: state.ContractBase{
			ID:       1,
			Hash:     util.Uint160{1, 2, 3},
			NEF:      *ne,
			Manifest: *m,
		},
	}
}

func TestDecodeItem(t *testing.T) {
	acc := util.Uint160{9, 8, 7}
	addr := address.Uint160ToString(acc)

	for _, tc := range []struct {
		name       string
		key, value []byte
		exp        Item
	}{
		{"balance", append([]byte{'b'}, acc.BytesBE()...), bigint.ToBytes(bigint.FromBytes([]byte{0x10, 0x27})),
			Item{Kind: KindBalance, Key: addr, Value: "10000"}},
		{"owner", []byte("owner"), acc.BytesBE(), Item{Kind: KindOwner, Value: addr}},
		{"pauser", []byte("pauser"), acc.BytesBE(), Item{Kind: KindPauser, Value: addr}},
		{"state", []byte("state"), []byte{1}, Item{Kind: KindState, Value: "1"}},
		{"zero state", []byte("state"), []byte{}, Item{Kind: KindState, Value: "0"}},
		{"pending", []byte("pending"), []byte{0x64}, Item{Kind: KindPending, Value: "100"}},
		{"tombstone", []byte("tombstone"), []byte{1}, Item{Kind: KindTombstone}},
		{"short balance key", []byte("b12"), []byte{1}, Item{Kind: KindRaw, Key: "YjEy", Value: "AQ=="}},
		{"malformed owner", []byte("owner"), []byte{1}, Item{Kind: KindRaw, Key: "b3duZXI=", Value: "AQ=="}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.exp, DecodeItem(tc.key, tc.value))
		})
	}
}

func TestCreatorRead(t *testing.T) {
	dir := t.TempDir()
	id := ID{Label: "test-net", Block: 42}
	ctr := testContract(t)
	acc := util.Uint160{5}

	c, err := NewCreator(dir, id, ctr)
	require.NoError(t, err)

	require.NoError(t, c.Write([]byte("state"), []byte{}))
	require.NoError(t, c.Write(append([]byte{'b'}, acc.BytesBE()...), []byte{0x2a}))
	require.NoError(t, c.Write([]byte{0xff}, []byte{0x01, 0x02}))
	require.NoError(t, c.Flush())
	c.Close()

	_, err = NewCreator(dir, id, ctr)
	require.ErrorIs(t, err, os.ErrExist)

	s, err := Read(dir, id)
	require.NoError(t, err)
	require.Equal(t, ctr.Hash, s.Contract.Hash)
	require.Equal(t, ctr.Manifest.Name, s.Contract.Manifest.Name)
	require.Equal(t, []Item{
		{Kind: KindState, Value: "0"},
		{Kind: KindBalance, Key: address.Uint160ToString(acc), Value: "42"},
		{Kind: KindRaw, Key: "/w==", Value: "AQI="},
	}, s.Items)
	require.Equal(t, map[string]string{address.Uint160ToString(acc): "42"}, s.Balances())

	_, err = Read(dir, ID{Label: "mainnet", Block: 42})
	require.Error(t, err)
}

func TestList(t *testing.T) {
	ids, err := List(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	require.Empty(t, ids)

	dir := t.TempDir()
	ctr := testContract(t)

	for _, id := range []ID{{"testnet", 200}, {"mainnet", 5}, {"testnet", 100}} {
		c, err := NewCreator(dir, id, ctr)
		require.NoError(t, err)
		require.NoError(t, c.Flush())
		c.Close()
	}

	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0700))

	ids, err = List(dir)
	require.NoError(t, err)
	require.Equal(t, []ID{{"mainnet", 5}, {"testnet", 100}, {"testnet", 200}}, ids)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken-contract.json"), nil, 0600))
	_, err = List(dir)
	require.Error(t, err)
}
