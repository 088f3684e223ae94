package contracts

import (
	"encoding/json"
	"os"
	"testing"
	"testing/fstest"

	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

const testDir = "splitter"

func TestCompile(t *testing.T) {
	c, err := Compile(testDir)
	require.NoError(t, err)
	require.Equal(t, "Splitter", c.Manifest.Name)

	for _, name := range []string{"split", "withdraw", "balanceOf", "suspend", "resume", "destroyAndSweep", "onNEP17Payment"} {
		require.NotNil(t, c.Manifest.ABI.GetMethod(name, -1), name)
	}
	require.Len(t, c.Manifest.ABI.Events, 3)

	require.NotEqual(t, c.Hash(util.Uint160{1}), c.Hash(util.Uint160{2}))

	_, err = Compile("nonexistent")
	require.Error(t, err)
}

func TestWriteRead(t *testing.T) {
	_nef, _ := anyValidNEF(t)
	_manifest, _ := anyValidManifest(t, "Splitter")

	dir := t.TempDir()
	require.NoError(t, Write(dir, Contract{NEF: _nef, Manifest: _manifest}))

	c, err := Read(os.DirFS(dir), ".")
	require.NoError(t, err)
	require.Equal(t, _nef.Checksum, c.NEF.Checksum)
	require.Equal(t, _manifest.Name, c.Manifest.Name)
}

func TestReadMissingFiles(t *testing.T) {
	_fs := fstest.MapFS{}

	// Missing NEF
	_, err := Read(_fs, testDir)
	require.Error(t, err)

	// Missing manifest.
	_fs[testDir+"/"+nefName] = &fstest.MapFile{}
	_, err = Read(_fs, testDir)
	require.Error(t, err)
}

func TestReadInvalidFormat(t *testing.T) {
	var (
		_fs          = fstest.MapFS{}
		nefPath      = testDir + "/" + nefName
		manifestPath = testDir + "/" + manifestName
	)

	_, validNEF := anyValidNEF(t)
	_, validManifest := anyValidManifest(t, "zero")

	_fs[nefPath] = &fstest.MapFile{Data: validNEF}
	_fs[manifestPath] = &fstest.MapFile{Data: validManifest}

	_, err := Read(_fs, testDir)
	require.NoError(t, err)

	_fs[nefPath] = &fstest.MapFile{Data: []byte("not a NEF")}
	_fs[manifestPath] = &fstest.MapFile{Data: validManifest}

	_, err = Read(_fs, testDir)
	require.ErrorIs(t, err, errInvalidNEF)

	_fs[nefPath] = &fstest.MapFile{Data: validNEF}
	_fs[manifestPath] = &fstest.MapFile{Data: []byte("not a manifest")}

	_, err = Read(_fs, testDir)
	require.ErrorIs(t, err, errInvalidManifest)
}

func anyValidNEF(tb testing.TB) (nef.File, []byte) {
	script := make([]byte, 32)

	_nef, err := nef.NewFile(script)
	require.NoError(tb, err)

	bNEF, err := _nef.Bytes()
	require.NoError(tb, err)

	return *_nef, bNEF
}

func anyValidManifest(tb testing.TB, name string) (manifest.Manifest, []byte) {
	_manifest := manifest.NewManifest(name)

	jManifest, err := json.Marshal(_manifest)
	require.NoError(tb, err)

	return *_manifest, jManifest
}
