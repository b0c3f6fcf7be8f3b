package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureParentDir_CreatesNestedDirs(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "a", "b", "out.vdb")

	require.NoError(t, EnsureParentDir(path))

	fi, err := os.Stat(filepath.Join(tmp, "a", "b"))
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")

	// idempotent
	require.NoError(t, EnsureParentDir(path))
}

func TestEnsureParentDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "a"), []byte("x"), 0o600))

	err := EnsureParentDir(filepath.Join(tmp, "a", "out.vdb"))
	require.Error(t, err, "should fail when a file exists with the same name")
}

func TestRemoveIfExists(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "x")

	require.NoError(t, RemoveIfExists(path))

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	require.NoError(t, RemoveIfExists(path))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestWriteSecretFile_OwnerOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump", "export.json")

	require.NoError(t, WriteSecretFile(path, []byte(`{"vaults":{}}`)))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `{"vaults":{}}`, string(got))

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	}
}

func TestWriteSecretFile_TightensExistingMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte("old contents that are longer"), 0o644))

	require.NoError(t, WriteSecretFile(path, []byte("new")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "new", string(got))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}
