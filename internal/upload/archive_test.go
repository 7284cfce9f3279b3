package upload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateTarExcludesLockFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.bin"), []byte("beta"), 0o644))
	require.NoError(t, os.WriteFile(dir+"_lock", []byte{}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale_archive_lock.tar"), []byte("stale"), 0o644))

	tarPath, gzPath := archivePaths(dir)
	require.NoError(t, createTar(dir, tarPath))
	require.NoError(t, compressToGz(tarPath, gzPath))
	require.NoError(t, os.Remove(tarPath))

	destDir := t.TempDir()
	require.NoError(t, ExtractArchive(gzPath, destDir))

	a, err := os.ReadFile(filepath.Join(destDir, "a.bin"))
	require.NoError(t, err)
	require.Equal(t, "alpha", string(a))

	b, err := os.ReadFile(filepath.Join(destDir, "b.bin"))
	require.NoError(t, err)
	require.Equal(t, "beta", string(b))

	entries, err := os.ReadDir(destDir)
	require.NoError(t, err)
	require.Len(t, entries, 2, "lock sentinel must not be present in the extracted archive")
}

func TestEmptyFolderPreservesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "b.bin"), []byte("y"), 0o644))

	require.NoError(t, emptyFolder(dir))

	_, err := os.Stat(filepath.Join(dir, "a.bin"))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(sub, "b.bin"))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(sub)
	require.NoError(t, err, "subdirectory structure must survive emptying")
}
