package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryUploader struct {
	objects map[string]string
	failOn  string
}

func (m *memoryUploader) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	if name == m.failOn {
		return "", errors.New("bucket is read only")
	}
	contents, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.objects[name] = string(contents)
	return "mem://" + name, nil
}

func writeFiles(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(paths[i], []byte(name), 0600))
	}
	return paths
}

func TestFiles(t *testing.T) {
	files := writeFiles(t, "J_2025.csv", "catalog_2025.xlsx")
	up := &memoryUploader{objects: map[string]string{}}

	urls, err := Files(context.Background(), up, "catalogs/2025", files)
	require.NoError(t, err)
	require.Equal(t, []string{
		"mem://catalogs/2025/J_2025.csv",
		"mem://catalogs/2025/catalog_2025.xlsx",
	}, urls)
	require.Equal(t, "J_2025.csv", up.objects["catalogs/2025/J_2025.csv"])
}

func TestFilesStopsAtFailure(t *testing.T) {
	files := writeFiles(t, "M_2025.csv", "E_2025.csv", "D_2025.csv")
	up := &memoryUploader{objects: map[string]string{}, failOn: "E_2025.csv"}

	urls, err := Files(context.Background(), up, "", files)
	require.Error(t, err)
	require.Equal(t, []string{"mem://M_2025.csv"}, urls)
	require.NotContains(t, up.objects, "D_2025.csv")

	_, err = Files(context.Background(), up, "", []string{filepath.Join(t.TempDir(), "missing.csv")})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenB2RequiresCredentials(t *testing.T) {
	t.Setenv(EnvKeyID, "")
	t.Setenv(EnvAppKey, "")
	_, err := OpenB2FromEnv(context.Background(), Config{Bucket: "catalogs"})
	require.ErrorContains(t, err, EnvKeyID)
	require.False(t, Config{}.Enabled())
}

var _ Uploader = B2Bucket{}
