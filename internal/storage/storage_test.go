package storage

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestDataDir(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	m := New(fs)

	dir, err := m.DataDir()
	require.NoError(t, err)
	require.Equal(t, AppName, filepath.Base(dir))

	exists, err := afero.DirExists(fs, dir)
	require.NoError(t, err)
	require.True(t, exists)
}

func TestLogPath(t *testing.T) {
	t.Parallel()

	m := New(afero.NewMemMapFs())

	path, err := m.LogPath()
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, filepath.Join(AppName, "styleguard.log")))
}

func TestHistoryPath(t *testing.T) {
	t.Parallel()

	m := New(afero.NewMemMapFs())

	path, err := m.HistoryPath()
	require.NoError(t, err)
	require.Equal(t, "history.db", filepath.Base(path))
	require.Equal(t, AppName, filepath.Base(filepath.Dir(path)))
}
