package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitCreatesLogDirectoryAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	fileWriter, err := Init(Options{LogDir: dir})
	require.NoError(t, err)
	require.NotNil(t, fileWriter)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestInitWithoutLogDirUsesConsoleOnly(t *testing.T) {
	fileWriter, err := Init(Options{})
	require.NoError(t, err)
	require.Nil(t, fileWriter)
}
