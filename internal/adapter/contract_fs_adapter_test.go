package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "solseed.dev/pkg/solseed/internal/model"
)

func TestListFiles_FiltersAndSorts(t *testing.T) {
	root := t.TempDir()
	fs := NewLocalContractFSAdapter()

	for _, name := range []string{
		"b.sol",
		"a.sol",
		"nested/c.SOL",
		"nested/readme.md",
		"nested/deep/d.sol",
	} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}

	files, err := fs.ListFiles(context.Background(), m.Path(root), ".sol")
	require.NoError(t, err)

	require.Len(t, files, 4)
	assert.Equal(t, m.Path(filepath.Join(root, "a.sol")), files[0])
	assert.Equal(t, m.Path(filepath.Join(root, "b.sol")), files[1])
	assert.Equal(t, m.Path(filepath.Join(root, "nested/c.SOL")), files[2])
	assert.Equal(t, m.Path(filepath.Join(root, "nested/deep/d.sol")), files[3])
}

func TestListFiles_MissingRoot(t *testing.T) {
	fs := NewLocalContractFSAdapter()

	_, err := fs.ListFiles(context.Background(), m.Path(filepath.Join(t.TempDir(), "absent")), ".sol")
	require.Error(t, err)
}

func TestWriteFile_CreatesParents(t *testing.T) {
	root := t.TempDir()
	fs := NewLocalContractFSAdapter()
	path := m.Path(filepath.Join(root, "buggy", "Re-entrancy", "buggy_a.sol"))

	require.NoError(t, fs.WriteFile(context.Background(), path, []byte("contract A {}"), 0o640))

	content, err := fs.ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "contract A {}", string(content))
}

func TestMkdirAll(t *testing.T) {
	root := t.TempDir()
	fs := NewLocalContractFSAdapter()
	path := filepath.Join(root, "a", "b", "c")

	require.NoError(t, fs.MkdirAll(context.Background(), m.Path(path)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestContractFS_CancelledContext(t *testing.T) {
	root := t.TempDir()
	fs := NewLocalContractFSAdapter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fs.ListFiles(ctx, m.Path(root), ".sol")
	require.Error(t, err)

	_, err = fs.ReadFile(ctx, m.Path(filepath.Join(root, "x.sol")))
	require.ErrorIs(t, err, context.Canceled)

	err = fs.WriteFile(ctx, m.Path(filepath.Join(root, "x.sol")), []byte("x"), 0o644)
	require.ErrorIs(t, err, context.Canceled)

	err = fs.MkdirAll(ctx, m.Path(filepath.Join(root, "d")))
	require.ErrorIs(t, err, context.Canceled)
}
