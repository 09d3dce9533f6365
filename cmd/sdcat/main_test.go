//go:build !tinygo && cgo

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"receiver/hal"
	"receiver/node/services/storage"

	"tinygo.org/x/tinyfs/fatfs"
)

const imageBytes = 1 << 20

func newImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sd.img")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(imageBytes))
	require.NoError(t, f.Close())

	card := hal.NewImageCard(path)
	_, err = card.Capacity()
	require.NoError(t, err)
	fs := fatfs.New(card).Configure(&fatfs.Config{SectorSize: fatfs.SectorSize})
	require.NoError(t, fs.Format())
	require.NoError(t, card.Close())
	return path
}

func TestRunAppendThenPrint(t *testing.T) {
	path := newImage(t)

	var out bytes.Buffer
	require.NoError(t, run(&out, path, storage.JournalFile, "node1 up"))
	require.Equal(t, "node1 up\n", out.String())

	out.Reset()
	require.NoError(t, run(&out, path, storage.JournalFile, "node2 up"))
	require.Equal(t, "node1 up\nnode2 up\n", out.String())
}

func TestRunListsRoot(t *testing.T) {
	path := newImage(t)
	require.NoError(t, run(&bytes.Buffer{}, path, "b.txt", "x"))
	require.NoError(t, run(&bytes.Buffer{}, path, "a.txt", "y"))

	var out bytes.Buffer
	require.NoError(t, run(&out, path, "", ""))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "# "+path))
	require.Equal(t, []string{"a.txt", "b.txt"}, lines[1:])
}

func TestRunMissingFile(t *testing.T) {
	path := newImage(t)
	err := run(&bytes.Buffer{}, path, "missing.txt", "")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRunNoImage(t *testing.T) {
	err := run(&bytes.Buffer{}, filepath.Join(t.TempDir(), "none.img"), "", "")
	require.ErrorIs(t, err, os.ErrNotExist)
}
