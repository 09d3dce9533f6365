//go:build cgo && !tinygo

package storage

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"receiver/hal"

	"tinygo.org/x/tinyfs"
	"tinygo.org/x/tinyfs/fatfs"
)

// memCard is a formatted in-memory card.
type memCard struct {
	*tinyfs.MemBlockDevice
}

func (c memCard) Capacity() (uint64, error) { return uint64(c.Size()), nil }

func newMemCard(t *testing.T) memCard {
	t.Helper()
	dev := tinyfs.NewMemoryDevice(64, 256, 4096)
	fs := fatfs.New(dev).Configure(&fatfs.Config{SectorSize: fatfs.SectorSize})
	require.NoError(t, fs.Format())
	return memCard{dev}
}

func readBack(t *testing.T, v *FAT, name string) ([]string, string) {
	t.Helper()
	vol, err := v.OpenVolume(0)
	require.NoError(t, err)
	defer func() { require.NoError(t, v.CloseVolume(vol)) }()
	dir, err := v.OpenRootDir(vol)
	require.NoError(t, err)
	defer func() { require.NoError(t, v.CloseDir(dir)) }()

	names, err := v.List(dir)
	require.NoError(t, err)

	f, err := v.OpenFile(dir, name, ModeReadOnly)
	require.NoError(t, err)
	defer func() { require.NoError(t, v.CloseFile(f)) }()

	var out []byte
	buf := make([]byte, 64)
	for {
		n, err := v.Read(f, buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			break
		}
		require.NoError(t, err)
	}
	return names, string(out)
}

func TestFATWriteOnceAppends(t *testing.T) {
	v := NewFAT(newMemCard(t))

	size, err := v.Capacity()
	require.NoError(t, err)
	require.Equal(t, uint64(256*4096), size)

	require.NoError(t, WriteOnce(v, SelfTestFile, SelfTestPayload))
	require.NoError(t, WriteOnce(v, SelfTestFile, SelfTestPayload))

	names, got := readBack(t, v, SelfTestFile)
	require.Equal(t, "Hello World!Hello World!", got)
	require.Contains(t, names, SelfTestFile)
}

func TestFATJournalLines(t *testing.T) {
	v := NewFAT(newMemCard(t))

	for _, frame := range []string{"node1 t=21.5", "node2 t=19.0"} {
		e := NewEntry([]byte(frame))
		require.NoError(t, WriteOnce(v, JournalFile, e.Line()))
	}

	_, got := readBack(t, v, JournalFile)
	require.Equal(t, "node1 t=21.5\nnode2 t=19.0\n", got)
}

func TestFATOpenMissingFileReadOnly(t *testing.T) {
	v := NewFAT(newMemCard(t))
	vol, err := v.OpenVolume(0)
	require.NoError(t, err)
	dir, err := v.OpenRootDir(vol)
	require.NoError(t, err)

	_, err = v.OpenFile(dir, "missing.txt", ModeReadOnly)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, v.CloseDir(dir))
	require.NoError(t, v.CloseVolume(vol))
}

func TestFATRejectsBadHandles(t *testing.T) {
	v := NewFAT(nil)

	_, err := v.Capacity()
	require.ErrorIs(t, err, hal.ErrNoDevice)

	_, err = v.OpenVolume(1)
	require.ErrorIs(t, err, ErrNoSuchVolume)
	_, err = v.OpenVolume(0)
	require.ErrorIs(t, err, hal.ErrNoDevice)

	_, err = v.OpenRootDir(0)
	require.ErrorIs(t, err, ErrBadHandle)
	_, err = v.OpenFile(0, "file.txt", ModeReadWriteCreateOrAppend)
	require.ErrorIs(t, err, ErrBadHandle)
	require.ErrorIs(t, v.Write(3, []byte("x")), ErrBadHandle)
	require.ErrorIs(t, v.CloseFile(9), ErrBadHandle)
	require.ErrorIs(t, v.CloseDir(0), ErrBadHandle)
	require.ErrorIs(t, v.CloseVolume(0), ErrBadHandle)
}

func TestFATCloseRefusesOpenChildren(t *testing.T) {
	v := NewFAT(nil)
	v.vols[0] = fatVolume{inUse: true, dirs: 1}
	v.dirs[0] = fatDir{inUse: true, vol: 0, path: "/", files: 1}

	require.ErrorIs(t, v.CloseDir(0), ErrHandleBusy)
	require.ErrorIs(t, v.CloseVolume(0), ErrHandleBusy)

	v.dirs[0].files = 0
	require.NoError(t, v.CloseDir(0))
	require.Zero(t, v.vols[0].dirs)
}
