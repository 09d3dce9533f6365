//go:build tinygo || cgo

package storage

import (
	"errors"
	"fmt"
	"io"
	"os"

	"receiver/hal"

	"tinygo.org/x/tinyfs"
	"tinygo.org/x/tinyfs/fatfs"
)

const (
	maxVolumes = 1
	maxDirs    = 4
	maxFiles   = 4
)

type fatVolume struct {
	inUse bool
	fs    *fatfs.FATFS
	dirs  int
}

type fatDir struct {
	inUse bool
	vol   Volume
	path  string
	files int
}

type fatFile struct {
	inUse bool
	dir   Dir
	f     tinyfs.File
	mode  Mode
}

// FAT is a VolumeManager over a FAT formatted card. Volume 0 is the whole
// card; it is mounted by OpenVolume and unmounted by CloseVolume.
type FAT struct {
	card hal.Card

	vols  [maxVolumes]fatVolume
	dirs  [maxDirs]fatDir
	files [maxFiles]fatFile
}

func NewFAT(card hal.Card) *FAT {
	return &FAT{card: card}
}

func (v *FAT) Capacity() (uint64, error) {
	if v.card == nil {
		return 0, hal.ErrNoDevice
	}
	return v.card.Capacity()
}

func (v *FAT) OpenVolume(idx int) (Volume, error) {
	if idx < 0 || idx >= maxVolumes {
		return 0, fmt.Errorf("volume %d: %w", idx, ErrNoSuchVolume)
	}
	vol := &v.vols[idx]
	if vol.inUse {
		return 0, fmt.Errorf("volume %d: %w", idx, ErrTooManyOpen)
	}
	if v.card == nil {
		return 0, hal.ErrNoDevice
	}
	fs := fatfs.New(v.card).Configure(&fatfs.Config{SectorSize: fatfs.SectorSize})
	if err := fs.Mount(); err != nil {
		// Removable media is never formatted implicitly.
		return 0, mapFatErr("mount", err)
	}
	*vol = fatVolume{inUse: true, fs: fs}
	return Volume(idx), nil
}

func (v *FAT) OpenRootDir(h Volume) (Dir, error) {
	vol, err := v.volume(h)
	if err != nil {
		return 0, err
	}
	f, err := vol.fs.OpenFile("/", os.O_RDONLY)
	if err != nil {
		return 0, mapFatErr("open root", err)
	}
	_ = f.Close()

	for i := range v.dirs {
		if v.dirs[i].inUse {
			continue
		}
		v.dirs[i] = fatDir{inUse: true, vol: h, path: "/"}
		vol.dirs++
		return Dir(i), nil
	}
	return 0, fmt.Errorf("open root: %w", ErrTooManyOpen)
}

func (v *FAT) OpenFile(h Dir, name string, mode Mode) (File, error) {
	dir, err := v.dir(h)
	if err != nil {
		return 0, err
	}
	vol := &v.vols[dir.vol]

	var flags int
	switch mode {
	case ModeReadOnly:
		flags = os.O_RDONLY
	case ModeReadWriteCreateOrAppend:
		flags = os.O_RDWR | os.O_CREATE | os.O_APPEND
	case ModeReadWriteCreateOrTruncate:
		flags = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	default:
		return 0, fmt.Errorf("open %s: invalid mode %d", name, mode)
	}

	slot := -1
	for i := range v.files {
		if !v.files[i].inUse {
			slot = i
			break
		}
	}
	if slot < 0 {
		return 0, fmt.Errorf("open %s: %w", name, ErrTooManyOpen)
	}

	f, err := vol.fs.OpenFile(dir.path+name, flags)
	if err != nil {
		return 0, mapFatErr("open "+name, err)
	}
	v.files[slot] = fatFile{inUse: true, dir: h, f: f, mode: mode}
	dir.files++
	return File(slot), nil
}

func (v *FAT) Write(h File, data []byte) error {
	f, err := v.file(h)
	if err != nil {
		return err
	}
	if f.mode == ModeReadOnly {
		return ErrReadOnly
	}
	for len(data) > 0 {
		n, err := f.f.Write(data)
		if err != nil {
			return mapFatErr("write", err)
		}
		if n == 0 {
			return mapFatErr("write", io.ErrShortWrite)
		}
		data = data[n:]
	}
	return nil
}

// Read reads from a file opened with any mode.
func (v *FAT) Read(h File, p []byte) (int, error) {
	f, err := v.file(h)
	if err != nil {
		return 0, err
	}
	n, err := f.f.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, mapFatErr("read", err)
	}
	return n, err
}

// List returns the entry names of a directory.
func (v *FAT) List(h Dir) ([]string, error) {
	dir, err := v.dir(h)
	if err != nil {
		return nil, err
	}
	f, err := v.vols[dir.vol].fs.OpenFile(dir.path, os.O_RDONLY)
	if err != nil {
		return nil, mapFatErr("open dir", err)
	}
	defer func() { _ = f.Close() }()

	infos, err := f.Readdir(0)
	if err != nil {
		return nil, mapFatErr("readdir", err)
	}
	names := make([]string, 0, len(infos))
	for _, fi := range infos {
		if n := fi.Name(); n != "." && n != ".." {
			names = append(names, n)
		}
	}
	return names, nil
}

func (v *FAT) CloseFile(h File) error {
	f, err := v.file(h)
	if err != nil {
		return err
	}
	cerr := f.f.Close()
	v.dirs[f.dir].files--
	*f = fatFile{}
	return mapFatErr("close file", cerr)
}

func (v *FAT) CloseDir(h Dir) error {
	dir, err := v.dir(h)
	if err != nil {
		return err
	}
	if dir.files > 0 {
		return fmt.Errorf("close dir: %w", ErrHandleBusy)
	}
	v.vols[dir.vol].dirs--
	*dir = fatDir{}
	return nil
}

func (v *FAT) CloseVolume(h Volume) error {
	vol, err := v.volume(h)
	if err != nil {
		return err
	}
	if vol.dirs > 0 {
		return fmt.Errorf("close volume: %w", ErrHandleBusy)
	}
	uerr := vol.fs.Unmount()
	*vol = fatVolume{}
	return mapFatErr("unmount", uerr)
}

func (v *FAT) volume(h Volume) (*fatVolume, error) {
	if int(h) >= len(v.vols) || !v.vols[h].inUse {
		return nil, fmt.Errorf("volume %d: %w", h, ErrBadHandle)
	}
	return &v.vols[h], nil
}

func (v *FAT) dir(h Dir) (*fatDir, error) {
	if int(h) >= len(v.dirs) || !v.dirs[h].inUse {
		return nil, fmt.Errorf("dir %d: %w", h, ErrBadHandle)
	}
	return &v.dirs[h], nil
}

func (v *FAT) file(h File) (*fatFile, error) {
	if int(h) >= len(v.files) || !v.files[h].inUse {
		return nil, fmt.Errorf("file %d: %w", h, ErrBadHandle)
	}
	return &v.files[h], nil
}

func mapFatErr(op string, err error) error {
	if err == nil {
		return nil
	}

	var fr fatfs.FileResult
	if errors.As(err, &fr) {
		switch fr {
		case fatfs.FileResultNoFile, fatfs.FileResultNoPath:
			return fmt.Errorf("fat %s: %w", op, ErrNotFound)
		case fatfs.FileResultExist:
			return fmt.Errorf("fat %s: %w", op, ErrExists)
		case fatfs.FileResultDenied, fatfs.FileResultLocked:
			return fmt.Errorf("fat %s: %w", op, ErrDenied)
		case fatfs.FileResultNoFilesystem:
			return fmt.Errorf("fat %s: %w", op, ErrNoFilesystem)
		default:
			return fmt.Errorf("fat %s: %v", op, err)
		}
	}

	return fmt.Errorf("fat %s: %w", op, err)
}
