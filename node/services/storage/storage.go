// Package storage runs the SD card logger on core 1.
package storage

import (
	"errors"
	"fmt"
)

var (
	ErrNoSuchVolume = errors.New("storage: no such volume")
	ErrBadHandle    = errors.New("storage: bad handle")
	ErrTooManyOpen  = errors.New("storage: too many open handles")
	ErrHandleBusy   = errors.New("storage: handle has open children")
	ErrNotFound     = errors.New("storage: not found")
	ErrExists       = errors.New("storage: already exists")
	ErrDenied       = errors.New("storage: access denied")
	ErrNoFilesystem = errors.New("storage: no filesystem")
	ErrReadOnly     = errors.New("storage: file opened read-only")
	ErrUnsupported  = errors.New("storage: unsupported in this build")
)

// Mode selects how OpenFile treats an existing or missing file.
type Mode uint8

const (
	ModeReadOnly Mode = iota
	ModeReadWriteCreateOrAppend
	ModeReadWriteCreateOrTruncate
)

func (m Mode) String() string {
	switch m {
	case ModeReadOnly:
		return "read-only"
	case ModeReadWriteCreateOrAppend:
		return "create-or-append"
	case ModeReadWriteCreateOrTruncate:
		return "create-or-truncate"
	default:
		return "unknown"
	}
}

// Opaque handles issued by a VolumeManager.
type (
	Volume uint8
	Dir    uint8
	File   uint8
)

// VolumeManager is the filesystem collaborator of the storage task.
//
// Handles come from bounded tables; every successful Open must be matched by
// the corresponding Close.
type VolumeManager interface {
	Capacity() (uint64, error)
	OpenVolume(idx int) (Volume, error)
	OpenRootDir(v Volume) (Dir, error)
	OpenFile(d Dir, name string, mode Mode) (File, error)
	Write(f File, data []byte) error
	CloseFile(f File) error
	CloseDir(d Dir) error
	CloseVolume(v Volume) error
}

// WriteOnce appends payload to name in the root of volume 0.
//
// Whatever happens after an Open succeeds, the matching Close runs exactly
// once, file before dir before volume. Close errors are joined to the result.
func WriteOnce(vm VolumeManager, name string, payload []byte) (err error) {
	vol, err := vm.OpenVolume(0)
	if err != nil {
		return fmt.Errorf("storage open volume: %w", err)
	}
	defer func() {
		if cerr := vm.CloseVolume(vol); cerr != nil {
			err = errors.Join(err, fmt.Errorf("storage close volume: %w", cerr))
		}
	}()

	dir, err := vm.OpenRootDir(vol)
	if err != nil {
		return fmt.Errorf("storage open root dir: %w", err)
	}
	defer func() {
		if cerr := vm.CloseDir(dir); cerr != nil {
			err = errors.Join(err, fmt.Errorf("storage close dir: %w", cerr))
		}
	}()

	f, err := vm.OpenFile(dir, name, ModeReadWriteCreateOrAppend)
	if err != nil {
		return fmt.Errorf("storage open %s: %w", name, err)
	}
	defer func() {
		if cerr := vm.CloseFile(f); cerr != nil {
			err = errors.Join(err, fmt.Errorf("storage close %s: %w", name, cerr))
		}
	}()

	if err := vm.Write(f, payload); err != nil {
		return fmt.Errorf("storage write %s: %w", name, err)
	}
	return nil
}
