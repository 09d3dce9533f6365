//go:build !tinygo && !cgo

package storage

import "receiver/hal"

// FAT needs the C FatFs sources; without cgo only Capacity works.
type FAT struct {
	card hal.Card
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

func (v *FAT) OpenVolume(int) (Volume, error)           { return 0, ErrUnsupported }
func (v *FAT) OpenRootDir(Volume) (Dir, error)          { return 0, ErrUnsupported }
func (v *FAT) OpenFile(Dir, string, Mode) (File, error) { return 0, ErrUnsupported }
func (v *FAT) Write(File, []byte) error                 { return ErrUnsupported }
func (v *FAT) Read(File, []byte) (int, error)           { return 0, ErrUnsupported }
func (v *FAT) List(Dir) ([]string, error)               { return nil, ErrUnsupported }
func (v *FAT) CloseFile(File) error                     { return ErrUnsupported }
func (v *FAT) CloseDir(Dir) error                       { return ErrUnsupported }
func (v *FAT) CloseVolume(Volume) error                 { return ErrUnsupported }
