package hal

import "tinygo.org/x/tinyfs"

// SectorBytes is the SD card block size.
const SectorBytes = 512

// Card is a removable block device.
type Card interface {
	tinyfs.BlockDevice

	// Capacity brings the card up if needed and returns its size in bytes.
	Capacity() (uint64, error)
}

type nullCard struct{}

func (nullCard) Capacity() (uint64, error)                { return 0, ErrNoDevice }
func (nullCard) ReadAt(p []byte, off int64) (int, error)  { return 0, ErrNoDevice }
func (nullCard) WriteAt(p []byte, off int64) (int, error) { return 0, ErrNoDevice }
func (nullCard) Size() int64                              { return 0 }
func (nullCard) WriteBlockSize() int64                    { return SectorBytes }
func (nullCard) EraseBlockSize() int64                    { return SectorBytes }
func (nullCard) EraseBlocks(start, length int64) error    { return ErrNoDevice }
