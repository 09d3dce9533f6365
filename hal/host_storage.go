//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"
)

// ImageCard is a Card backed by a raw disk image file. The file is opened
// the first time Capacity is called, like a card being brought up.
type ImageCard struct {
	mu   sync.Mutex
	path string
	f    *os.File
	size int64
}

func NewImageCard(path string) *ImageCard {
	return &ImageCard{path: path}
}

func (c *ImageCard) Capacity() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.f == nil {
		f, err := os.OpenFile(c.path, os.O_RDWR, 0)
		if err != nil {
			return 0, fmt.Errorf("sd image %s: %w", c.path, err)
		}
		st, err := f.Stat()
		if err != nil {
			f.Close()
			return 0, fmt.Errorf("sd image %s: %w", c.path, err)
		}
		if st.Size() < SectorBytes {
			f.Close()
			return 0, fmt.Errorf("sd image %s: %w", c.path, ErrNoDevice)
		}
		c.f = f
		c.size = st.Size() - st.Size()%SectorBytes
	}
	return uint64(c.size), nil
}

func (c *ImageCard) file() (*os.File, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.f == nil {
		return nil, ErrNoDevice
	}
	return c.f, nil
}

func (c *ImageCard) ReadAt(p []byte, off int64) (int, error) {
	f, err := c.file()
	if err != nil {
		return 0, err
	}
	return f.ReadAt(p, off)
}

func (c *ImageCard) WriteAt(p []byte, off int64) (int, error) {
	f, err := c.file()
	if err != nil {
		return 0, err
	}
	return f.WriteAt(p, off)
}

func (c *ImageCard) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

func (c *ImageCard) WriteBlockSize() int64 { return SectorBytes }
func (c *ImageCard) EraseBlockSize() int64 { return SectorBytes }

func (c *ImageCard) EraseBlocks(start, length int64) error {
	f, err := c.file()
	if err != nil {
		return err
	}
	zero := make([]byte, SectorBytes)
	for i := int64(0); i < length; i++ {
		if _, err := f.WriteAt(zero, (start+i)*SectorBytes); err != nil {
			return err
		}
	}
	return nil
}

// Close syncs and releases the image file.
func (c *ImageCard) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.f == nil {
		return nil
	}
	err := c.f.Sync()
	if cerr := c.f.Close(); err == nil {
		err = cerr
	}
	c.f = nil
	return err
}
