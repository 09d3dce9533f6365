//go:build !tinygo && cgo

// Command sdcat inspects the FAT image the host build uses as its SD card.
//
//	sdcat -image sd.img               list the root directory
//	sdcat -image sd.img file.txt      print a file
//	sdcat -image sd.img -append hi x  append a line to x, then print it
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"receiver/hal"
	"receiver/node/services/storage"
)

func main() {
	var imagePath string
	var appendText string
	flag.StringVar(&imagePath, "image", "", "FAT image file standing in for the SD card.")
	flag.StringVar(&appendText, "append", "", "Append this line to the named file before printing it.")
	flag.Parse()

	if imagePath == "" {
		fmt.Fprintln(os.Stderr, "error: -image is required")
		os.Exit(2)
	}
	if flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "error: at most one file name")
		os.Exit(2)
	}
	if appendText != "" && flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "error: -append needs a file name")
		os.Exit(2)
	}

	if err := run(os.Stdout, imagePath, flag.Arg(0), appendText); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(w io.Writer, imagePath, name, appendText string) error {
	card := hal.NewImageCard(imagePath)
	defer func() { _ = card.Close() }()

	fat := storage.NewFAT(card)
	size, err := fat.Capacity()
	if err != nil {
		return fmt.Errorf("image %q: %w", imagePath, err)
	}

	if appendText != "" {
		if err := storage.WriteOnce(fat, name, []byte(appendText+"\n")); err != nil {
			return err
		}
	}

	vol, err := fat.OpenVolume(0)
	if err != nil {
		return err
	}
	defer func() { _ = fat.CloseVolume(vol) }()
	dir, err := fat.OpenRootDir(vol)
	if err != nil {
		return err
	}
	defer func() { _ = fat.CloseDir(dir) }()

	if name == "" {
		names, err := fat.List(dir)
		if err != nil {
			return err
		}
		sort.Strings(names)
		fmt.Fprintf(w, "# %s: %d bytes\n", imagePath, size)
		for _, n := range names {
			fmt.Fprintln(w, n)
		}
		return nil
	}

	f, err := fat.OpenFile(dir, name, storage.ModeReadOnly)
	if err != nil {
		return err
	}
	defer func() { _ = fat.CloseFile(f) }()

	buf := make([]byte, hal.SectorBytes)
	for {
		n, err := fat.Read(f, buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
}
