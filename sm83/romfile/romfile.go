// Package romfile reads program images from disk, unpacking the archive and
// compression formats ROM sets are commonly distributed in.
package romfile

import (
	"archive/zip"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

var (
	// ErrEmptyArchive is returned for archives with no regular file in them.
	ErrEmptyArchive = errors.New("archive contains no files")
	// ErrUnsupportedFormat is returned for file extensions that are neither a
	// raw image nor a known container.
	ErrUnsupportedFormat = errors.New("unsupported ROM file format")
)

// Load reads the file at path and returns the program image inside it.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(filepath.Base(path), data)
}

// Decode returns the program image held in data, picking the format from
// the extension of name. Archives yield their first regular file.
func Decode(name string, data []byte) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(name))

	var (
		r   io.Reader
		err error
	)
	switch ext {
	case "", ".gb", ".gbc", ".bin", ".rom":
		return data, nil
	case ".gz":
		r, err = gzip.NewReader(bytes.NewReader(data))
	case ".bz2":
		r = bzip2.NewReader(bytes.NewReader(data))
	case ".xz":
		r, err = xz.NewReader(bytes.NewReader(data))
	case ".zst":
		var d *zstd.Decoder
		d, err = zstd.NewReader(bytes.NewReader(data))
		if err == nil {
			defer d.Close()
			r = d
		}
	case ".zip":
		return firstZipEntry(data)
	case ".7z":
		return firstSevenZipEntry(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}

	image, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", name, err)
	}
	return image, nil
}

func firstZipEntry(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening zip: %w", err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		return readEntry(f.Name, f.Open)
	}
	return nil, ErrEmptyArchive
}

func firstSevenZipEntry(data []byte) ([]byte, error) {
	sr, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening 7z: %w", err)
	}
	for _, f := range sr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		return readEntry(f.Name, f.Open)
	}
	return nil, ErrEmptyArchive
}

func readEntry(name string, open func() (io.ReadCloser, error)) ([]byte, error) {
	rc, err := open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer rc.Close()

	image, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return image, nil
}
