// Package archive provides read access to packaged game-asset archives
// (.jar/.zip files) held in memory.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/h2non/filetype"
	"github.com/klauspost/compress/zip"
)

// Archive errors.
var (
	ErrNotZip   = errors.New("archive data is not a zip file")
	ErrNotFound = errors.New("file not found in archive")
)

// Archive represents an opened archive. Lookups are case-insensitive.
type Archive struct {
	reader   *zip.Reader
	size     int64
	fileList map[string]*Entry
}

// Entry represents a file entry in the archive.
type Entry struct {
	Name             string
	CompressedSize   uint64
	UncompressedSize uint64
	file             *zip.File
}

// Open reads an archive file from disk.
func Open(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	return OpenBytes(data)
}

// OpenBytes opens an archive from its raw bytes. The bytes must sniff as a
// zip container.
func OpenBytes(data []byte) (*Archive, error) {
	if !filetype.Is(data, "zip") {
		return nil, ErrNotZip
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("reading file table: %w", err)
	}

	a := &Archive{
		reader:   reader,
		size:     int64(len(data)),
		fileList: make(map[string]*Entry, len(reader.File)),
	}

	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := NormalizePath(f.Name)
		if _, exists := a.fileList[name]; exists {
			continue
		}
		a.fileList[name] = &Entry{
			Name:             name,
			CompressedSize:   f.CompressedSize64,
			UncompressedSize: f.UncompressedSize64,
			file:             f,
		}
	}

	return a, nil
}

// Size returns the archive size in bytes.
func (a *Archive) Size() int64 {
	return a.size
}

// Len returns the number of file entries.
func (a *Archive) Len() int {
	return len(a.fileList)
}

// List returns all file paths in the archive, sorted.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.fileList))
	for path := range a.fileList {
		result = append(result, path)
	}
	sort.Strings(result)
	return result
}

// Stat returns the entry for path.
func (a *Archive) Stat(path string) (*Entry, bool) {
	e, ok := a.fileList[NormalizePath(path)]
	return e, ok
}

// Contains checks if a file exists.
func (a *Archive) Contains(path string) bool {
	_, ok := a.fileList[NormalizePath(path)]
	return ok
}

// OpenFile opens a streaming reader for an entry.
func (a *Archive) OpenFile(path string) (io.ReadCloser, error) {
	entry, ok := a.fileList[NormalizePath(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	rc, err := entry.file.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return rc, nil
}

// Read reads a file from the archive.
func (a *Archive) Read(path string) ([]byte, error) {
	rc, err := a.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// NormalizePath converts an entry path to its lookup form: forward slashes,
// lower case, no leading slash.
func NormalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.TrimLeft(path, "/")
	return strings.ToLower(path)
}
