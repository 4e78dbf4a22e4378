package index

import (
	"fmt"
	"io"

	"github.com/Faultbox/mcassets/pkg/archive"
)

// archiveSource serves entries from an opened archive.
type archiveSource struct {
	arch *archive.Archive
}

func (s archiveSource) Open(entryPath string) (io.ReadCloser, error) {
	rc, err := s.arch.OpenFile(entryPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return rc, nil
}

// FromArchive indexes an opened archive.
func FromArchive(name string, arch *archive.Archive) *Index {
	b := newBuilder(name)
	for _, path := range arch.List() {
		e, ok := Classify(path)
		if !ok {
			continue
		}
		b.add(path, e, func() ([]byte, error) { return arch.Read(path) })
	}
	return b.finish(archiveSource{arch: arch})
}

// FromArchiveBytes validates and indexes raw archive bytes. On failure the
// returned index is empty and the error describes the acquisition failure.
func FromArchiveBytes(name string, data []byte) (*Index, error) {
	arch, err := archive.OpenBytes(data)
	if err != nil {
		return Empty(name), fmt.Errorf("opening archive %s: %w", name, err)
	}
	return FromArchive(name, arch), nil
}
