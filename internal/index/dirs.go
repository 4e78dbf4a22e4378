package index

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// dirSource serves entries from the layered roots. files maps a normalised
// entry path to the first file that provided it.
type dirSource struct {
	files map[string]string
}

func (s dirSource) Open(entryPath string) (io.ReadCloser, error) {
	path, ok := s.files[NormalizePath(entryPath)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, entryPath)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

// FromDirs indexes layered resource roots. Earlier roots win for any key
// already seen; textures accumulate across roots. Roots that are missing or
// not directories are skipped.
func FromDirs(name string, roots ...string) *Index {
	b := newBuilder(name)
	src := dirSource{files: make(map[string]string)}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			b.log.Debug("skipping resource root", zap.String("root", root), zap.Error(err))
			continue
		}

		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				b.skip(path, err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return nil
			}
			entryPath := NormalizePath(filepath.ToSlash(rel))
			e, ok := Classify(entryPath)
			if !ok {
				return nil
			}
			if _, seen := src.files[entryPath]; !seen {
				src.files[entryPath] = path
			}
			b.add(entryPath, e, func() ([]byte, error) { return os.ReadFile(path) })
			return nil
		})
		if walkErr != nil {
			b.log.Warn("walking resource root", zap.String("root", root), zap.Error(walkErr))
		}
	}

	return b.finish(src)
}
