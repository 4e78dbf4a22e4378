package icons

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrNoVersion is returned when no game version can be determined.
var ErrNoVersion = errors.New("no game version")

// ArchiveProvider supplies the vanilla archive for a game version.
type ArchiveProvider interface {
	ArchiveBytes(ctx context.Context, version string) ([]byte, error)
}

// VersionDetector reports the game version a project targets.
type VersionDetector interface {
	DetectVersion(ctx context.Context) (string, error)
}

// FileArchive reads archives from disk: Path when set, otherwise
// Dir/<version>.jar.
type FileArchive struct {
	Path string
	Dir  string
}

// ArchiveBytes implements ArchiveProvider.
func (f FileArchive) ArchiveBytes(ctx context.Context, version string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := f.Path
	if path == "" {
		if version == "" {
			return nil, ErrNoVersion
		}
		path = filepath.Join(f.Dir, version+".jar")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	return data, nil
}

// StaticVersion is a VersionDetector that always reports itself.
type StaticVersion string

// DetectVersion implements VersionDetector.
func (v StaticVersion) DetectVersion(context.Context) (string, error) {
	if strings.TrimSpace(string(v)) == "" {
		return "", ErrNoVersion
	}
	return string(v), nil
}

// VersionFromArchive guesses a version from an archive file name such as
// "versions/1.20.1.jar" or "1.20.1-client.jar".
func VersionFromArchive(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.TrimSuffix(name, "-client")
}

// NormalizeVersion canonicalises release versions ("1.20" and "v1.20.0"
// become "1.20.0"). Strings that are not semver, such as snapshot ids, are
// only trimmed.
func NormalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	sv, err := semver.NewVersion(v)
	if err != nil {
		return v
	}
	return sv.String()
}
