// Package storage owns the local media directories and maps opaque media
// references onto them.
package storage

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	uploadsPrefix = "/static/uploads/"
	exportsPrefix = "/static/exports/"
	tempPrefix    = "/static/temp/"
)

// Local holds the uploads/exports/temp directories under one base dir.
type Local struct {
	uploadsDir string
	exportsDir string
	tempDir    string
}

func NewLocal(baseDir string) (*Local, error) {
	l := &Local{
		uploadsDir: filepath.Join(baseDir, "uploads"),
		exportsDir: filepath.Join(baseDir, "exports"),
		tempDir:    filepath.Join(baseDir, "temp"),
	}
	for _, dir := range []string{l.uploadsDir, l.exportsDir, l.tempDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return l, nil
}

// Resolve maps a media reference to a local file path. Full URLs are reduced
// to their path component; /static/* paths map into the matching directory;
// absolute paths pass through; anything else is treated as a filename in
// uploads. Resolve does not check existence - loading a missing file is the
// media engine's error.
func (l *Local) Resolve(ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("empty media reference")
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		parsed, err := url.Parse(ref)
		if err != nil {
			return "", fmt.Errorf("parse media reference %q: %w", ref, err)
		}
		ref = parsed.Path
	}
	switch {
	case strings.HasPrefix(ref, uploadsPrefix):
		return filepath.Join(l.uploadsDir, strings.TrimPrefix(ref, uploadsPrefix)), nil
	case strings.HasPrefix(ref, exportsPrefix):
		return filepath.Join(l.exportsDir, strings.TrimPrefix(ref, exportsPrefix)), nil
	case strings.HasPrefix(ref, tempPrefix):
		return filepath.Join(l.tempDir, strings.TrimPrefix(ref, tempPrefix)), nil
	case filepath.IsAbs(ref):
		return ref, nil
	default:
		return filepath.Join(l.uploadsDir, filepath.Base(ref)), nil
	}
}

func (l *Local) UploadPath(name string) string {
	return filepath.Join(l.uploadsDir, filepath.Base(name))
}

func (l *Local) ExportPath(name string) string {
	return filepath.Join(l.exportsDir, filepath.Base(name))
}

func (l *Local) TempDir() string {
	return l.tempDir
}
