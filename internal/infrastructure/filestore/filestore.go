// Package filestore keeps uploaded files. Uploads are first streamed into a
// local temporary directory; a Store then moves them to their final place.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

const (
	DirAvatars = "avatars"
	DirOffers  = "offers"
	DirTmp     = "tmp"
)

// Store persists a finished upload and returns the URL it is served under.
type Store interface {
	// TempDir is where uploads are streamed before Save.
	TempDir() string
	// Save takes ownership of the file at tmpPath.
	Save(ctx context.Context, dir, name, contentType, tmpPath string) (string, error)
}

func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return nil
}

// Disk stores files under Root/<dir>/<name> and serves them from URLPrefix.
type Disk struct {
	Root      string
	URLPrefix string
}

// NewDisk creates the avatars, offers and tmp subdirectories of root.
func NewDisk(root, urlPrefix string) (*Disk, error) {
	for _, dir := range []string{DirAvatars, DirOffers, DirTmp} {
		if err := ensureDir(filepath.Join(root, dir)); err != nil {
			return nil, err
		}
	}
	return &Disk{Root: root, URLPrefix: urlPrefix}, nil
}

func (d *Disk) TempDir() string { return filepath.Join(d.Root, DirTmp) }

func (d *Disk) Save(_ context.Context, dir, name, _ string, tmpPath string) (string, error) {
	target := filepath.Join(d.Root, dir)
	if err := ensureDir(target); err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, filepath.Join(target, name)); err != nil {
		return "", fmt.Errorf("move upload: %w", err)
	}
	return d.URLPrefix + "/" + dir + "/" + name, nil
}

var _ Store = (*Disk)(nil)
