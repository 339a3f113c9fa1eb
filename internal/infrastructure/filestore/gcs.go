package filestore

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/six-cities-api/pkg/helpers"
)

// GCS stores files as objects <dir>/<name> in Bucket.
type GCS struct {
	Client *storage.Client
	Bucket string
	Tmp    string
}

// NewGCS uses localRoot/tmp for streaming uploads before they are sent to the bucket.
func NewGCS(client *storage.Client, bucket, localRoot string) (*GCS, error) {
	tmp := filepath.Join(localRoot, DirTmp)
	if err := ensureDir(tmp); err != nil {
		return nil, err
	}
	return &GCS{Client: client, Bucket: bucket, Tmp: tmp}, nil
}

func (g *GCS) TempDir() string { return g.Tmp }

func (g *GCS) Save(ctx context.Context, dir, name, contentType, tmpPath string) (string, error) {
	defer func() { _ = os.Remove(tmpPath) }()
	f, err := os.Open(tmpPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	url, err := helpers.UploadObject(ctx, g.Client, g.Bucket, path.Join(dir, name), contentType, f)
	if err != nil {
		return "", fmt.Errorf("upload %s to gcs: %w", name, err)
	}
	return url, nil
}

var _ Store = (*GCS)(nil)
