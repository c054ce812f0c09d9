// Package platform answers the image cache's storage permission questions
// for the machine headlines runs on.
package platform

import (
	"context"

	"github.com/matheuskafuri/headlines/internal/imagecache"
)

// Host implements imagecache.Permissions for the local machine.
type Host struct{}

var _ imagecache.Permissions = Host{}

func (Host) Supported() bool { return supported }

// RequestStorageWrite creates dir if needed and grants access when the
// current user may write to it. Nothing is cached between calls.
func (Host) RequestStorageWrite(ctx context.Context, dir string) (imagecache.Grant, error) {
	if err := ctx.Err(); err != nil {
		return imagecache.Denied, err
	}
	if !supported {
		return imagecache.Denied, nil
	}
	return checkWritable(dir)
}
