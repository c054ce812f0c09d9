//go:build unix

package platform

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/matheuskafuri/headlines/internal/imagecache"
)

const supported = true

func checkWritable(dir string) (imagecache.Grant, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		if errors.Is(err, os.ErrPermission) {
			return imagecache.Denied, nil
		}
		return imagecache.Denied, fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
		if errors.Is(err, unix.EACCES) || errors.Is(err, unix.EROFS) {
			return imagecache.Denied, nil
		}
		return imagecache.Denied, fmt.Errorf("checking %s: %w", dir, err)
	}
	return imagecache.Granted, nil
}
