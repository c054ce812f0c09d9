//go:build !unix

package platform

import "github.com/matheuskafuri/headlines/internal/imagecache"

const supported = false

func checkWritable(string) (imagecache.Grant, error) {
	return imagecache.Denied, nil
}
