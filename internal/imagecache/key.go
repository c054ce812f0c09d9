package imagecache

import (
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	filePrefix = "news_image_"
	defaultExt = "jpg"
)

var extPattern = regexp.MustCompile(`^[A-Za-z0-9]{1,5}$`)

// LocalPath returns <root>/news_image_<id>.<ext>. The identity is
// path-escaped so it can never leave root.
func LocalPath(root, id, imageURL string) string {
	return filepath.Join(root, filePrefix+url.PathEscape(id)+"."+Ext(imageURL))
}

// Ext returns the extension of the last path segment of imageURL, ignoring
// query and fragment. It falls back to jpg when there is none or when it
// does not look like a file extension.
func Ext(imageURL string) string {
	p := imageURL
	if u, err := url.Parse(imageURL); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	ext := strings.TrimPrefix(path.Ext(path.Base(p)), ".")
	if !extPattern.MatchString(ext) {
		return defaultExt
	}
	return ext
}

// IdentityFromPath recovers the identity from a cache file name. ok is
// false for files this package did not name.
func IdentityFromPath(p string) (string, bool) {
	name := filepath.Base(p)
	if !strings.HasPrefix(name, filePrefix) {
		return "", false
	}
	name = strings.TrimPrefix(name, filePrefix)
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	} else {
		return "", false
	}
	id, err := url.PathUnescape(name)
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}
