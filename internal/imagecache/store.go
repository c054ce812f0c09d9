package imagecache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-retryablehttp"
)

// MediaRegistrar records saved files in a host media index.
type MediaRegistrar interface {
	Register(ctx context.Context, path string) error
}

// DiskStore downloads images straight into the target directory. Bodies are
// written to a temporary file next to the target and renamed into place,
// so a partial transfer never looks like a cached image.
type DiskStore struct {
	client    *retryablehttp.Client
	registrar MediaRegistrar

	// OnProgress, when set, is called once per download with the expected
	// size (-1 if unknown). The returned writer receives a copy of the body.
	OnProgress func(path string, total int64) io.Writer
}

// NewDiskStore returns a store using client for transfers. registrar may
// be nil.
func NewDiskStore(client *retryablehttp.Client, registrar MediaRegistrar) *DiskStore {
	return &DiskStore{client: client, registrar: registrar}
}

func (s *DiskStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (s *DiskStore) Download(ctx context.Context, url, path string) (int, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return resp.StatusCode, fmt.Errorf("creating download dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".headlines-*.part")
	if err != nil {
		return resp.StatusCode, fmt.Errorf("creating temp file: %w", err)
	}

	var w io.Writer = tmp
	if s.OnProgress != nil {
		if pw := s.OnProgress(path, resp.ContentLength); pw != nil {
			w = io.MultiWriter(tmp, pw)
		}
	}

	_, err = io.Copy(w, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), 0o644)
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return resp.StatusCode, fmt.Errorf("writing image: %w", err)
	}
	return resp.StatusCode, nil
}

func (s *DiskStore) RegisterMedia(ctx context.Context, path string) error {
	if s.registrar == nil {
		return nil
	}
	return s.registrar.Register(ctx, path)
}
