// Package imagecache saves article images into the downloads directory.
//
// There is no manifest: a file at the computed path is the cache entry.
// Downloads for the same path are coalesced, so two concurrent saves of one
// article perform a single transfer and both callers get its result. The
// transfer is not tied to any one caller: a caller whose context ends stops
// waiting, while the others still receive the saved path.
package imagecache

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/matheuskafuri/headlines/internal/news"
)

// Duration hints how long a notification should stay visible.
type Duration int

const (
	Short Duration = iota
	Long
)

// Notifier receives user-facing feedback. It must not block.
type Notifier interface {
	Notify(msg string, d Duration)
}

type Grant int

const (
	Denied Grant = iota
	Granted
)

// Permissions is the host's storage permission model.
type Permissions interface {
	// Supported reports whether the host can write to shared storage at all.
	Supported() bool
	// RequestStorageWrite asks for write access to dir. A denial is not
	// remembered; the next call asks again.
	RequestStorageWrite(ctx context.Context, dir string) (Grant, error)
}

// Store is the filesystem side of the cache.
type Store interface {
	Exists(path string) bool
	// Download fetches url into path and returns the HTTP status. Nothing
	// is left at path unless the status is 2xx and err is nil.
	Download(ctx context.Context, url, path string) (int, error)
	// RegisterMedia announces a saved file to the host media index.
	RegisterMedia(ctx context.Context, path string) error
}

const (
	MsgAlreadyDownloaded = "Image already downloaded"
	MsgDownloading       = "Downloading image..."
	MsgSaved             = "Image saved to Downloads folder"
	MsgDenied            = "Storage permission denied"
	MsgFailed            = "Download failed"
	MsgUnsupported       = "Saving images is not supported on this platform"
)

type Options struct {
	Root        string
	Store       Store
	Permissions Permissions
	// Notifier may be nil.
	Notifier Notifier
	Logger   zerolog.Logger
	// Timeout bounds one shared download. Zero means DefaultTimeout.
	Timeout time.Duration
}

const DefaultTimeout = 2 * time.Minute

type Manager struct {
	root     string
	store    Store
	perms    Permissions
	notifier Notifier
	log      zerolog.Logger
	timeout  time.Duration

	group singleflight.Group
}

func New(opts Options) *Manager {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Manager{
		timeout:  timeout,
		root:     opts.Root,
		store:    opts.Store,
		perms:    opts.Permissions,
		notifier: opts.Notifier,
		log:      opts.Logger.With().Str("component", "imagecache").Logger(),
	}
}

// Root is the directory images are saved into.
func (m *Manager) Root() string { return m.root }

// CacheKey returns the local path for the article's image. ok is false when
// the article has no image or no identity.
func (m *Manager) CacheKey(a news.Article) (string, bool) {
	if a.ImageURL == "" || a.ID == "" {
		return "", false
	}
	return LocalPath(m.root, a.ID, a.ImageURL), true
}

// Cached returns the local path when the image is already on disk.
func (m *Manager) Cached(a news.Article) (string, bool) {
	p, ok := m.CacheKey(a)
	if !ok || !m.store.Exists(p) {
		return "", false
	}
	return p, true
}

// Download saves the article's image and returns its local path. Every
// failure is an *Error. Outcomes other than NoAsset and the caller's own
// cancellation are also reported to the notifier.
func (m *Manager) Download(ctx context.Context, a news.Article) (string, error) {
	p, ok := m.CacheKey(a)
	if !ok {
		return "", &Error{Kind: NoAsset}
	}
	log := m.log.With().Str("id", a.ID).Str("path", p).Logger()

	if m.perms == nil || !m.perms.Supported() {
		m.notify(MsgUnsupported, Short)
		return "", &Error{Kind: UnsupportedPlatform, Path: p}
	}

	grant, err := m.perms.RequestStorageWrite(ctx, m.root)
	switch {
	case err != nil && !errors.Is(err, fs.ErrPermission):
		log.Warn().Err(err).Msg("storage check failed")
		m.notify(MsgFailed+": "+err.Error(), Short)
		return "", &Error{Kind: TransportError, Path: p, Err: err}
	case err != nil || grant != Granted:
		log.Info().Err(err).Msg("storage permission denied")
		m.notify(MsgDenied, Short)
		return "", &Error{Kind: PermissionDenied, Path: p, Err: err}
	}

	// The flight outlives whichever caller started it.
	ch := m.group.DoChan(p, func() (interface{}, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
		defer cancel()
		return m.save(fctx, log, a.ImageURL, p)
	})

	select {
	case res := <-ch:
		if res.Shared {
			log.Debug().Msg("joined in-flight download")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		log.Debug().Err(ctx.Err()).Msg("stopped waiting for download")
		return "", &Error{Kind: TransportError, Path: p, Err: ctx.Err()}
	}
}

func (m *Manager) save(ctx context.Context, log zerolog.Logger, imageURL, p string) (string, error) {
	if m.store.Exists(p) {
		m.notify(MsgAlreadyDownloaded, Short)
		return p, nil
	}

	m.notify(MsgDownloading, Short)
	status, err := m.store.Download(ctx, imageURL, p)
	if err != nil {
		log.Warn().Err(err).Msg("image download failed")
		m.notify(MsgFailed+": "+err.Error(), Short)
		return "", &Error{Kind: TransportError, Path: p, Err: err}
	}
	if status < 200 || status > 299 {
		log.Warn().Int("status", status).Msg("image download rejected")
		m.notify(MsgFailed, Short)
		return "", &Error{Kind: DownloadFailed, Path: p, Status: status}
	}

	if err := m.store.RegisterMedia(ctx, p); err != nil {
		log.Warn().Err(err).Msg("media registration failed")
	}
	log.Info().Msg("image saved")
	m.notify(MsgSaved, Long)
	return p, nil
}

func (m *Manager) notify(msg string, d Duration) {
	if m.notifier != nil {
		m.notifier.Notify(msg, d)
	}
}
