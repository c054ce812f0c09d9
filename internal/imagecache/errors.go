package imagecache

import (
	"fmt"
)

// Kind classifies why an image could not be cached.
type Kind int

const (
	// NoAsset means the article carries nothing to cache. It is a no-op
	// signal rather than a failure.
	NoAsset Kind = iota + 1
	UnsupportedPlatform
	PermissionDenied
	// DownloadFailed means the server answered with a non-2xx status.
	DownloadFailed
	// TransportError means the request or the file write itself failed.
	TransportError
)

func (k Kind) String() string {
	switch k {
	case NoAsset:
		return "no asset"
	case UnsupportedPlatform:
		return "unsupported platform"
	case PermissionDenied:
		return "permission denied"
	case DownloadFailed:
		return "download failed"
	case TransportError:
		return "transport error"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrNoAsset             = &Error{Kind: NoAsset}
	ErrUnsupportedPlatform = &Error{Kind: UnsupportedPlatform}
	ErrPermissionDenied    = &Error{Kind: PermissionDenied}
	ErrDownloadFailed      = &Error{Kind: DownloadFailed}
	ErrTransport           = &Error{Kind: TransportError}
)

type Error struct {
	Kind Kind
	// Path is the computed cache path, empty for NoAsset.
	Path string
	// Status is the HTTP status for DownloadFailed.
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == DownloadFailed && e.Status != 0:
		return fmt.Sprintf("%s: status %d", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
