// Package transport builds the retrying HTTP client shared by the headline
// fetchers and the image downloader.
package transport

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/matheuskafuri/headlines/internal/logging"
)

type Options struct {
	Timeout time.Duration
	Retries int
	Logger  zerolog.Logger
}

// New returns a retrying client. Once retries are exhausted the last
// response is handed back as-is so callers can map the status code
// themselves instead of receiving a generic "giving up" error.
func New(opts Options) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.HTTPClient = &http.Client{Timeout: opts.Timeout}
	c.RetryMax = max(opts.Retries, 0)
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 5 * time.Second
	c.Logger = logging.NewRetryLogger(opts.Logger)
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return c
}
