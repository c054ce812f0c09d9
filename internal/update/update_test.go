package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 0
	c.Logger = nil
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return c
}

func releaseServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		tag       string
		wantNewer bool
	}{
		{"newer release", "1.0.0", "v1.1.0", true},
		{"same release", "v1.1.0", "v1.1.0", false},
		{"dev build", "dev", "v1.1.0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := releaseServer(t, http.StatusOK, `{"tag_name":"`+tt.tag+`"}`)
			res, err := Check(context.Background(), testClient(), srv.URL, tt.current)
			require.NoError(t, err)
			assert.Equal(t, "1.1.0", res.LatestVersion)
			assert.Equal(t, tt.wantNewer, res.Newer)
		})
	}
}

func TestCheckErrors(t *testing.T) {
	srv := releaseServer(t, http.StatusNotFound, `{}`)
	_, err := Check(context.Background(), testClient(), srv.URL, "1.0.0")
	assert.ErrorContains(t, err, "status 404")

	srv = releaseServer(t, http.StatusOK, `{"tag_name":""}`)
	_, err = Check(context.Background(), testClient(), srv.URL, "1.0.0")
	assert.Error(t, err)

	srv = releaseServer(t, http.StatusOK, `not json`)
	_, err = Check(context.Background(), testClient(), srv.URL, "1.0.0")
	assert.Error(t, err)
}
