// Package update looks up the latest published release.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

const DefaultURL = "https://api.github.com/repos/matheuskafuri/headlines/releases/latest"

// Result holds the outcome of a version check.
type Result struct {
	LatestVersion string
	Newer         bool
}

type ghRelease struct {
	TagName string `json:"tag_name"`
}

// Check fetches the latest release from url and compares its tag with
// currentVersion. Development builds never report a newer release.
func Check(ctx context.Context, client *retryablehttp.Client, url, currentVersion string) (*Result, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checking releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("checking releases: status %d", resp.StatusCode)
	}

	var release ghRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	current := strings.TrimPrefix(currentVersion, "v")
	if latest == "" {
		return nil, fmt.Errorf("release has no tag")
	}

	return &Result{
		LatestVersion: latest,
		Newer:         current != "dev" && latest != current,
	}, nil
}
