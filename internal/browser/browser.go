// Package browser opens article links in the user's browser.
package browser

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
)

// Open validates rawURL and hands it to the platform's URL handler without
// waiting for it to exit.
func Open(rawURL string) error {
	name, args, err := Command(runtime.GOOS, os.Getenv("BROWSER"), rawURL)
	if err != nil {
		return err
	}
	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("launching %s: %w", name, err)
	}
	return nil
}

// Command returns the program and arguments that open rawURL on goos.
// A non-empty override (usually $BROWSER) replaces the platform default.
// Only http and https links are accepted.
func Command(goos, override, rawURL string) (string, []string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", nil, fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}
	if u.Host == "" {
		return "", nil, fmt.Errorf("invalid URL %q: missing host", rawURL)
	}

	if override != "" {
		return override, []string{rawURL}, nil
	}
	switch goos {
	case "darwin":
		return "open", []string{rawURL}, nil
	case "windows":
		// Use rundll32 instead of cmd /c start to avoid shell interpretation
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}, nil
	default:
		return "xdg-open", []string{rawURL}, nil
	}
}
