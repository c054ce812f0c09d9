package browser

import (
	"reflect"
	"testing"
)

func TestCommandRejectsNonHTTP(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://example.com", false},
		{"http://example.com/path?q=1", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"ftp://example.com", true},
		{"https://", true},
		{"", true},
	}

	for _, tt := range tests {
		_, _, err := Command("linux", "", tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("Command(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
		}
	}
}

func TestCommandPerPlatform(t *testing.T) {
	const link = "https://news.test/story"
	tests := []struct {
		goos     string
		override string
		wantName string
		wantArgs []string
	}{
		{"darwin", "", "open", []string{link}},
		{"linux", "", "xdg-open", []string{link}},
		{"freebsd", "", "xdg-open", []string{link}},
		{"windows", "", "rundll32", []string{"url.dll,FileProtocolHandler", link}},
		{"linux", "firefox", "firefox", []string{link}},
	}
	for _, tt := range tests {
		name, args, err := Command(tt.goos, tt.override, link)
		if err != nil {
			t.Fatalf("Command(%s): %v", tt.goos, err)
		}
		if name != tt.wantName || !reflect.DeepEqual(args, tt.wantArgs) {
			t.Errorf("Command(%s, %q) = %s %v, want %s %v", tt.goos, tt.override, name, args, tt.wantName, tt.wantArgs)
		}
	}
}
