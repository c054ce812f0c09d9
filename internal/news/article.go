package news

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// PlaceholderImage is shown for articles that carry no image reference.
const PlaceholderImage = "https://archive.org/download/placeholder-image//placeholder-image.jpg"

// PublishedLayout renders timestamps as "DD MMM YYYY, hh:mm A".
const PublishedLayout = "02 Jan 2006, 03:04 PM"

type Article struct {
	ID          string
	Title       string
	Author      string
	SourceName  string
	Description string
	URL         string
	ImageURL    string
	PublishedAt time.Time
}

// Key is the list-rendering key: URL, then title, then identity.
func (a Article) Key() string {
	switch {
	case a.URL != "":
		return a.URL
	case a.Title != "":
		return a.Title
	default:
		return a.ID
	}
}

// Published formats PublishedAt, or returns "" for a zero time.
func (a Article) Published() string {
	if a.PublishedAt.IsZero() {
		return ""
	}
	return a.PublishedAt.Format(PublishedLayout)
}

// Image returns the remote image reference or the placeholder.
func (a Article) Image() string {
	if a.ImageURL != "" {
		return a.ImageURL
	}
	return PlaceholderImage
}

// IdentityMode selects how an identity is derived for articles without an id.
type IdentityMode string

const (
	IdentityTitle IdentityMode = "title"
	IdentityHash  IdentityMode = "hash"
)

// Assign fills a.ID when the upstream did not provide one. Articles with
// neither id nor title keep an empty identity.
func (m IdentityMode) Assign(a *Article) {
	if a.ID != "" || a.Title == "" {
		return
	}
	if m == IdentityHash {
		a.ID = HashID(a.Title, a.URL)
		return
	}
	a.ID = TitleID(a.Title)
}

const titleIDLen = 20

// TitleID percent-encodes the title the way a URI component is encoded,
// drops every non-word character and keeps the first 20 characters.
// Distinct titles sharing a prefix collide.
func TitleID(title string) string {
	var b strings.Builder
	for i := 0; i < len(title) && b.Len() < titleIDLen; i++ {
		c := title[i]
		switch {
		case isWord(c):
			b.WriteByte(c)
		case strings.IndexByte("-.!~*'()", c) >= 0:
			// left unescaped by the encoder, then stripped as non-word
		default:
			fmt.Fprintf(&b, "%02X", c)
		}
	}
	id := b.String()
	if len(id) > titleIDLen {
		id = id[:titleIDLen]
	}
	return id
}

// HashID derives a collision-resistant identity from title and link.
func HashID(title, link string) string {
	h := sha256.Sum256([]byte(title + "\x00" + link))
	return fmt.Sprintf("%x", h[:16])
}

func isWord(c byte) bool {
	return c == '_' ||
		('0' <= c && c <= '9') ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z')
}
