package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxNameLength = 100
	MaxURLLength  = 2048
)

// Link maps a numeric short identifier to a destination URL
type Link struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Counter int64  `json:"counter"`
}

// NewLink builds an unsaved link with a zero counter
func NewLink(name, url string) (*Link, error) {
	link := &Link{Name: name, URL: url}
	if err := link.Validate(); err != nil {
		return nil, err
	}
	return link, nil
}

// Validate checks the fields required for a stored record. Lengths are
// counted in characters. Name and URL are kept exactly as entered.
func (l *Link) Validate() error {
	if l.Name == "" || l.URL == "" {
		return fmt.Errorf("%w: name and url are required", ErrValidation)
	}
	if utf8.RuneCountInString(l.Name) > MaxNameLength {
		return fmt.Errorf("%w: name is longer than %d characters", ErrValidation, MaxNameLength)
	}
	if utf8.RuneCountInString(l.URL) > MaxURLLength {
		return fmt.Errorf("%w: url is longer than %d characters", ErrValidation, MaxURLLength)
	}
	if l.Counter < 0 {
		return fmt.Errorf("%w: counter must not be negative", ErrValidation)
	}
	return nil
}

// Destination returns the redirect target, adding http:// when the stored
// URL carries neither an http:// nor an https:// prefix.
func (l *Link) Destination() string {
	if strings.HasPrefix(l.URL, "http://") || strings.HasPrefix(l.URL, "https://") {
		return l.URL
	}
	return "http://" + l.URL
}

func (l Link) String() string {
	return fmt.Sprintf("Links(name=%s, counter=%d, url=%s)", l.Name, l.Counter, l.URL)
}
