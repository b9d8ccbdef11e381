// Package security checks untrusted input before pipette acts on it.
package security

import (
	"fmt"
	"net/netip"
	"net/url"
	"strings"
)

// ValidateImageURL checks that urlStr is an absolute http(s) URL with a
// host. With blockPrivate set, URLs naming the local machine or a private
// network address are rejected as well.
func ValidateImageURL(urlStr string, blockPrivate bool) error {
	if urlStr == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("invalid URL protocol (only http:// and https:// allowed): %s", parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return fmt.Errorf("URL must have a hostname")
	}

	if blockPrivate && IsLocalOrPrivateHost(parsed.Hostname()) {
		return fmt.Errorf("URL cannot point to local or private hosts: %s", parsed.Hostname())
	}
	return nil
}

// IsLocalOrPrivateHost reports whether host is localhost or a loopback,
// private or link-local address. Other names are not resolved.
func IsLocalOrPrivateHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}

	addr, err := netip.ParseAddr(strings.Trim(host, "[]"))
	if err != nil {
		return false
	}
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsUnspecified()
}
