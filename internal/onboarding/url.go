package onboarding

import (
	"net/url"
	"strings"
)

// Schemes that only make sense with a host component.
var hostSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ftp":   true,
	"ws":    true,
	"wss":   true,
}

// IsValidURL reports whether s parses as an absolute URL, either as given or
// with an https:// prefix. Surrounding whitespace is ignored; blank input is
// invalid.
func IsValidURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return isAbsoluteURL(s) || isAbsoluteURL("https://"+s)
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return false
	}
	if hostSchemes[strings.ToLower(u.Scheme)] {
		return u.Host != "" && u.Hostname() != ""
	}
	return u.Opaque != "" || u.Host != "" || u.Path != ""
}

// NormalizeStoreURL prefixes https:// onto a scheme-less value that looks like
// a domain, mirroring what the store URL input does while typing. Surrounding
// whitespace is trimmed first.
func NormalizeStoreURL(s string) string {
	s = strings.TrimSpace(s)
	if s != "" &&
		!strings.HasPrefix(s, "http://") &&
		!strings.HasPrefix(s, "https://") &&
		strings.Contains(s, ".") {
		return "https://" + s
	}
	return s
}
