package normalize

import (
	"net"
	"net/url"
	"strings"
)

// Domain extracts the lowercased registrable host from a raw URL: scheme,
// port, and a single leading "www." dropped. Returns "" when the URL does not
// parse or carries no host, and the caller decides what degradation means.
// Scheme-less inputs like "example.com/page" get one retry with https://
func Domain(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil || u.Hostname() == "" {
		if strings.Contains(s, "://") {
			return ""
		}
		u, err = url.Parse("https://" + s)
		if err != nil || u.Hostname() == "" {
			return ""
		}
	}
	return CanonicalHost(u.Hostname())
}

// CanonicalHost lowercases a bare hostname, trims stray dots and whitespace,
// drops any port, and strips a single leading "www." label. Override keys and
// rule-table domains funnel through here so lookups compare like with like
func CanonicalHost(host string) string {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" {
		return ""
	}
	if hp, _, err := net.SplitHostPort(h); err == nil && hp != "" {
		h = hp
	}
	h = strings.Trim(h, ".")
	// keep bare "www.com" style hosts; only strip www. when a domain remains
	if strings.HasPrefix(h, "www.") && strings.Count(h, ".") >= 2 {
		h = h[len("www."):]
	}
	return h
}
