package utils

import (
	"net/netip"
	"net/url"
	"strings"
)

// OriginPolicy decides which browser origins may call the API. Origins listed
// explicitly are always allowed; "*" allows everything. Without a list only
// local and private-network origins are trusted.
type OriginPolicy struct {
	any     bool
	allowed map[string]struct{}
}

// NewOriginPolicy builds a policy from configured origins.
func NewOriginPolicy(origins []string) *OriginPolicy {
	p := &OriginPolicy{allowed: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			p.any = true
		default:
			p.allowed[strings.ToLower(o)] = struct{}{}
		}
	}
	return p
}

// Allowed reports whether origin may receive CORS headers.
func (p *OriginPolicy) Allowed(origin string) bool {
	if origin == "" {
		return false
	}
	if p != nil {
		if p.any {
			return true
		}
		if _, ok := p.allowed[strings.ToLower(origin)]; ok {
			return true
		}
	}
	return IsLocalOrigin(origin)
}

// IsLocalOrigin accepts localhost, .local and single-label hostnames, and
// loopback, private or link-local IPs.
func IsLocalOrigin(origin string) bool {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	hostname := parsed.Hostname()
	switch {
	case hostname == "localhost", strings.HasSuffix(hostname, ".local"):
		return true
	}

	if addr, err := netip.ParseAddr(hostname); err == nil {
		addr = addr.Unmap()
		return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast()
	}

	return !strings.Contains(hostname, ".")
}
