package crawler

import (
	"net"
	"strings"
)

// lookupIP is swappable for tests.
var lookupIP = net.LookupIP

// IsPrivateHost reports whether a hostname must never be fetched: loopback,
// private-range, link-local, and well-known internal names. Applies to every
// fetch target, seed and discovered links alike.
func IsPrivateHost(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")

	if host == "" || host == "localhost" || strings.HasSuffix(host, ".localhost") ||
		strings.HasSuffix(host, ".local") || strings.HasSuffix(host, ".internal") {
		return true
	}

	if ip := net.ParseIP(host); ip != nil {
		return isPrivateIP(ip)
	}

	// Resolve names so a public-looking hostname cannot point the crawler at
	// an internal address. Resolution failure is left for the fetch to report.
	ips, err := lookupIP(host)
	if err != nil {
		return false
	}
	for _, ip := range ips {
		if isPrivateIP(ip) {
			return true
		}
	}
	return false
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() || ip.IsUnspecified()
}
