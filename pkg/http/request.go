package http

import (
	"net"
	"net/http"
	"strings"
)

// IPConfig decides which peers are trusted to set forwarding headers. CIDRs
// are parsed once at construction; invalid entries are dropped.
type IPConfig struct {
	trustedNets []*net.IPNet
}

// NewIPConfig builds an IPConfig from a list of trusted proxy CIDR ranges.
func NewIPConfig(trustedProxies []string) *IPConfig {
	config := &IPConfig{}
	for _, cidr := range trustedProxies {
		if _, ipNet, err := net.ParseCIDR(cidr); err == nil {
			config.trustedNets = append(config.trustedNets, ipNet)
		}
	}
	return config
}

// ExtractClientIP extracts the real client IP address from the request.
// It honors X-Forwarded-For and X-Real-IP only when the request arrives from
// a trusted proxy; the IP feeds the rate-limit keys, so a client-controlled
// header must never be able to choose it. For the same reason this is the
// only place forwarding headers are read: r.RemoteAddr stays the unmodified
// peer address, with no RealIP-style rewriting middleware in front.
//
// Flow:
// 1. If request is from trusted proxy, check X-Forwarded-For header
// 2. If request is from trusted proxy, check X-Real-IP header
// 3. Fall back to RemoteAddr
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	remoteIP := getRemoteAddr(r)

	// Only trust X-Forwarded-For if request comes from trusted proxy
	if config != nil && config.trusts(remoteIP) {
		// 1. Check X-Forwarded-For (can contain multiple IPs, take the first real one)
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			ips := strings.Split(xff, ",")
			for _, ip := range ips {
				ip = strings.TrimSpace(ip)
				if isValidIP(ip) {
					return ip
				}
			}
		}

		// 2. Check X-Real-IP
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if isValidIP(xri) {
				return xri
			}
		}
	}

	// 3. Fall back to RemoteAddr
	return remoteIP
}

// getRemoteAddr extracts the IP address from RemoteAddr (removing port if present)
func getRemoteAddr(r *http.Request) string {
	if r.RemoteAddr != "" {
		// RemoteAddr may include port: "ip:port"
		if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return ip
		}
		// If no port, just use it directly
		return r.RemoteAddr
	}
	return "unknown"
}

// trusts reports whether an IP address is within any trusted proxy range.
func (c *IPConfig) trusts(ip string) bool {
	if len(c.trustedNets) == 0 {
		return false
	}

	clientIP := net.ParseIP(ip)
	if clientIP == nil {
		return false
	}

	for _, ipNet := range c.trustedNets {
		if ipNet.Contains(clientIP) {
			return true
		}
	}

	return false
}

// isValidIP checks if a string is a valid IPv4 or IPv6 address
func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
