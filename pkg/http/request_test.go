package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func requestFrom(remoteAddr string, headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestExtractClientIP_RemoteAddr(t *testing.T) {
	req := requestFrom("203.0.113.9:52034", nil)
	if ip := ExtractClientIP(req, NewIPConfig(nil)); ip != "203.0.113.9" {
		t.Errorf("expected 203.0.113.9, got %q", ip)
	}
}

// Forwarding headers from an untrusted peer choose the rate-limit key, so
// they must be ignored.
func TestExtractClientIP_IgnoresHeadersFromUntrustedPeer(t *testing.T) {
	req := requestFrom("203.0.113.9:52034", map[string]string{
		"True-Client-IP":  "198.51.100.6",
		"X-Forwarded-For": "198.51.100.7",
		"X-Real-IP":       "198.51.100.8",
	})
	if ip := ExtractClientIP(req, NewIPConfig(nil)); ip != "203.0.113.9" {
		t.Errorf("expected RemoteAddr to win, got %q", ip)
	}
}

func TestExtractClientIP_TrustedProxyForwardedFor(t *testing.T) {
	config := NewIPConfig([]string{"10.0.0.0/8"})
	req := requestFrom("10.0.0.5:52034", map[string]string{
		"X-Forwarded-For": "198.51.100.7, 10.0.0.5",
	})
	if ip := ExtractClientIP(req, config); ip != "198.51.100.7" {
		t.Errorf("expected first forwarded IP, got %q", ip)
	}
}

func TestExtractClientIP_TrustedProxyRealIP(t *testing.T) {
	config := NewIPConfig([]string{"10.0.0.0/8"})
	req := requestFrom("10.0.0.5:52034", map[string]string{
		"X-Real-IP": "198.51.100.7",
	})
	if ip := ExtractClientIP(req, config); ip != "198.51.100.7" {
		t.Errorf("expected X-Real-IP, got %q", ip)
	}
}

func TestExtractClientIP_GarbageForwardedForFallsThrough(t *testing.T) {
	config := NewIPConfig([]string{"10.0.0.0/8"})
	req := requestFrom("10.0.0.5:52034", map[string]string{
		"X-Forwarded-For": "not-an-ip, also-garbage",
	})
	if ip := ExtractClientIP(req, config); ip != "10.0.0.5" {
		t.Errorf("expected fallback to RemoteAddr, got %q", ip)
	}
}

func TestExtractClientIP_IPv6(t *testing.T) {
	req := requestFrom("[2001:db8::1]:52034", nil)
	if ip := ExtractClientIP(req, NewIPConfig(nil)); ip != "2001:db8::1" {
		t.Errorf("expected 2001:db8::1, got %q", ip)
	}
}

func TestNewIPConfig_SkipsInvalidCIDRs(t *testing.T) {
	config := NewIPConfig([]string{"not-a-cidr", "10.0.0.0/8"})
	req := requestFrom("10.0.0.5:52034", map[string]string{
		"X-Real-IP": "198.51.100.7",
	})
	if ip := ExtractClientIP(req, config); ip != "198.51.100.7" {
		t.Errorf("valid CIDR should survive invalid neighbors, got %q", ip)
	}
}
