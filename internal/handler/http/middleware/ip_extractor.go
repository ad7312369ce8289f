package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"os"
	"strings"
)

// IPExtractor resolves the client IP a rate-limit bucket is keyed by.
type IPExtractor interface {
	ExtractIP(r *http.Request) (string, error)
}

// RemoteAddrExtractor keys on the TCP peer address. This is the default:
// RemoteAddr cannot be spoofed, so it is the right choice whenever the API
// is reached without a reverse proxy in front.
type RemoteAddrExtractor struct{}

func (e *RemoteAddrExtractor) ExtractIP(r *http.Request) (string, error) {
	return hostFromAddr(r.RemoteAddr)
}

// TrustedProxyConfig lists the reverse proxies whose forwarding headers may
// be believed. With Enabled false the headers are ignored entirely.
type TrustedProxyConfig struct {
	Enabled      bool
	AllowedCIDRs []netip.Prefix
}

// IsTrusted reports whether remoteAddr falls inside one of the trusted
// proxy ranges.
func (c *TrustedProxyConfig) IsTrusted(remoteAddr string) bool {
	host, err := hostFromAddr(remoteAddr)
	if err != nil {
		return false
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	for _, prefix := range c.AllowedCIDRs {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// LoadTrustedProxyConfig reads the proxy trust settings from the
// environment. RATE_LIMIT_TRUST_PROXY=true turns header trust on, in which
// case RATE_LIMIT_TRUSTED_PROXIES must name at least one IP or CIDR range
// (comma-separated; bare IPs become /32 or /128). A bad entry fails startup
// rather than silently trusting nothing.
func LoadTrustedProxyConfig() (*TrustedProxyConfig, error) {
	config := &TrustedProxyConfig{
		Enabled: os.Getenv("RATE_LIMIT_TRUST_PROXY") == "true",
	}
	if !config.Enabled {
		return config, nil
	}

	raw := strings.TrimSpace(os.Getenv("RATE_LIMIT_TRUSTED_PROXIES"))
	if raw == "" {
		return nil, fmt.Errorf("RATE_LIMIT_TRUST_PROXY is enabled but RATE_LIMIT_TRUSTED_PROXIES is empty")
	}

	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		prefix, err := parseProxyEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("RATE_LIMIT_TRUSTED_PROXIES entry %q: %w", entry, err)
		}
		config.AllowedCIDRs = append(config.AllowedCIDRs, prefix)
	}
	if len(config.AllowedCIDRs) == 0 {
		return nil, fmt.Errorf("RATE_LIMIT_TRUSTED_PROXIES contained no usable entries")
	}
	return config, nil
}

func parseProxyEntry(entry string) (netip.Prefix, error) {
	if prefix, err := netip.ParsePrefix(entry); err == nil {
		return prefix, nil
	}
	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("not an IP address or CIDR range")
	}
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

// TrustedProxyExtractor believes X-Forwarded-For (first hop) or X-Real-IP
// when, and only when, the connection itself comes from a trusted proxy.
// Anything else falls back to RemoteAddr, so a client dialing the API
// directly cannot rotate its apparent IP by sending forged headers.
type TrustedProxyExtractor struct {
	config TrustedProxyConfig
}

func NewTrustedProxyExtractor(config TrustedProxyConfig) *TrustedProxyExtractor {
	return &TrustedProxyExtractor{config: config}
}

func (e *TrustedProxyExtractor) ExtractIP(r *http.Request) (string, error) {
	if !e.config.Enabled {
		return hostFromAddr(r.RemoteAddr)
	}

	if !e.config.IsTrusted(r.RemoteAddr) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			slog.Warn("forwarding header from untrusted peer ignored",
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("x_forwarded_for", xff),
			)
		}
		return hostFromAddr(r.RemoteAddr)
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := firstForwardedIP(xff); ip != "" {
			return ip, nil
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
			return ip.String(), nil
		}
	}
	return hostFromAddr(r.RemoteAddr)
}

// hostFromAddr strips the port from "IP:port" / "[v6]:port" forms; a bare
// IP is accepted as-is.
func hostFromAddr(addr string) (string, error) {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host, nil
	}
	if ip := net.ParseIP(addr); ip != nil {
		return ip.String(), nil
	}
	return "", fmt.Errorf("invalid address format: %s", addr)
}

// firstForwardedIP returns the leftmost entry of an X-Forwarded-For list,
// which is the original client when every hop behind it is trusted. An
// unparseable first entry yields "" so the caller falls through.
func firstForwardedIP(xff string) string {
	first := xff
	if i := strings.IndexByte(xff, ','); i >= 0 {
		first = xff[:i]
	}
	if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
		return ip.String()
	}
	return ""
}
