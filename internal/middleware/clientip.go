package middleware

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

const clientIPContextKey contextKey = "client_ip"

// ProxyTrust resolves the caller address for rate limiting and audit
// records. X-Forwarded-For and X-Real-IP are honoured only when the socket
// peer is one of the trusted proxies; otherwise the peer address is used.
type ProxyTrust struct {
	trusted []netip.Prefix
}

func NewProxyTrust(trusted []netip.Prefix) *ProxyTrust {
	return &ProxyTrust{trusted: trusted}
}

// Handler stores the resolved address on the request context for ClientIP.
func (p *ProxyTrust) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), clientIPContextKey, p.Resolve(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (p *ProxyTrust) Resolve(r *http.Request) string {
	peer := peerAddr(r)
	if !p.isTrusted(peer) {
		return peer
	}

	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		hops := strings.Split(forwarded, ",")
		// Walk from the nearest hop outwards; the first address not owned by
		// a trusted proxy is the client.
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if _, err := netip.ParseAddr(hop); err != nil {
				return peer
			}
			if !p.isTrusted(hop) || i == 0 {
				return hop
			}
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		if _, err := netip.ParseAddr(realIP); err == nil {
			return realIP
		}
	}

	return peer
}

func (p *ProxyTrust) isTrusted(ip string) bool {
	if p == nil || len(p.trusted) == 0 {
		return false
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	for _, prefix := range p.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP returns the address resolved by ProxyTrust.Handler, or the socket
// peer when the request did not pass through it.
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(clientIPContextKey).(string); ok && ip != "" {
		return ip
	}
	return peerAddr(r)
}

func peerAddr(r *http.Request) string {
	remote := strings.TrimSpace(r.RemoteAddr)
	host, _, err := net.SplitHostPort(remote)
	if err == nil && host != "" {
		return host
	}

	if remote == "" {
		return "unknown"
	}
	return remote
}
