package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/JonMunkholm/csvclean/internal/core"
)

// Proxies is the set of peers whose forwarding headers are believed.
type Proxies struct {
	prefixes []netip.Prefix
}

// ParseProxies accepts CIDRs and bare addresses. Invalid entries are logged
// and skipped.
func ParseProxies(entries []string) Proxies {
	var p Proxies
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if prefix, err := netip.ParsePrefix(e); err == nil {
			p.prefixes = append(p.prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			slog.Warn("realip: invalid trusted proxy, skipping", "entry", e, "error", err)
			continue
		}
		addr = addr.Unmap()
		p.prefixes = append(p.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return p
}

func (p Proxies) trusts(a netip.Addr) bool {
	a = a.Unmap()
	for _, prefix := range p.prefixes {
		if prefix.Contains(a) {
			return true
		}
	}
	return false
}

// Resolve returns the client address for r. Forwarding headers are read
// only when the connecting peer is trusted. X-Forwarded-For is walked from
// the right so a client cannot choose its address by prepending entries.
func (p Proxies) Resolve(r *http.Request) netip.Addr {
	peer, ok := remoteAddr(r.RemoteAddr)
	if !ok || !p.trusts(peer) {
		return peer
	}

	if a, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return a.Unmap()
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		a, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		if !p.trusts(a) {
			return a.Unmap()
		}
	}
	return peer
}

func remoteAddr(s string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap(), true
	}
	if a, err := netip.ParseAddr(s); err == nil {
		return a.Unmap(), true
	}
	return netip.Addr{}, false
}

// ClientAddress resolves the client address once per request and stores it
// in the request context for rate limiting, logging and run records.
// RemoteAddr is left as the connecting peer.
func ClientAddress(trusted []string) func(http.Handler) http.Handler {
	proxies := ParseProxies(trusted)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := proxies.Resolve(r); ip.IsValid() {
				r = r.WithContext(core.ContextWithIPAddress(r.Context(), ip.String()))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the address stored by ClientAddress, or the RemoteAddr
// host when the middleware did not run.
func ClientIP(r *http.Request) string {
	if ip := core.GetIPAddressFromContext(r.Context()); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
