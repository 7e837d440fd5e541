package util

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

const UnknownIP = "0.0.0.0"

// clientIPHeaders are consulted in order; the first one holding a valid
// address wins. Multi-hop values contribute their first element.
var clientIPHeaders = []string{
	"Client-Ip",
	"X-Forwarded-For",
	"X-Forwarded",
	"X-Cluster-Client-Ip",
	"Forwarded-For",
	"Forwarded",
}

// ClientIP resolves the address a request claims to originate from,
// preferring proxy headers over the socket peer. The headers are client
// supplied, so the result is only fit for log attribution. Returns UnknownIP
// when nothing parses.
func ClientIP(r *http.Request) string {
	for _, header := range clientIPHeaders {
		if ip := firstIP(r.Header.Get(header)); ip != "" {
			return ip
		}
	}
	if ip := parseIP(r.RemoteAddr); ip != "" {
		return ip
	}
	return UnknownIP
}

// Proxies is the set of reverse proxies whose X-Forwarded-For is believed.
type Proxies []*net.IPNet

// ParseProxies accepts CIDR ranges and single addresses.
func ParseProxies(values []string) (Proxies, error) {
	proxies := make(Proxies, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if !strings.Contains(value, "/") {
			ip := net.ParseIP(value)
			if ip == nil {
				return nil, fmt.Errorf("trusted proxy %q: invalid address", value)
			}
			bits := 128
			if ip.To4() != nil {
				ip = ip.To4()
				bits = 32
			}
			proxies = append(proxies, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, network, err := net.ParseCIDR(value)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", value, err)
		}
		proxies = append(proxies, network)
	}
	return proxies, nil
}

func (p Proxies) trusted(ip net.IP) bool {
	for _, network := range p {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// PeerIP is the socket peer of r. When the peer is a trusted proxy the
// X-Forwarded-For chain is walked from the right and the first address that
// is not itself a trusted proxy is returned.
func (p Proxies) PeerIP(r *http.Request) string {
	peer := parseIP(r.RemoteAddr)
	if peer == "" {
		return UnknownIP
	}
	if !p.trusted(net.ParseIP(peer)) {
		return peer
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := parseIP(hops[i])
		if hop == "" {
			break
		}
		if !p.trusted(net.ParseIP(hop)) {
			return hop
		}
	}
	return peer
}

func firstIP(value string) string {
	first, _, _ := strings.Cut(value, ",")
	return parseIP(first)
}

func parseIP(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(value); err == nil {
		value = host
	}
	ip := net.ParseIP(value)
	if ip == nil {
		return ""
	}
	return ip.String()
}
