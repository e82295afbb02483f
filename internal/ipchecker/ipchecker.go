// Package ipchecker restricts HTTP routes to clients from a trusted subnet.
package ipchecker

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// IPChecker validates whether the client address of an HTTP request belongs
// to the configured trusted subnet. An empty subnet disables the checker:
// every request is rejected.
type IPChecker struct {
	trustedSubnet *net.IPNet
}

// New creates an IPChecker for the trusted subnet given in CIDR notation
// (e.g. "192.168.1.0/24"). An empty string configures a disabled checker.
func New(trustedSubnet string) (*IPChecker, error) {
	if trustedSubnet == "" {
		return &IPChecker{}, nil
	}

	_, allowedNet, err := net.ParseCIDR(trustedSubnet)
	if err != nil {
		return nil, fmt.Errorf("error while `net.ParseCIDR()` calling: %w", err)
	}

	return &IPChecker{trustedSubnet: allowedNet}, nil
}

// clientIP extracts the client address, checking in order the "X-Real-IP"
// header, the first "X-Forwarded-For" entry, and the request RemoteAddr.
func clientIP(request *http.Request) net.IP {
	if ip := net.ParseIP(request.Header.Get("X-Real-IP")); ip != nil {
		return ip
	}

	if xff := request.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		return net.ParseIP(first)
	}

	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return nil
	}

	return net.ParseIP(host)
}

// Check reports whether the request originates from the trusted subnet.
func (checker *IPChecker) Check(request *http.Request) bool {
	if checker.trustedSubnet == nil {
		return false
	}

	ip := clientIP(request)

	return ip != nil && checker.trustedSubnet.Contains(ip)
}

// Middleware rejects requests from outside the trusted subnet with 403.
func (checker *IPChecker) Middleware(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		if !checker.Check(request) {
			response.WriteHeader(http.StatusForbidden)
			return
		}

		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}
