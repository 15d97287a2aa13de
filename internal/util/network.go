// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// MaxEndpointURLLength is the maximum allowed length for a delivery endpoint.
const MaxEndpointURLLength = 2048

// resolveTimeout bounds DNS lookups made while validating an endpoint.
const resolveTimeout = 5 * time.Second

// privateIPBlocks contains CIDR ranges for private/reserved IP addresses.
var privateIPBlocks = mustParseCIDRs(
	"10.0.0.0/8",      // RFC 1918
	"172.16.0.0/12",   // RFC 1918
	"192.168.0.0/16",  // RFC 1918
	"127.0.0.0/8",     // loopback
	"169.254.0.0/16",  // link-local
	"0.0.0.0/8",       // "this" network
	"100.64.0.0/10",   // CGNAT
	"192.0.0.0/24",    // IETF protocol assignments
	"192.0.2.0/24",    // documentation
	"198.18.0.0/15",   // benchmarking
	"198.51.100.0/24", // documentation
	"203.0.113.0/24",  // documentation
	"224.0.0.0/4",     // multicast
	"240.0.0.0/4",     // reserved
	"::1/128",         // IPv6 loopback
	"fe80::/10",       // IPv6 link-local
	"fc00::/7",        // IPv6 unique local
	"::/128",          // IPv6 unspecified
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	blocks := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, block, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR %q: %v", cidr, err))
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// IsPrivateIP checks if an IP address falls within a private or reserved range.
// A nil IP counts as private.
func IsPrivateIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	for _, block := range privateIPBlocks {
		if block.Contains(ip) {
			return true
		}
	}
	return false
}

// ValidateEndpointURL checks that rawURL is an absolute http(s) URL whose
// host is public. Hostnames are resolved and every address is checked.
func ValidateEndpointURL(ctx context.Context, rawURL string) error {
	if len(rawURL) > MaxEndpointURLLength {
		return fmt.Errorf("URL exceeds maximum length of %d characters", MaxEndpointURLLength)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must use http or https scheme")
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("URL must have a hostname")
	}
	lower := strings.ToLower(host)
	if lower == "localhost" || strings.HasSuffix(lower, ".localhost") {
		return fmt.Errorf("localhost URLs are not allowed")
	}
	if ip := net.ParseIP(host); ip != nil {
		if IsPrivateIP(ip) {
			return fmt.Errorf("private or reserved IP addresses are not allowed")
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()
	_, err = resolvePublic(ctx, host)
	return err
}

// resolvePublic resolves host and fails if any address is private.
func resolvePublic(ctx context.Context, host string) ([]net.IPAddr, error) {
	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", host, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("hostname %q did not resolve to any IP addresses", host)
	}
	for _, ipAddr := range ips {
		if IsPrivateIP(ipAddr.IP) {
			return nil, fmt.Errorf("hostname %q resolves to private IP address %s", host, ipAddr.IP)
		}
	}
	return ips, nil
}

// SSRFSafeDialContext returns a DialContext function that refuses to
// connect to private or reserved addresses. The checked address is dialed
// directly so a second DNS answer cannot redirect the connection.
func SSRFSafeDialContext(dialer *net.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", addr, err)
		}

		ips, err := resolvePublic(ctx, host)
		if err != nil {
			return nil, fmt.Errorf("connection blocked: %w", err)
		}

		for _, ipAddr := range ips {
			conn, dialErr := dialer.DialContext(ctx, network, net.JoinHostPort(ipAddr.IP.String(), port))
			if dialErr == nil {
				return conn, nil
			}
			err = dialErr
		}
		return nil, fmt.Errorf("failed to connect to %q: %w", host, err)
	}
}
