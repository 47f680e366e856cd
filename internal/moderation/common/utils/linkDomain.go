package utils

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var linkPattern = regexp.MustCompile(`(?i)https?://[^\s]+`)

// CanonicalHost lowercases and trims a host name, dropping any port and
// trailing dots.
func CanonicalHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimRight(host, ".")
}

// ApexDomain returns the registrable domain (eTLD+1) for host, or the
// canonical host itself when no public suffix applies (IP literals, localhost).
func ApexDomain(host string) string {
	host = CanonicalHost(host)
	if net.ParseIP(host) != nil {
		return host
	}
	apex, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return apex
}

// LinkDomains extracts the apex domain of every http(s) link embedded in
// text, de-duplicated in first-seen order.
func LinkDomains(text string) []string {
	matches := linkPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, raw := range matches {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		apex := ApexDomain(u.Host)
		if apex == "" {
			continue
		}
		if _, ok := seen[apex]; ok {
			continue
		}
		seen[apex] = struct{}{}
		out = append(out, apex)
	}
	return out
}
