package parser

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// FixIllegalUrl cleans up common issues in scraped links.
func FixIllegalUrl(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return s
}

// ParseQueryParam extracts standard transport/security params from query values.
// This mimics the `getItemFormQuery` logic in v2rayNG.
func ParseQueryParam(p *Profile, q url.Values) {
	if v := q.Get("type"); v != "" {
		p.Network = v
	}
	if v := q.Get("headerType"); v != "" {
		p.HeaderType = v
	}
	if v := queryValue(q, "host"); v != "" {
		p.Host = v
	}
	if v := queryValue(q, "path"); v != "" {
		p.Path = v
	}
	if v := queryValue(q, "quicSecurity"); v != "" {
		p.QuicSecurity = v
	}
	if v := queryValue(q, "key"); v != "" {
		p.QuicKey = v
	}
	if v := q.Get("mode"); v != "" {
		p.Mode = v
	}
	if v := queryValue(q, "serviceName"); v != "" {
		p.ServiceName = v
	}
	if v := q.Get("authority"); v != "" {
		p.Authority = v
	}
	if v := q.Get("security"); v != "" {
		p.Security = v
	}
	if v := q.Get("sni"); v != "" {
		p.SNI = v
	}
	if v := queryValue(q, "fp"); v != "" {
		p.Fingerprint = v
	}
	if v := queryValue(q, "alpn"); v != "" {
		p.ALPN = strings.Split(v, ",")
	}
	if v := queryValue(q, "pbk"); v != "" {
		p.Pbk = v
	}
	if v := queryValue(q, "sid"); v != "" {
		p.Sid = v
	}
	if v := q.Get("spx"); v != "" {
		p.SpiderX = v
	}
	if v := q.Get("flow"); v != "" {
		p.Flow = v
	}
	p.TFO = isSet(q.Get("tfo"))
	p.UDP = isSet(q.Get("udp"))

	// Insecure mapping (1/0/true/false)
	allowInsecure := []string{"allowInsecure", "insecure", "allow_insecure"}
	for _, key := range allowInsecure {
		if val := q.Get(key); val != "" {
			p.Insecure = isSet(val)
			break
		}
	}
}

// queryValue undoes the second layer of percent-encoding that VLESS links
// carry on some parameters. Values that do not unescape cleanly are kept.
func queryValue(q url.Values, key string) string {
	v := q.Get(key)
	if !strings.Contains(v, "%") {
		return v
	}
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func isSet(v string) bool {
	return v == "1" || v == "true"
}

// splitHostPort accepts bracketed IPv6 and percent-escaped hosts.
func splitHostPort(s string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return "", 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if h, err := url.PathUnescape(host); err == nil {
		host = h
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q", portStr)
	}
	return host, port, nil
}

func unescapeFragment(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}
