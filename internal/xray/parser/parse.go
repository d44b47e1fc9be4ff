package parser

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"proxylink/internal/b64"
	"proxylink/internal/clash"
)

var (
	regexObfsHost   = regexp.MustCompile(`obfs-host=([^;]+)`)
	regexPluginPath = regexp.MustCompile(`path=([^;]+)`)
)

func Parse(raw string) (*Profile, error) {
	raw = FixIllegalUrl(raw)
	scheme, body, ok := strings.Cut(raw, "://")
	if !ok {
		return nil, fmt.Errorf("invalid uri format")
	}

	switch strings.ToLower(scheme) {
	case "vmess":
		return parseVMess(raw, body)
	case "vless":
		return parseVLESS(raw)
	case "trojan":
		return parseTrojan(raw)
	case "ss", "shadowsocks":
		return parseShadowsocks(raw, body)
	case "ssr":
		return parseShadowsocksR(raw, body)
	case "hysteria":
		return parseHysteria(raw)
	case "hysteria2", "hy2":
		return parseHysteria2(raw)
	default:
		return nil, fmt.Errorf("unsupported protocol: %s", scheme)
	}
}

// --- VMess ---
type vmessJSON struct {
	V           interface{} `json:"v"`
	Ps          interface{} `json:"ps"`
	Add         interface{} `json:"add"`
	Port        interface{} `json:"port"`
	Id          interface{} `json:"id"`
	Aid         interface{} `json:"aid"`
	Scy         string      `json:"scy"`
	Net         string      `json:"net"`
	Type        string      `json:"type"`
	Host        string      `json:"host"`
	Path        string      `json:"path"`
	Tls         string      `json:"tls"`
	Sni         string      `json:"sni"`
	Alpn        string      `json:"alpn"`
	Fp          string      `json:"fp"`
	ServiceName string      `json:"serviceName"`
	Tfo         interface{} `json:"tfo"`
	Udp         interface{} `json:"udp"`
}

func parseVMess(raw, body string) (*Profile, error) {
	// Standard VMess URI (vmess://...?...)
	if strings.Contains(raw, "?") && strings.Contains(raw, "&") {
		p, err := parseGeneric(raw)
		if err != nil {
			return nil, err
		}
		p.Protocol = clash.KindVMess
		p.Method = "auto"
		return p, nil
	}

	// Base64 JSON
	jsonStr, err := b64.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("vmess base64 error: %w", err)
	}

	var v vmessJSON
	if err := json.Unmarshal([]byte(jsonStr), &v); err != nil {
		return nil, fmt.Errorf("vmess json error: %w", err)
	}

	p := &Profile{
		Protocol:    clash.KindVMess,
		RawURI:      raw,
		Remarks:     jsonText(v.Ps),
		Address:     jsonText(v.Add),
		Password:    jsonText(v.Id),
		Method:      v.Scy,
		Network:     v.Net,
		Host:        v.Host,
		Path:        v.Path,
		Security:    v.Tls,
		SNI:         v.Sni,
		Fingerprint: v.Fp,
		TFO:         jsonFlag(v.Tfo),
		UDP:         jsonFlag(v.Udp),
	}

	if p.Method == "" {
		p.Method = "auto"
	}
	if p.Network == "" {
		p.Network = "tcp"
	}
	if v.Alpn != "" {
		p.ALPN = strings.Split(v.Alpn, ",")
	}

	// Port and aid can be strings or numbers in JSON
	p.Port, _ = strconv.Atoi(fmt.Sprintf("%v", v.Port))
	p.AlterID, _ = strconv.Atoi(fmt.Sprintf("%v", v.Aid))

	switch p.Network {
	case "grpc":
		if v.Type != "grpc" {
			p.Mode = v.Type // "gun" or "multi"
		}
		p.ServiceName = v.ServiceName
		if p.ServiceName == "" {
			p.ServiceName = v.Path
			p.Path = ""
		}
	case "ws", "http":
	default:
		p.HeaderType = v.Type
	}

	return p, nil
}

// jsonText reads a field some generators write as a number.
func jsonText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}

func jsonFlag(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return isSet(t)
	case float64:
		return t != 0
	}
	return false
}

// --- VLESS, Trojan (Generic URI) ---
func parseGeneric(raw string) (*Profile, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		RawURI:  raw,
		Address: u.Hostname(),
		Remarks: u.Fragment,
	}
	if u.User != nil {
		p.Password = u.User.Username()
	}
	if port := u.Port(); port != "" {
		if p.Port, err = strconv.Atoi(port); err != nil {
			return nil, fmt.Errorf("invalid port %q", port)
		}
	}

	ParseQueryParam(p, u.Query())
	return p, nil
}

func parseVLESS(raw string) (*Profile, error) {
	p, err := parseGeneric(raw)
	if err != nil {
		return nil, err
	}
	p.Protocol = clash.KindVLESS
	p.Method = p.getParsedQuery().Get("encryption")
	if p.Method == "" {
		p.Method = "none"
	}
	if p.Network == "" {
		p.Network = "tcp"
	}
	if p.Security == "" {
		p.Security = "none"
	}
	return p, nil
}

func parseTrojan(raw string) (*Profile, error) {
	p, err := parseGeneric(raw)
	if err != nil {
		return nil, err
	}
	p.Protocol = clash.KindTrojan
	if p.Network == "" {
		p.Network = "tcp"
	}
	// Trojan is TLS-only; the links never spell it out.
	if p.Security == "" {
		p.Security = "tls"
	}
	return p, nil
}

// --- Hysteria ---
func parseHysteria(raw string) (*Profile, error) {
	p, err := parseGeneric(raw)
	if err != nil {
		return nil, err
	}
	p.Protocol = clash.KindHysteria

	q := p.getParsedQuery()
	p.Password = q.Get("auth")
	if p.SNI == "" {
		p.SNI = q.Get("peer")
	}
	if ca := q.Get("peerCA"); ca != "" {
		if p.PeerCA, err = b64.Decode(ca); err != nil {
			return nil, fmt.Errorf("hysteria peerCA: %w", err)
		}
	}
	p.UpMbps = q.Get("upmbps")
	p.DownMbps = q.Get("downmbps")
	p.Obfs = q.Get("obfs")
	p.ObfsParam = q.Get("obfs-param")
	return p, nil
}

func parseHysteria2(raw string) (*Profile, error) {
	p, err := parseGeneric(raw)
	if err != nil {
		return nil, err
	}
	p.Protocol = clash.KindHysteria2

	q := p.getParsedQuery()
	if p.Password == "" {
		p.Password = q.Get("password")
	}
	p.Obfs = q.Get("obfs")
	p.ObfsParam = q.Get("obfs-param")
	if p.ObfsParam == "" {
		p.ObfsParam = q.Get("obfs-password")
	}
	if p.ObfsParam != "" && p.Obfs == "" {
		p.Obfs = "salamander"
	}
	p.PortHopping = q.Get("mport")
	return p, nil
}

// Helper to re-parse query since parseGeneric consumes it
func (p *Profile) getParsedQuery() url.Values {
	u, err := url.Parse(p.RawURI)
	if err != nil {
		return url.Values{}
	}
	return u.Query()
}

// --- Shadowsocks ---

// parseShadowsocks cuts the authority by hand: standard base64 userinfo may
// contain '/' which net/url would read as the start of the path.
func parseShadowsocks(raw, body string) (*Profile, error) {
	body, fragment, _ := strings.Cut(body, "#")
	body, rawQuery, _ := strings.Cut(body, "?")
	body = strings.TrimSuffix(body, "/")

	at := strings.LastIndex(body, "@")
	if at < 0 {
		// Legacy form: the whole method:password@host:port is base64.
		decoded, err := b64.Decode(body)
		if err != nil {
			return nil, fmt.Errorf("invalid shadowsocks link: %w", err)
		}
		body = decoded
		if at = strings.LastIndex(body, "@"); at < 0 {
			return nil, fmt.Errorf("invalid shadowsocks link: missing '@'")
		}
	}

	address, port, err := splitHostPort(body[at+1:])
	if err != nil {
		return nil, err
	}

	p := &Profile{
		Protocol: clash.KindShadowsocks,
		RawURI:   raw,
		Address:  address,
		Port:     port,
		Remarks:  unescapeFragment(fragment),
	}

	// SIP002: plain method:password is percent-encoded, otherwise base64.
	userInfo := unescapeFragment(body[:at])
	if !strings.Contains(userInfo, ":") {
		if decoded, err := b64.Decode(userInfo); err == nil {
			userInfo = decoded
		}
	}
	method, password, ok := strings.Cut(userInfo, ":")
	if !ok {
		return nil, fmt.Errorf("invalid shadowsocks userinfo")
	}
	p.Method, p.Password = method, password

	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("invalid shadowsocks query: %w", err)
	}
	ParseQueryParam(p, q)

	// Plugin Logic (v2rayNG logic)
	plugin := q.Get("plugin")
	if strings.Contains(plugin, "obfs=http") {
		p.Network = "tcp"
		p.HeaderType = "http"
		if match := regexObfsHost.FindStringSubmatch(plugin); len(match) > 1 {
			p.Host = match[1]
		}
		if match := regexPluginPath.FindStringSubmatch(plugin); len(match) > 1 {
			p.Path = match[1]
		}
	}

	return p, nil
}

// --- ShadowsocksR ---

// parseShadowsocksR reads
// base64url(server:port:protocol:method:obfs:base64url(password)/?params)[#remarks].
func parseShadowsocksR(raw, body string) (*Profile, error) {
	body, fragment, _ := strings.Cut(body, "#")
	plain, err := b64.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("ssr base64 error: %w", err)
	}

	main, params, _ := strings.Cut(plain, "/?")
	main = strings.TrimSuffix(main, "/")

	// The server may be an IPv6 literal, so fields are counted from the right.
	fields := strings.Split(main, ":")
	n := len(fields)
	if n < 6 {
		return nil, fmt.Errorf("invalid ssr payload: expected server:port:protocol:method:obfs:password")
	}
	port, err := strconv.Atoi(fields[n-5])
	if err != nil {
		return nil, fmt.Errorf("invalid ssr port %q", fields[n-5])
	}
	password, err := b64.Decode(fields[n-1])
	if err != nil {
		return nil, fmt.Errorf("ssr password: %w", err)
	}

	p := &Profile{
		Protocol:    clash.KindShadowsocksR,
		RawURI:      raw,
		Address:     strings.Join(fields[:n-5], ":"),
		Port:        port,
		SSRProtocol: fields[n-4],
		Method:      fields[n-3],
		Obfs:        fields[n-2],
		Password:    password,
	}

	q, err := url.ParseQuery(params)
	if err != nil {
		return nil, fmt.Errorf("invalid ssr params: %w", err)
	}
	p.ObfsParam = decodeParam(q.Get("obfsparam"))
	p.ProtocolParam = decodeParam(q.Get("protoparam"))
	p.Remarks = decodeParam(q.Get("remarks"))
	if fragment != "" {
		p.Remarks = unescapeFragment(fragment)
	}
	return p, nil
}

func decodeParam(s string) string {
	decoded, err := b64.Decode(s)
	if err != nil {
		return s
	}
	return decoded
}
