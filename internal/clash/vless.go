package clash

import (
	"fmt"
	"strings"
)

// Security layers resolved for a VLESS record.
const (
	SecurityNone    = "none"
	SecurityTLS     = "tls"
	SecurityReality = "reality"
)

type VLESS struct {
	Name    string
	UUID    string
	Server  string
	Port    string
	Network string

	// Security is reality, tls or none.
	Security       string
	ServerName     string
	ALPN           []string
	Fingerprint    string
	SkipCertVerify bool
	Flow           string

	RealityPublicKey string
	RealityShortID   string

	TCPHeaderType string
	WS            *HTTPOptions
	GRPC          *VLESSGRPC
	QUIC          *VLESSQUIC
	HTTPUpgrade   *HTTPUpgradeOptions
	H2            *H2Options

	TFO bool
}

type VLESSGRPC struct {
	Mode        string
	ServiceName string
}

type VLESSQUIC struct {
	Security   string
	Key        string
	HeaderType string
}

type HTTPUpgradeOptions struct {
	Host string
	Path string
}

type H2Options struct {
	// Host is nil when h2-opts.host is neither a string nor a non-empty sequence.
	Host *string
	Path string
}

func DecodeVLESS(r Record) (*VLESS, error) {
	if t, _ := r.Get("type").raw.(string); t != string(KindVLESS) {
		return nil, fmt.Errorf("%w: expected %q, got %q", ErrTypeMismatch, KindVLESS, r.Get("type").String())
	}
	if err := checkRequired(KindVLESS, r, "uuid", "server", "port"); err != nil {
		return nil, err
	}

	v := &VLESS{
		Name:           r.Text("name"),
		UUID:           r.Text("uuid"),
		Server:         r.Text("server"),
		Port:           r.Text("port"),
		Network:        firstOf(r.Text("network"), "tcp"),
		Security:       SecurityNone,
		ServerName:     r.Text("servername"),
		Fingerprint:    firstOf(r.Text("client-fingerprint"), r.Text("fingerprint")),
		SkipCertVerify: r.Get("skip-cert-verify").IsTrue(),
		Flow:           r.Text("flow"),
		TCPHeaderType:  r.Sub("tcp-opts").Sub("header").Text("type"),
		TFO:            r.Get("tfo").IsTrue(),
	}

	switch security := r.Text("security"); {
	case security == SecurityReality || r.Truthy("reality-opts"):
		v.Security = SecurityReality
	case security == SecurityTLS || r.Get("tls").IsTrue():
		v.Security = SecurityTLS
	}

	if alpn := r.Get("alpn"); alpn.IsList() {
		v.ALPN = alpn.List()
	}

	reality := r.Sub("reality-opts")
	v.RealityPublicKey = firstOf(reality.Text("public-key"), reality.Text("publicKey"))
	v.RealityShortID = firstOf(reality.Text("short-id"), reality.Text("shortId"))

	if r.Truthy("ws-opts") {
		ws := r.Sub("ws-opts")
		v.WS = &HTTPOptions{
			Host: ws.Sub("headers").Text("Host"),
			Path: ws.Text("path"),
		}
	}
	if r.Truthy("grpc-opts") {
		grpc := r.Sub("grpc-opts")
		v.GRPC = &VLESSGRPC{
			Mode:        firstOf(grpc.Text("grpc-mode"), grpc.Text("mode")),
			ServiceName: grpc.Text("grpc-service-name"),
		}
	}
	if r.Truthy("quic-opts") {
		quic := r.Sub("quic-opts")
		v.QUIC = &VLESSQUIC{
			Security:   quic.Text("security"),
			Key:        quic.Text("key"),
			HeaderType: quic.Sub("header").Text("type"),
		}
	}
	if r.Truthy("httpupgrade-opts") {
		hu := r.Sub("httpupgrade-opts")
		v.HTTPUpgrade = &HTTPUpgradeOptions{
			Host: hu.Text("host"),
			Path: hu.Text("path"),
		}
	}
	if r.Truthy("h2-opts") {
		h2 := r.Sub("h2-opts")
		opts := &H2Options{Path: h2.Text("path")}
		switch host := h2.Get("host"); {
		case host.IsList() && len(host.List()) > 0:
			joined := strings.Join(host.List(), ",")
			opts.Host = &joined
		case host.IsString():
			s := host.String()
			opts.Host = &s
		}
		v.H2 = opts
	}

	return v, nil
}

func (v *VLESS) Kind() Kind { return KindVLESS }
func (v *VLESS) sealed()    {}

func (v *VLESS) Link() Link {
	var (
		q        query
		warnings []Warning
	)

	if v.Network != "tcp" || (v.TCPHeaderType != "" && v.TCPHeaderType != "none") {
		q.Set("type", v.Network)
	}

	// Values wrapped in escapeComponent here are escaped a second time when the
	// query is serialized. Existing consumers expect that, so it stays.
	switch v.Security {
	case SecurityTLS:
		q.Set("security", SecurityTLS)
		if v.ServerName != "" {
			q.Set("sni", v.ServerName)
		}
		if len(v.ALPN) > 0 {
			q.Set("alpn", escapeComponent(strings.Join(v.ALPN, ",")))
		}
		if v.Fingerprint != "" {
			q.Set("fp", escapeComponent(v.Fingerprint))
		}
		if v.SkipCertVerify {
			q.Set("allowInsecure", "1")
		}
		if v.Flow != "" {
			q.Set("flow", v.Flow)
		}
	case SecurityReality:
		q.Set("security", SecurityReality)
		if v.ServerName != "" {
			q.Set("sni", v.ServerName)
		}
		if v.RealityPublicKey != "" {
			q.Set("pbk", escapeComponent(v.RealityPublicKey))
		}
		if v.RealityShortID != "" {
			q.Set("sid", escapeComponent(v.RealityShortID))
		}
		if v.Fingerprint != "" {
			q.Set("fp", escapeComponent(v.Fingerprint))
		}
	}

	switch v.Network {
	case "tcp":
		if v.TCPHeaderType != "" && v.TCPHeaderType != "none" {
			q.Set("headerType", v.TCPHeaderType)
		}
	case "ws":
		if v.WS != nil {
			if v.WS.Host != "" {
				q.Set("host", v.WS.Host)
			}
			if v.WS.Path != "" && v.WS.Path != "/" {
				q.Set("path", escapeComponent(v.WS.Path))
			}
		}
	case "grpc":
		if v.GRPC != nil {
			if v.GRPC.Mode == "multi" {
				q.Set("mode", "multi")
			}
			if v.GRPC.ServiceName != "" {
				q.Set("serviceName", escapeComponent(v.GRPC.ServiceName))
			}
		}
	case "quic":
		v.assumeTLS(&q)
		if v.QUIC != nil {
			if v.QUIC.Security != "" && v.QUIC.Security != "none" {
				q.Set("quicSecurity", escapeComponent(v.QUIC.Security))
			}
			if v.QUIC.Key != "" {
				q.Set("key", escapeComponent(v.QUIC.Key))
			}
			if v.QUIC.HeaderType != "" && v.QUIC.HeaderType != "none" {
				q.Set("headerType", v.QUIC.HeaderType)
			}
		}
	case "httpupgrade":
		if v.HTTPUpgrade != nil {
			if v.HTTPUpgrade.Host != "" {
				q.Set("host", v.HTTPUpgrade.Host)
			}
			if v.HTTPUpgrade.Path != "" {
				q.Set("path", escapeComponent(v.HTTPUpgrade.Path))
			}
		}
	case "h2":
		v.assumeTLS(&q)
		if v.H2 != nil {
			if v.H2.Host != nil {
				q.Set("host", escapeComponent(*v.H2.Host))
			}
			if v.H2.Path != "" {
				q.Set("path", escapeComponent(v.H2.Path))
			}
		}
	default:
		warnings = append(warnings, Warning{
			Code:    WarnUnsupportedNetwork,
			Message: fmt.Sprintf("unsupported network type for URL generation: %s", v.Network),
		})
	}

	if v.TFO {
		q.Set("tfo", "1")
	}

	base := KindVLESS.Scheme() + v.UUID + "@" + v.Server + ":" + v.Port
	return Link{
		Kind:     KindVLESS,
		Name:     v.Name,
		URI:      buildURI(base, &q, v.Name),
		Warnings: warnings,
	}
}

// assumeTLS marks quic and h2 links as TLS when the record named no security
// layer; both transports are unusable without it.
func (v *VLESS) assumeTLS(q *query) {
	if v.Security != SecurityTLS && v.Security != SecurityReality && !q.Has("security") {
		q.Set("security", SecurityTLS)
	}
}
