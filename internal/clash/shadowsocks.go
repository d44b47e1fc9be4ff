package clash

import (
	"proxylink/internal/b64"
)

type Shadowsocks struct {
	Name     string
	Server   string
	Port     string
	Cipher   string
	Password string

	// Network is "tcp" when the record leaves it unset; NetworkSet tells the two apart.
	Network    string
	NetworkSet bool

	TLS            bool
	SNI            string
	HostHint       string
	Fingerprint    string
	SkipCertVerify bool

	HTTP            HTTPOptions
	GRPCServiceName string

	TFO bool
	UDP bool
}

func DecodeShadowsocks(r Record) (*Shadowsocks, error) {
	if err := checkRequired(KindShadowsocks, r, "server", "port", "cipher", "password"); err != nil {
		return nil, err
	}
	server := r.Text("server")
	return &Shadowsocks{
		Name:            r.Text("name"),
		Server:          server,
		Port:            r.Text("port"),
		Cipher:          r.Text("cipher"),
		Password:        r.Text("password"),
		Network:         firstOf(r.Text("network"), "tcp"),
		NetworkSet:      r.Truthy("network"),
		TLS:             r.Truthy("tls"),
		SNI:             firstOf(r.Text("sni"), r.Text("servername"), server),
		HostHint:        firstOf(r.Text("sni"), r.Text("servername")),
		Fingerprint:     r.Text("client-fingerprint"),
		SkipCertVerify:  r.Truthy("skip-cert-verify"),
		HTTP:            decodeHTTPOptions(r),
		GRPCServiceName: r.Sub("grpc-opts").Text("serviceName"),
		TFO:             r.Truthy("tfo"),
		UDP:             r.Truthy("udp"),
	}, nil
}

func (s *Shadowsocks) Kind() Kind { return KindShadowsocks }
func (s *Shadowsocks) sealed()    {}

func (s *Shadowsocks) Link() Link {
	var q query
	if s.Network != "tcp" || s.NetworkSet {
		q.Add("type", s.Network)
	}

	if s.TLS {
		q.Add("security", "tls")
		if s.SNI != "" {
			q.Add("sni", s.SNI)
		}
		if s.Fingerprint != "" {
			q.Add("fp", s.Fingerprint)
		}
		if s.SkipCertVerify {
			q.Add("allowInsecure", "1")
		}
	}

	switch s.Network {
	case "ws", "http":
		if host := firstOf(s.HTTP.Host, s.HostHint, s.Server); host != "" {
			q.Add("host", host)
		}
		if path := firstOf(s.HTTP.Path, "/"); path != "/" {
			q.Add("path", path)
		}
	case "grpc":
		if s.GRPCServiceName != "" {
			q.Add("serviceName", s.GRPCServiceName)
		}
	}

	if s.TFO {
		q.Add("tfo", "1")
	}
	if s.UDP {
		q.Add("udp", "1")
	}

	userInfo := b64.Encode(s.Cipher + ":" + s.Password)
	base := KindShadowsocks.Scheme() + userInfo + "@" + escapeComponent(s.Server) + ":" + s.Port
	return Link{
		Kind: KindShadowsocks,
		Name: s.Name,
		URI:  buildURI(base, &q, s.Name),
	}
}
