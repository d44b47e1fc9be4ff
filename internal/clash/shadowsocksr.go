package clash

import (
	"proxylink/internal/b64"
)

type ShadowsocksR struct {
	Name          string
	Server        string
	Port          string
	Protocol      string
	Method        string
	Obfs          string
	Password      string
	ObfsParam     string
	ProtocolParam string
}

func DecodeShadowsocksR(r Record) (*ShadowsocksR, error) {
	// method may be exported as cipher; either satisfies the requirement.
	var missing []string
	for _, f := range []string{"server", "port", "protocol", "method", "obfs", "password"} {
		ok := r.Truthy(f)
		if f == "method" {
			ok = ok || r.Truthy("cipher")
		}
		if !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Kind: KindShadowsocksR, Fields: missing}
	}

	return &ShadowsocksR{
		Name:          r.Text("name"),
		Server:        r.Text("server"),
		Port:          r.Text("port"),
		Protocol:      r.Text("protocol"),
		Method:        firstOf(r.Text("method"), r.Text("cipher")),
		Obfs:          r.Text("obfs"),
		Password:      r.Text("password"),
		ObfsParam:     r.Text("obfs-param"),
		ProtocolParam: r.Text("protocol-param"),
	}, nil
}

func (s *ShadowsocksR) Kind() Kind { return KindShadowsocksR }
func (s *ShadowsocksR) sealed()    {}

// Plain is the text that gets base64url-encoded into the URI:
// server:port:protocol:method:obfs:base64url(password)/[?obfsparam=..&protoparam=..]
func (s *ShadowsocksR) Plain() string {
	core := s.Server + ":" + s.Port + ":" + s.Protocol + ":" + s.Method + ":" + s.Obfs + ":" + b64.EncodeURL(s.Password) + "/"

	var q query
	if s.ObfsParam != "" {
		q.Add("obfsparam", b64.EncodeURL(s.ObfsParam))
	}
	if s.ProtocolParam != "" {
		q.Add("protoparam", b64.EncodeURL(s.ProtocolParam))
	}
	if qs := q.Encode(); qs != "" {
		core += "?" + qs
	}
	return core
}

func (s *ShadowsocksR) Link() Link {
	uri := KindShadowsocksR.Scheme() + b64.EncodeURL(s.Plain())
	if s.Name != "" {
		uri += "#" + escapeComponent(s.Name)
	}
	return Link{
		Kind: KindShadowsocksR,
		Name: s.Name,
		URI:  uri,
	}
}
