package clash

import (
	"proxylink/internal/b64"
)

type Hysteria struct {
	Name   string
	Server string
	Port   string
	// Auth is password, else auth, else auth_str.
	Auth string

	PeerCA   string
	Insecure bool
	ALPN     *string
	UpMbps   *string
	DownMbps *string

	Obfs      string
	ObfsParam string
}

func DecodeHysteria(r Record) (*Hysteria, error) {
	auth := firstOf(r.Text("password"), r.Text("auth"), r.Text("auth_str"))

	var missing []string
	for _, f := range []string{"server", "port"} {
		if !r.Truthy(f) {
			missing = append(missing, f)
		}
	}
	if auth == "" {
		missing = append(missing, "password|auth|auth_str")
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Kind: KindHysteria, Fields: missing}
	}

	return &Hysteria{
		Name:      r.Text("name"),
		Server:    r.Text("server"),
		Port:      r.Text("port"),
		Auth:      auth,
		PeerCA:    r.Text("peerCA"),
		Insecure:  r.Truthy("insecure") || r.Truthy("skip-cert-verify"),
		ALPN:      decodeALPN(r),
		UpMbps:    presentString(r, "upmbps"),
		DownMbps:  presentString(r, "downmbps"),
		Obfs:      r.Text("obfs"),
		ObfsParam: r.Text("obfs-param"),
	}, nil
}

// decodeALPN accepts a string or a sequence; an empty sequence still yields "".
func decodeALPN(r Record) *string {
	v := r.Get("alpn")
	if !v.Truthy() || !(v.IsString() || v.IsList()) {
		return nil
	}
	s := v.String()
	return &s
}

// presentString keeps falsy-but-set values such as 0.
func presentString(r Record, key string) *string {
	if !r.Has(key) {
		return nil
	}
	s := r.Get(key).String()
	return &s
}

func (h *Hysteria) Kind() Kind { return KindHysteria }
func (h *Hysteria) sealed()    {}

func (h *Hysteria) Link() Link {
	var q query
	q.Add("auth", h.Auth)
	if h.PeerCA != "" {
		q.Add("peerCA", b64.EncodeURL(h.PeerCA))
	}
	if h.Insecure {
		q.Add("insecure", "1")
	}
	if h.ALPN != nil {
		q.Add("alpn", *h.ALPN)
	}
	if h.UpMbps != nil {
		q.Add("upmbps", *h.UpMbps)
	}
	if h.DownMbps != nil {
		q.Add("downmbps", *h.DownMbps)
	}
	if h.Obfs != "" {
		q.Add("obfs", h.Obfs)
	}
	if h.ObfsParam != "" {
		q.Add("obfs-param", h.ObfsParam)
	}

	base := KindHysteria.Scheme() + escapeComponent(h.Server) + ":" + h.Port
	return Link{
		Kind: KindHysteria,
		Name: h.Name,
		URI:  buildURI(base, &q, h.Name),
	}
}
