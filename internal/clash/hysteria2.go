package clash

type Hysteria2 struct {
	Name     string
	Server   string
	Port     string
	Password string

	SNI       string
	Insecure  bool
	ALPN      *string
	Obfs      string
	ObfsParam string
}

func DecodeHysteria2(r Record) (*Hysteria2, error) {
	if err := checkRequired(KindHysteria2, r, "server", "port", "password"); err != nil {
		return nil, err
	}
	server := r.Text("server")
	return &Hysteria2{
		Name:      r.Text("name"),
		Server:    server,
		Port:      r.Text("port"),
		Password:  r.Text("password"),
		SNI:       firstOf(r.Text("sni"), r.Text("servername"), server),
		Insecure:  r.Truthy("insecure") || r.Truthy("skip-cert-verify"),
		ALPN:      decodeALPN(r),
		Obfs:      r.Text("obfs"),
		ObfsParam: r.Text("obfs-param"),
	}, nil
}

func (h *Hysteria2) Kind() Kind { return KindHysteria2 }
func (h *Hysteria2) sealed()    {}

func (h *Hysteria2) Link() Link {
	var q query
	q.Add("password", h.Password)
	if h.SNI != "" {
		q.Add("sni", h.SNI)
	}
	if h.Insecure {
		q.Add("insecure", "1")
	}
	if h.ALPN != nil {
		q.Add("alpn", *h.ALPN)
	}
	if h.Obfs != "" {
		q.Add("obfs", h.Obfs)
	}
	if h.ObfsParam != "" {
		q.Add("obfs-param", h.ObfsParam)
	}

	base := KindHysteria2.Scheme() + escapeComponent(h.Server) + ":" + h.Port
	return Link{
		Kind: KindHysteria2,
		Name: h.Name,
		URI:  buildURI(base, &q, h.Name),
	}
}
