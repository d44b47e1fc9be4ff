package clash

type Trojan struct {
	Name     string
	Server   string
	Port     string
	Password string

	SNI            string // sni, else servername, else server
	HostHint       string // sni or servername, without the server fallback
	SkipCertVerify bool
	Fingerprint    string
	Flow           string

	Network         string
	HTTP            HTTPOptions
	GRPCServiceName string

	TFO bool
	UDP bool
}

func DecodeTrojan(r Record) (*Trojan, error) {
	if err := checkRequired(KindTrojan, r, "server", "port", "password"); err != nil {
		return nil, err
	}
	server := r.Text("server")
	return &Trojan{
		Name:            r.Text("name"),
		Server:          server,
		Port:            r.Text("port"),
		Password:        r.Text("password"),
		SNI:             firstOf(r.Text("sni"), r.Text("servername"), server),
		HostHint:        firstOf(r.Text("sni"), r.Text("servername")),
		SkipCertVerify:  r.Truthy("skip-cert-verify"),
		Fingerprint:     r.Text("client-fingerprint"),
		Flow:            r.Text("flow"),
		Network:         firstOf(r.Text("network"), "tcp"),
		HTTP:            decodeHTTPOptions(r),
		GRPCServiceName: r.Sub("grpc-opts").Text("serviceName"),
		TFO:             r.Truthy("tfo"),
		UDP:             r.Truthy("udp"),
	}, nil
}

func (t *Trojan) Kind() Kind { return KindTrojan }
func (t *Trojan) sealed()    {}

func (t *Trojan) Link() Link {
	var q query
	if t.SNI != "" {
		q.Add("sni", t.SNI)
	}
	if t.SkipCertVerify {
		q.Add("allowInsecure", "1")
	}
	q.Add("type", t.Network)

	switch t.Network {
	case "ws", "http":
		if host := firstOf(t.HTTP.Host, t.HostHint, t.Server); host != "" {
			q.Add("host", host)
		}
		if path := firstOf(t.HTTP.Path, "/"); path != "/" {
			q.Add("path", path)
		}
	case "grpc":
		if t.GRPCServiceName != "" {
			q.Add("serviceName", t.GRPCServiceName)
		}
	}

	if t.Flow != "" {
		q.Add("flow", t.Flow)
	}
	if t.TFO {
		q.Add("tfo", "1")
	}
	if t.UDP {
		q.Add("udp", "1")
	}
	if t.Fingerprint != "" {
		q.Add("fp", t.Fingerprint)
	}

	base := KindTrojan.Scheme() + escapeComponent(t.Password) + "@" + escapeComponent(t.Server) + ":" + t.Port
	return Link{
		Kind: KindTrojan,
		Name: t.Name,
		URI:  buildURI(base, &q, t.Name),
	}
}
