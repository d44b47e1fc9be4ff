package clash

import (
	"fmt"

	"proxylink/internal/b64"
)

type VMess struct {
	Name    string
	Server  string
	Port    Value
	UUID    string
	AlterID Value
	Cipher  string
	Network string

	TLS         bool
	ServerName  string
	Fingerprint string

	HTTP            HTTPOptions
	GRPCServiceName string

	TFO bool
	UDP bool

	// ps, add and id as written in the record; the payload keeps a numeric
	// name, server or uuid numeric.
	ps, add, id Value
}

func DecodeVMess(r Record) (*VMess, error) {
	if err := checkRequired(KindVMess, r, "server", "port", "uuid"); err != nil {
		return nil, err
	}
	v := &VMess{
		Name:            r.Text("name"),
		Server:          r.Text("server"),
		Port:            r.Get("port"),
		UUID:            r.Text("uuid"),
		AlterID:         r.Get("alterId"),
		Cipher:          firstOf(r.Text("cipher"), "auto"),
		Network:         firstOf(r.Text("network"), "tcp"),
		TLS:             r.Truthy("tls"),
		ServerName:      r.Text("servername"),
		Fingerprint:     r.Text("client-fingerprint"),
		HTTP:            decodeHTTPOptions(r),
		GRPCServiceName: r.Sub("grpc-opts").Text("serviceName"),
		TFO:             r.Truthy("tfo"),
		UDP:             r.Truthy("udp"),
		ps:              r.Get("name"),
		add:             r.Get("server"),
		id:              r.Get("uuid"),
	}
	if _, err := v.Payload(); err != nil {
		return nil, fmt.Errorf("%s: %w", KindVMess, err)
	}
	return v, nil
}

func (v *VMess) Kind() Kind { return KindVMess }
func (v *VMess) sealed()    {}

// Payload builds the JSON object carried base64-encoded in the URI.
func (v *VMess) Payload() ([]byte, error) {
	o := newObject()
	o.Set("v", "2")
	o.Set("ps", rawOr(v.ps, v.Name))
	o.Set("add", rawOr(v.add, v.Server))
	o.Set("port", v.Port)
	o.Set("id", rawOr(v.id, v.UUID))
	if v.AlterID.Truthy() {
		o.Set("aid", v.AlterID)
	} else {
		o.Set("aid", 0)
	}
	o.Set("scy", v.Cipher)
	o.Set("net", v.Network)

	sni := ""
	if v.TLS {
		sni = firstOf(v.ServerName, v.Server)
		o.Set("tls", "tls")
		o.Set("sni", sni)
		if v.Fingerprint != "" {
			o.Set("fp", v.Fingerprint)
		}
	} else {
		o.Set("tls", "")
	}

	switch v.Network {
	case "ws", "http":
		o.Set("host", firstOf(v.HTTP.Host, sni, v.Server))
		o.Set("path", firstOf(v.HTTP.Path, "/"))
		if !v.TLS {
			o.Set("type", v.Network)
		}
	case "tcp":
		if !v.TLS {
			o.Set("type", "none")
		}
	case "grpc":
		if v.GRPCServiceName != "" {
			o.Set("serviceName", v.GRPCServiceName)
		}
		o.Set("type", "grpc")
	}

	// "type" only survives where it adds information.
	if t, ok := o.Get("type"); ok && (t == "none" || (t == v.Network && !v.TLS)) {
		o.Delete("type")
	}

	o.Set("tfo", flag(v.TFO))
	o.Set("udp", flag(v.UDP))

	return o.MarshalJSON()
}

// rawOr prefers the record's own value; fallback covers an absent field and
// a VMess built by hand.
func rawOr(raw Value, fallback string) interface{} {
	if raw.raw == nil {
		return fallback
	}
	return raw
}

// Link encodes the payload. DecodeVMess has already checked that it marshals.
func (v *VMess) Link() Link {
	payload, _ := v.Payload()
	return Link{
		Kind: KindVMess,
		Name: v.Name,
		URI:  KindVMess.Scheme() + b64.Encode(string(payload)),
	}
}
