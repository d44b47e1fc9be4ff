package parser

import (
	"strings"

	"proxylink/internal/clash"
)

// ToRecord maps the profile back onto the YAML proxy-list keys that
// clash.Encode reads. Encoding the result reproduces a link equivalent to
// RawURI, which is how verify checks that a link survives a round trip.
func (p *Profile) ToRecord() clash.Record {
	r := clash.Record{
		"type":   string(p.Protocol),
		"server": p.Address,
		"port":   p.Port,
	}
	setString(r, "name", p.Remarks)

	switch p.Protocol {
	case clash.KindVMess:
		r["uuid"] = p.Password
		r["alterId"] = p.AlterID
		setString(r, "cipher", p.Method)
		setString(r, "network", p.Network)
		if p.Security == "tls" {
			r["tls"] = true
			setString(r, "servername", p.SNI)
			setString(r, "client-fingerprint", p.Fingerprint)
		}
		p.setHTTPOpts(r)
		if p.ServiceName != "" {
			r["grpc-opts"] = map[string]interface{}{"serviceName": p.ServiceName}
		}
		setFlags(r, p.TFO, p.UDP)

	case clash.KindTrojan:
		r["password"] = p.Password
		setString(r, "sni", p.SNI)
		setBool(r, "skip-cert-verify", p.Insecure)
		setString(r, "client-fingerprint", p.Fingerprint)
		setString(r, "flow", p.Flow)
		setString(r, "network", p.Network)
		p.setHTTPOpts(r)
		if p.ServiceName != "" {
			r["grpc-opts"] = map[string]interface{}{"serviceName": p.ServiceName}
		}
		setFlags(r, p.TFO, p.UDP)

	case clash.KindVLESS:
		p.fillVLESS(r)

	case clash.KindShadowsocks:
		r["cipher"] = p.Method
		r["password"] = p.Password
		setString(r, "network", p.Network)
		if p.Security == "tls" {
			r["tls"] = true
			setString(r, "sni", p.SNI)
			setString(r, "client-fingerprint", p.Fingerprint)
			setBool(r, "skip-cert-verify", p.Insecure)
		}
		p.setHTTPOpts(r)
		if p.ServiceName != "" {
			r["grpc-opts"] = map[string]interface{}{"serviceName": p.ServiceName}
		}
		setFlags(r, p.TFO, p.UDP)

	case clash.KindShadowsocksR:
		r["protocol"] = p.SSRProtocol
		r["cipher"] = p.Method
		r["obfs"] = p.Obfs
		r["password"] = p.Password
		setString(r, "obfs-param", p.ObfsParam)
		setString(r, "protocol-param", p.ProtocolParam)

	case clash.KindHysteria:
		r["auth"] = p.Password
		setString(r, "peerCA", p.PeerCA)
		setBool(r, "skip-cert-verify", p.Insecure)
		p.setALPN(r)
		setString(r, "upmbps", p.UpMbps)
		setString(r, "downmbps", p.DownMbps)
		setString(r, "obfs", p.Obfs)
		setString(r, "obfs-param", p.ObfsParam)

	case clash.KindHysteria2:
		r["password"] = p.Password
		setString(r, "sni", p.SNI)
		setBool(r, "skip-cert-verify", p.Insecure)
		p.setALPN(r)
		setString(r, "obfs", p.Obfs)
		setString(r, "obfs-param", p.ObfsParam)
	}

	return r
}

func (p *Profile) fillVLESS(r clash.Record) {
	r["uuid"] = p.Password
	if p.Network != "" && p.Network != "tcp" {
		r["network"] = p.Network
	}

	switch p.Security {
	case "reality":
		r["security"] = "reality"
		setString(r, "servername", p.SNI)
		setString(r, "client-fingerprint", p.Fingerprint)
		r["reality-opts"] = map[string]interface{}{
			"public-key": p.Pbk,
			"short-id":   p.Sid,
		}
	case "tls":
		r["tls"] = true
		setString(r, "servername", p.SNI)
		p.setALPN(r)
		setString(r, "client-fingerprint", p.Fingerprint)
		setBool(r, "skip-cert-verify", p.Insecure)
		setString(r, "flow", p.Flow)
	}

	switch p.Network {
	case "", "tcp":
		if p.HeaderType != "" {
			r["tcp-opts"] = map[string]interface{}{
				"header": map[string]interface{}{"type": p.HeaderType},
			}
		}
	case "ws":
		p.setHTTPOpts(r)
	case "grpc":
		r["grpc-opts"] = map[string]interface{}{
			"grpc-service-name": p.ServiceName,
			"grpc-mode":         p.Mode,
		}
	case "quic":
		r["quic-opts"] = map[string]interface{}{
			"security": p.QuicSecurity,
			"key":      p.QuicKey,
			"header":   map[string]interface{}{"type": p.HeaderType},
		}
	case "httpupgrade":
		r["httpupgrade-opts"] = map[string]interface{}{
			"host": p.Host,
			"path": p.Path,
		}
	case "h2":
		opts := map[string]interface{}{"path": p.Path}
		if p.Host != "" {
			opts["host"] = toList(strings.Split(p.Host, ","))
		}
		r["h2-opts"] = opts
	}
	if p.TFO {
		r["tfo"] = true
	}
}

// setHTTPOpts writes host and path under ws-opts (http-opts for the http network).
func (p *Profile) setHTTPOpts(r clash.Record) {
	if p.Host == "" && p.Path == "" {
		return
	}
	opts := map[string]interface{}{}
	if p.Path != "" {
		opts["path"] = p.Path
	}
	if p.Host != "" {
		opts["headers"] = map[string]interface{}{"Host": p.Host}
	}
	key := "ws-opts"
	if p.Network == "http" {
		key = "http-opts"
	}
	r[key] = opts
}

func (p *Profile) setALPN(r clash.Record) {
	if len(p.ALPN) > 0 {
		r["alpn"] = toList(p.ALPN)
	}
}

func toList(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func setString(r clash.Record, key, value string) {
	if value != "" {
		r[key] = value
	}
}

func setBool(r clash.Record, key string, value bool) {
	if value {
		r[key] = true
	}
}

func setFlags(r clash.Record, tfo, udp bool) {
	setBool(r, "tfo", tfo)
	setBool(r, "udp", udp)
}
