package xray

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xtls/xray-core/infra/conf"

	"proxylink/internal/clash"
	"proxylink/internal/xray/parser"
)

// ErrNoOutbound is returned for kinds xray-core has no outbound for.
var ErrNoOutbound = errors.New("no xray outbound for protocol")

// ToOutbound converts a share link into an Xray outbound config.
func ToOutbound(raw string) (*conf.OutboundDetourConfig, error) {
	p, err := parser.Parse(raw)
	if err != nil {
		return nil, err
	}
	return ProfileOutbound(p)
}

// ProfileOutbound builds the outbound for an already parsed profile.
func ProfileOutbound(p *parser.Profile) (*conf.OutboundDetourConfig, error) {
	var protocol string
	var settings json.RawMessage

	switch p.Protocol {
	case clash.KindVMess:
		protocol = "vmess"
		settings = buildVMess(p)
	case clash.KindVLESS:
		protocol = "vless"
		settings = buildVLESS(p)
	case clash.KindTrojan:
		protocol = "trojan"
		settings = buildTrojan(p)
	case clash.KindShadowsocks:
		protocol = "shadowsocks"
		settings = buildShadowsocks(p)
	case clash.KindHysteria2:
		protocol = "hysteria2"
		settings = buildHysteria2(p)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNoOutbound, p.Protocol)
	}

	return &conf.OutboundDetourConfig{
		Tag:           "proxy",
		Protocol:      protocol,
		Settings:      &settings,
		StreamSetting: buildStreamSettings(p),
	}, nil
}

// Verify parses raw and builds its outbound through xray-core, which applies
// the same validation a running client would.
func Verify(raw string) error {
	out, err := ToOutbound(raw)
	if err != nil {
		return err
	}
	if _, err := out.Build(); err != nil {
		return fmt.Errorf("xray rejected outbound: %w", err)
	}
	return nil
}

// --- JSON Builders ---

func buildVMess(p *parser.Profile) json.RawMessage {
	return jsonRaw(map[string]interface{}{
		"vnext": []interface{}{
			map[string]interface{}{
				"address": p.Address,
				"port":    p.Port,
				"users": []interface{}{
					map[string]interface{}{
						"id":       p.Password,
						"alterId":  p.AlterID,
						"security": p.Method,
					},
				},
			},
		},
	})
}

func buildVLESS(p *parser.Profile) json.RawMessage {
	return jsonRaw(map[string]interface{}{
		"vnext": []interface{}{
			map[string]interface{}{
				"address": p.Address,
				"port":    p.Port,
				"users": []interface{}{
					map[string]interface{}{
						"id":         p.Password,
						"encryption": p.Method,
						"flow":       p.Flow,
					},
				},
			},
		},
	})
}

func buildTrojan(p *parser.Profile) json.RawMessage {
	return jsonRaw(map[string]interface{}{
		"servers": []interface{}{
			map[string]interface{}{
				"address":  p.Address,
				"port":     p.Port,
				"password": p.Password,
				"flow":     p.Flow,
			},
		},
	})
}

func buildShadowsocks(p *parser.Profile) json.RawMessage {
	return jsonRaw(map[string]interface{}{
		"servers": []interface{}{
			map[string]interface{}{
				"address":  p.Address,
				"port":     p.Port,
				"method":   p.Method,
				"password": p.Password,
			},
		},
	})
}

func buildHysteria2(p *parser.Profile) json.RawMessage {
	settings := map[string]interface{}{
		"address": p.Address,
		"port":    p.Port,
		"auth":    p.Password,
	}
	if p.Obfs != "" {
		settings["obfs"] = map[string]interface{}{
			"type": p.Obfs, // "salamander"
			"salamander": map[string]interface{}{
				"password": p.ObfsParam,
			},
		}
	}
	return jsonRaw(settings)
}

func buildStreamSettings(p *parser.Profile) *conf.StreamConfig {
	network := p.Network
	if network == "" {
		network = "tcp"
	}

	security := p.Security
	if security == "" && p.Protocol == clash.KindHysteria2 {
		security = "tls"
	}

	sc := &conf.StreamConfig{
		Network:  (*conf.TransportProtocol)(&network),
		Security: security,
	}

	// TLS / REALITY
	switch security {
	case "tls":
		sc.TLSSettings = &conf.TLSConfig{
			ServerName:  p.SNI,
			Fingerprint: p.Fingerprint,
			Insecure:    p.Insecure,
		}
		if len(p.ALPN) > 0 {
			sc.TLSSettings.ALPN = &conf.StringList{}
			*sc.TLSSettings.ALPN = append(*sc.TLSSettings.ALPN, p.ALPN...)
		}
	case "reality":
		sc.REALITYSettings = &conf.REALITYConfig{
			Fingerprint: p.Fingerprint,
			ServerName:  p.SNI,
			PublicKey:   p.Pbk,
			ShortId:     p.Sid,
			SpiderX:     p.SpiderX,
		}
	}

	// Transports
	switch network {
	case "ws":
		sc.WSSettings = &conf.WebSocketConfig{
			Path: p.Path,
			Headers: map[string]string{
				"Host": p.Host,
			},
		}
	case "grpc":
		sc.GRPCSettings = &conf.GRPCConfig{
			ServiceName: p.ServiceName,
		}
		if p.Mode == "multi" {
			sc.GRPCSettings.MultiMode = true
		}
	case "tcp":
		if p.HeaderType == "http" {
			sc.TCPSettings = &conf.TCPConfig{
				HeaderConfig: jsonRaw(map[string]interface{}{
					"type": "http",
					"request": map[string]interface{}{
						"headers": map[string]interface{}{
							"Host": []string{p.Host},
						},
						"path": []string{firstNonEmpty(p.Path, "/")},
					},
				}),
			}
		}
	}

	return sc
}

// --- Internal Helper Functions ---

func jsonRaw(v interface{}) json.RawMessage {
	b, _ := json.Marshal(v)
	return json.RawMessage(b)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
