package publishers

import (
	"strings"

	"proxylink/internal/b64"
	"proxylink/internal/clash"
	"proxylink/internal/logger"
	"proxylink/internal/xray/parser"
)

// GenerateSubscriptionPayload joins link URIs one per line. Params:
//
//	base64  bool  encode the whole body (the common subscription format)
//	dedupe  bool  drop links whose server configuration was already emitted
func GenerateSubscriptionPayload(links []clash.Link, config map[string]interface{}) (string, error) {
	dedupe, _ := config["dedupe"].(bool)

	seen := make(map[string]bool)
	lines := make([]string, 0, len(links))
	for _, l := range links {
		if dedupe {
			p, err := parser.Parse(l.URI)
			if err != nil {
				logger.Log.Debugf("⚠️ Publisher kept unparsable link %.20s...: %v", l.URI, err)
			} else {
				hash := p.CalculateHash()
				if seen[hash] {
					continue
				}
				seen[hash] = true
			}
		}
		lines = append(lines, l.URI)
	}

	finalText := strings.Join(lines, "\n")

	useBase64, _ := config["base64"].(bool)
	if useBase64 {
		return b64.Encode(finalText), nil
	}

	return finalText, nil
}
