package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// CalculateHash generates a unique identifier for the proxy configuration.
// Remarks are excluded, so renamed copies of one server share a hash.
func (p *Profile) CalculateHash() string {
	var parts []string

	// --- 1. Basic Protocol & Endpoint ---
	parts = append(parts, string(p.Protocol))
	parts = append(parts, strings.ToLower(p.Address))
	parts = append(parts, fmt.Sprintf("%d", p.Port))

	// --- 2. Authentication ---
	parts = append(parts, p.Password)

	// "none", "auto", or empty often mean the same thing depending on context.
	method := strings.ToLower(p.Method)
	if (p.Protocol == "vless" && method == "none") || (p.Protocol == "vmess" && method == "auto") {
		method = ""
	}
	parts = append(parts, method)
	parts = append(parts, p.SSRProtocol, p.ProtocolParam)

	// --- 3. Transport Specifics (Normalization is CRITICAL here) ---

	// Network: Empty implies "tcp"
	net := strings.ToLower(p.Network)
	if net == "" {
		net = "tcp"
	}
	parts = append(parts, net)

	// HeaderType: "none" implies empty/default
	header := strings.ToLower(p.HeaderType)
	if header == "none" {
		header = ""
	}
	parts = append(parts, header)

	// Security: "none" implies empty
	security := strings.ToLower(p.Security)
	if security == "none" {
		security = ""
	}
	parts = append(parts, security)

	parts = append(parts, p.Path)
	parts = append(parts, p.Mode)
	parts = append(parts, p.ServiceName)
	parts = append(parts, p.QuicSecurity, p.QuicKey)

	// --- 4. Advanced Protocol Specifics ---
	parts = append(parts, p.Flow)
	parts = append(parts, p.Obfs)
	parts = append(parts, p.ObfsParam)

	// Reality keys are case-sensitive usually, but let's keep them as is.
	parts = append(parts, p.Pbk)
	parts = append(parts, p.Sid)

	signature := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(signature))
	return hex.EncodeToString(hash[:])
}
