package parser

import "proxylink/internal/clash"

// Profile represents a normalized proxy configuration derived from a share link.
// It is the reverse of clash.Link: verify and the archive read links through it.
type Profile struct {
	Protocol clash.Kind
	RawURI   string
	Remarks  string

	// Connection Details
	Address string
	Port    int

	// Authentication
	Password string // UUID, password or hysteria auth
	Method   string // Encryption method (SS/SSR cipher, VMess scy, VLESS encryption)
	AlterID  int

	// ShadowsocksR Specifics
	SSRProtocol   string
	ProtocolParam string

	// Obfuscation (SSR obfs, Hysteria/Hysteria2 obfs)
	Obfs      string
	ObfsParam string

	// Hysteria Specifics
	PeerCA      string // decoded
	UpMbps      string
	DownMbps    string
	PortHopping string // mport

	// Transport (StreamSettings)
	Network      string // tcp, ws, http, grpc, quic, h2, httpupgrade
	HeaderType   string // none, http, srtp, etc
	Host         string // Request Host
	Path         string // WS/HTTP Path
	QuicSecurity string
	QuicKey      string
	Mode         string // GRPC mode (gun, multi)
	ServiceName  string // GRPC ServiceName
	Authority    string // GRPC Authority

	// Security (TLS/REALITY)
	Security    string // tls, reality, none
	Insecure    bool   // AllowInsecure
	SNI         string
	Fingerprint string   // fp
	ALPN        []string // alpn

	// REALITY Specifics
	Pbk     string // PublicKey
	Sid     string // ShortId
	SpiderX string // spx
	Flow    string // xtls-rprx-vision

	TFO bool
	UDP bool
}
