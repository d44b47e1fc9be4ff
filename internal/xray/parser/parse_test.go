package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proxylink/internal/clash"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantErr  bool
		validate func(*testing.T, *Profile)
	}{
		{
			name: "trojan with escaped password",
			raw:  "trojan://p%40ss%20word@1.2.3.4:8443?sni=tls.example.com&allowInsecure=1&type=ws&host=cdn.example.com&path=%2Ft#jp%2001",
			validate: func(t *testing.T, p *Profile) {
				assert.Equal(t, clash.KindTrojan, p.Protocol)
				assert.Equal(t, "p@ss word", p.Password)
				assert.Equal(t, "1.2.3.4", p.Address)
				assert.Equal(t, 8443, p.Port)
				assert.Equal(t, "jp 01", p.Remarks)
				assert.Equal(t, "tls", p.Security)
				assert.True(t, p.Insecure)
				assert.Equal(t, "ws", p.Network)
				assert.Equal(t, "/t", p.Path)
			},
		},
		{
			name: "vless double encoded params",
			raw:  "vless://u@s:443?type=grpc&security=tls&alpn=h2%252Chttp%252F1.1&mode=multi&serviceName=svc%2520name",
			validate: func(t *testing.T, p *Profile) {
				assert.Equal(t, clash.KindVLESS, p.Protocol)
				assert.Equal(t, "none", p.Method)
				assert.Equal(t, []string{"h2", "http/1.1"}, p.ALPN)
				assert.Equal(t, "multi", p.Mode)
				assert.Equal(t, "svc name", p.ServiceName)
			},
		},
		{
			name: "vmess base64 json",
			raw:  "vmess://eyJ2IjoiMiIsInBzIjoiaGsiLCJhZGQiOiJ2LmV4YW1wbGUuY29tIiwicG9ydCI6IjQ0MyIsImlkIjoiaWQiLCJhaWQiOjY0LCJzY3kiOiJhdXRvIiwibmV0IjoiZ3JwYyIsInRscyI6InRscyIsInNuaSI6InYuZXhhbXBsZS5jb20iLCJzZXJ2aWNlTmFtZSI6InN2YyIsInR5cGUiOiJncnBjIiwidGZvIjoiMCIsInVkcCI6IjEifQ==",
			validate: func(t *testing.T, p *Profile) {
				assert.Equal(t, clash.KindVMess, p.Protocol)
				assert.Equal(t, "hk", p.Remarks)
				assert.Equal(t, 443, p.Port)
				assert.Equal(t, 64, p.AlterID)
				assert.Equal(t, "grpc", p.Network)
				assert.Equal(t, "svc", p.ServiceName)
				assert.Empty(t, p.Mode)
				assert.False(t, p.TFO)
				assert.True(t, p.UDP)
			},
		},
		{
			name: "shadowsocks base64 userinfo with slash",
			raw:  "ss://YWVzLTI1Ni1nY206cD8/Pg==@1.2.3.4:8388#node",
			validate: func(t *testing.T, p *Profile) {
				assert.Equal(t, clash.KindShadowsocks, p.Protocol)
				assert.Equal(t, "aes-256-gcm", p.Method)
				assert.Equal(t, "p??>", p.Password)
				assert.Equal(t, 8388, p.Port)
				assert.Equal(t, "node", p.Remarks)
			},
		},
		{
			name: "shadowsocks plain userinfo",
			raw:  "ss://2022-blake3-aes-128-gcm:abc%3D@[2001:db8::1]:443",
			validate: func(t *testing.T, p *Profile) {
				assert.Equal(t, "2022-blake3-aes-128-gcm", p.Method)
				assert.Equal(t, "abc=", p.Password)
				assert.Equal(t, "2001:db8::1", p.Address)
			},
		},
		{
			name: "shadowsocks legacy form",
			raw:  "ss://YWVzLTEyOC1nY206cHdAMS4yLjMuNDo4Mzg4",
			validate: func(t *testing.T, p *Profile) {
				assert.Equal(t, "aes-128-gcm", p.Method)
				assert.Equal(t, "pw", p.Password)
				assert.Equal(t, "1.2.3.4", p.Address)
			},
		},
		{
			name: "shadowsocks obfs plugin",
			raw:  "ss://YWVzLTEyOC1nY206cHc@1.2.3.4:8388/?plugin=obfs-local%3Bobfs%3Dhttp%3Bobfs-host%3Dexample.com",
			validate: func(t *testing.T, p *Profile) {
				assert.Equal(t, "http", p.HeaderType)
				assert.Equal(t, "example.com", p.Host)
			},
		},
		{
			name: "shadowsocksr",
			raw:  "ssr://MS4yLjMuNDo0NDM6YXV0aF9hZXMxMjhfbWQ1OmFlcy0yNTYtY2ZiOnRsczEuMl90aWNrZXRfYXV0aDpjSGMvP29iZnNwYXJhbT1iMkptY3k1bGVHRnRjR3hsTG1OdmJRJnByb3RvcGFyYW09TXpJNllXSmo#ssr%20node",
			validate: func(t *testing.T, p *Profile) {
				assert.Equal(t, clash.KindShadowsocksR, p.Protocol)
				assert.Equal(t, "1.2.3.4", p.Address)
				assert.Equal(t, 443, p.Port)
				assert.Equal(t, "auth_aes128_md5", p.SSRProtocol)
				assert.Equal(t, "aes-256-cfb", p.Method)
				assert.Equal(t, "tls1.2_ticket_auth", p.Obfs)
				assert.Equal(t, "pw", p.Password)
				assert.Equal(t, "obfs.example.com", p.ObfsParam)
				assert.Equal(t, "32:abc", p.ProtocolParam)
				assert.Equal(t, "ssr node", p.Remarks)
			},
		},
		{
			name: "hysteria",
			raw:  "hysteria://hy.example.com:443?auth=token&peerCA=Q0E&insecure=1&alpn=h3&upmbps=0&downmbps=100&obfs=xplus&obfs-param=secret#hy",
			validate: func(t *testing.T, p *Profile) {
				assert.Equal(t, clash.KindHysteria, p.Protocol)
				assert.Equal(t, "token", p.Password)
				assert.Equal(t, "CA", p.PeerCA)
				assert.True(t, p.Insecure)
				assert.Equal(t, "0", p.UpMbps)
				assert.Equal(t, "100", p.DownMbps)
				assert.Equal(t, "xplus", p.Obfs)
				assert.Equal(t, "secret", p.ObfsParam)
			},
		},
		{
			name: "hysteria2 userinfo form",
			raw:  "hy2://secret@hy2.example.com:443?obfs-password=o&mport=1000-2000#x",
			validate: func(t *testing.T, p *Profile) {
				assert.Equal(t, clash.KindHysteria2, p.Protocol)
				assert.Equal(t, "secret", p.Password)
				assert.Equal(t, "salamander", p.Obfs)
				assert.Equal(t, "o", p.ObfsParam)
				assert.Equal(t, "1000-2000", p.PortHopping)
			},
		},
		{
			name: "hysteria2 query password",
			raw:  "hysteria2://hy2.example.com:8443?password=pass+word&sni=hy2.example.com",
			validate: func(t *testing.T, p *Profile) {
				assert.Equal(t, "pass word", p.Password)
				assert.Equal(t, "hy2.example.com", p.SNI)
			},
		},
		{name: "no scheme", raw: "example.com:443", wantErr: true},
		{name: "unsupported scheme", raw: "socks5://1.2.3.4:1080", wantErr: true},
		{name: "vmess garbage", raw: "vmess://!!!!", wantErr: true},
		{name: "ssr too few fields", raw: "ssr://MS4yLjMuNDo0NDM", wantErr: true},
		{name: "shadowsocks without port", raw: "ss://YWVzLTEyOC1nY206cHc@1.2.3.4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, p)
			}
		})
	}
}

// Links produced by clash.Encode must come back unchanged through
// Parse, ToRecord and Encode.
func TestRoundTrip(t *testing.T) {
	records := []clash.Record{
		{"type": "trojan", "name": "jp 01", "server": "1.2.3.4", "port": 8443, "password": "p@ss word",
			"sni": "tls.example.com", "skip-cert-verify": true, "network": "ws", "flow": "xtls-rprx-direct",
			"ws-opts":            map[string]interface{}{"path": "/t", "headers": map[string]interface{}{"Host": "cdn.example.com"}},
			"client-fingerprint": "firefox", "tfo": true, "udp": true},
		{"type": "vmess", "name": "hk <1>", "server": "v.example.com", "port": 443, "uuid": "id", "tls": true,
			"servername": "sni.example.com", "network": "ws", "ws-opts": map[string]interface{}{"path": "/v"}, "udp": true},
		{"type": "vmess", "server": "v.example.com", "port": 80, "uuid": "id"},
		{"type": "vless", "name": "my node", "uuid": "u", "server": "s", "port": 443, "tls": true,
			"servername": "a.example.com", "alpn": []interface{}{"h2", "http/1.1"}, "client-fingerprint": "chrome",
			"skip-cert-verify": true, "flow": "xtls-rprx-vision", "tfo": true},
		{"type": "vless", "uuid": "u", "server": "s", "port": 443, "security": "reality", "servername": "sni.example",
			"reality-opts": map[string]interface{}{"public-key": "pbk", "short-id": "sid"}},
		{"type": "vless", "uuid": "u", "server": "s", "port": 443, "network": "grpc",
			"grpc-opts": map[string]interface{}{"grpc-service-name": "svc name", "grpc-mode": "multi"}},
		{"type": "vless", "uuid": "u", "server": "s", "port": 443, "network": "h2", "tls": true,
			"h2-opts": map[string]interface{}{"host": []interface{}{"a.com", "b.com"}, "path": "/p"}},
		{"type": "vless", "uuid": "u", "server": "s", "port": 443, "network": "quic",
			"quic-opts": map[string]interface{}{"security": "aes-128-gcm", "key": "k", "header": map[string]interface{}{"type": "srtp"}}},
		{"type": "ss", "server": "1.2.3.4", "port": 8388, "cipher": "aes-256-gcm", "password": "pw", "network": "ws",
			"tls": true, "servername": "cdn.example.com", "client-fingerprint": "chrome", "skip-cert-verify": true,
			"ws-opts": map[string]interface{}{"path": "/ray", "headers": map[string]interface{}{"Host": "h.example.com"}}, "udp": true},
		{"type": "ssr", "name": "ssr node", "server": "1.2.3.4", "port": 443, "protocol": "auth_aes128_md5",
			"cipher": "aes-256-cfb", "obfs": "tls1.2_ticket_auth", "password": "pw",
			"obfs-param": "obfs.example.com", "protocol-param": "32:abc"},
		{"type": "hysteria", "name": "hy", "server": "hy.example.com", "port": 443, "auth_str": "token", "peerCA": "CA",
			"skip-cert-verify": true, "alpn": []interface{}{"h3"}, "upmbps": 0, "downmbps": 100,
			"obfs": "xplus", "obfs-param": "secret"},
		{"type": "hysteria2", "name": "节点 1", "server": "hy2.example.com", "port": 8443, "password": "pass word",
			"alpn": []interface{}{"h3", "h2"}, "insecure": true, "obfs": "salamander", "obfs-param": "o"},
	}

	for _, r := range records {
		want, err := clash.Encode(r)
		require.NoError(t, err)

		t.Run(want.URI, func(t *testing.T) {
			p, err := Parse(want.URI)
			require.NoError(t, err)

			got, err := clash.Encode(p.ToRecord())
			require.NoError(t, err)
			assert.Equal(t, want.URI, got.URI)
		})
	}
}

func TestCalculateHash(t *testing.T) {
	a, err := Parse("trojan://pw@1.2.3.4:443?sni=example.com&type=tcp#first")
	require.NoError(t, err)
	b, err := Parse("trojan://pw@1.2.3.4:443?sni=example.com&type=tcp#renamed")
	require.NoError(t, err)
	c, err := Parse("trojan://pw@1.2.3.4:8443?sni=example.com&type=tcp#first")
	require.NoError(t, err)

	assert.Equal(t, a.CalculateHash(), b.CalculateHash())
	assert.NotEqual(t, a.CalculateHash(), c.CalculateHash())
	assert.Len(t, a.CalculateHash(), 64)

	v1, err := Parse("vless://u@S.example.com:443")
	require.NoError(t, err)
	v2, err := Parse("vless://u@s.example.com:443?encryption=none&security=none&type=tcp")
	require.NoError(t, err)
	assert.Equal(t, v1.CalculateHash(), v2.CalculateHash())
}

func TestParseVMessNumericFields(t *testing.T) {
	l, err := clash.Encode(clash.Record{"type": "vmess", "name": 123, "server": "v.example.com", "port": 443, "uuid": 7})
	require.NoError(t, err)

	p, err := Parse(l.URI)
	require.NoError(t, err)
	assert.Equal(t, "123", p.Remarks)
	assert.Equal(t, "v.example.com", p.Address)
	assert.Equal(t, "7", p.Password)
	assert.Equal(t, 443, p.Port)
}
