package clash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHysteriaMinimal(t *testing.T) {
	l, err := Encode(Record{"type": "hysteria", "server": "hy.example.com", "port": 443, "auth_str": "token"})
	require.NoError(t, err)
	assert.Equal(t, "hysteria://hy.example.com:443?auth=token", l.URI)
}

func TestHysteriaFull(t *testing.T) {
	l, err := Encode(Record{
		"type":             "hysteria",
		"name":             "hy",
		"server":           "hy.example.com",
		"port":             443,
		"auth_str":         "token",
		"peerCA":           "CA",
		"skip-cert-verify": true,
		"alpn":             []interface{}{"h3"},
		"upmbps":           0,
		"downmbps":         100,
		"obfs":             "xplus",
		"obfs-param":       "secret",
	})
	require.NoError(t, err)
	assert.Equal(t,
		"hysteria://hy.example.com:443?auth=token&peerCA=Q0E&insecure=1&alpn=h3&upmbps=0&downmbps=100&obfs=xplus&obfs-param=secret#hy",
		l.URI)
}

func TestHysteriaAuthPriority(t *testing.T) {
	p, err := DecodeHysteria(Record{"type": "hysteria", "server": "s", "port": 1, "password": "p", "auth": "a", "auth_str": "x"})
	require.NoError(t, err)
	assert.Equal(t, "p", p.Auth)

	p, err = DecodeHysteria(Record{"type": "hysteria", "server": "s", "port": 1, "password": "", "auth": "a", "auth_str": "x"})
	require.NoError(t, err)
	assert.Equal(t, "a", p.Auth)
}

func TestHysteriaEmptyALPNList(t *testing.T) {
	l, err := Encode(Record{"type": "hysteria", "server": "s", "port": 1, "auth": "a", "alpn": []interface{}{}})
	require.NoError(t, err)
	assert.Equal(t, "hysteria://s:1?auth=a&alpn=", l.URI)
}

func TestHysteriaMissingAuth(t *testing.T) {
	_, err := Encode(Record{"type": "hysteria", "server": "s", "port": 1, "password": false})
	var mf *MissingFieldsError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, []string{"password|auth|auth_str"}, mf.Fields)
}

func TestHysteria2(t *testing.T) {
	l, err := Encode(Record{
		"type":       "hy2",
		"name":       "节点 1",
		"server":     "hy2.example.com",
		"port":       8443,
		"password":   "pass word",
		"alpn":       []interface{}{"h3", "h2"},
		"insecure":   true,
		"obfs":       "salamander",
		"obfs-param": "o",
	})
	require.NoError(t, err)
	assert.Equal(t, KindHysteria2, l.Kind)
	assert.Equal(t,
		"hysteria2://hy2.example.com:8443?password=pass+word&sni=hy2.example.com&insecure=1&alpn=h3%2Ch2&obfs=salamander&obfs-param=o#%E8%8A%82%E7%82%B9%201",
		l.URI)
}

func TestHysteria2SNIFallback(t *testing.T) {
	l, err := Encode(Record{"type": "hysteria2", "server": "s", "port": 1, "password": "p", "servername": "n.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "hysteria2://s:1?password=p&sni=n.example.com", l.URI)

	_, err = Encode(Record{"type": "hysteria2", "server": "s", "port": 1})
	require.ErrorIs(t, err, ErrMissingField)
}
