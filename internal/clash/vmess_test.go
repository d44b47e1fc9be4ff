package clash

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeVMessURI(t *testing.T, uri string) (string, map[string]interface{}) {
	t.Helper()
	require.True(t, strings.HasPrefix(uri, "vmess://"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "vmess://"))
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	return string(raw), m
}

func TestVMessMinimal(t *testing.T) {
	l, err := Encode(Record{"type": "vmess", "server": "s", "port": 443, "uuid": "u"})
	require.NoError(t, err)

	raw, _ := decodeVMessURI(t, l.URI)
	assert.Equal(t, `{"v":"2","ps":"","add":"s","port":443,"id":"u","aid":0,"scy":"auto","net":"tcp","tls":"","tfo":"0","udp":"0"}`, raw)
	assert.NotContains(t, l.URI, "#")
	assert.Empty(t, l.Warnings)
}

func TestVMessWebsocketTLS(t *testing.T) {
	l, err := Encode(Record{
		"type":               "vmess",
		"name":               "hk <1>",
		"server":             "v.example.com",
		"port":               "443",
		"uuid":               "id",
		"alterId":            64,
		"cipher":             "aes-128-gcm",
		"network":            "ws",
		"tls":                true,
		"servername":         "sni.example.com",
		"client-fingerprint": "chrome",
		"ws-opts":            map[string]interface{}{"path": "/v"},
		"udp":                true,
	})
	require.NoError(t, err)

	raw, _ := decodeVMessURI(t, l.URI)
	assert.Equal(t, `{"v":"2","ps":"hk <1>","add":"v.example.com","port":"443","id":"id","aid":64,"scy":"aes-128-gcm","net":"ws","tls":"tls","sni":"sni.example.com","fp":"chrome","host":"sni.example.com","path":"/v","tfo":"0","udp":"1"}`, raw)
	assert.Equal(t, "hk <1>", l.Name)
}

func TestVMessTypeField(t *testing.T) {
	tests := []struct {
		name     string
		record   Record
		wantType interface{}
	}{
		{
			name:   "ws without tls drops type",
			record: Record{"network": "ws"},
		},
		{
			name:   "tcp without tls drops none",
			record: Record{"network": "tcp"},
		},
		{
			name:   "grpc without tls drops type",
			record: Record{"network": "grpc"},
		},
		{
			name:     "grpc with tls keeps type",
			record:   Record{"network": "grpc", "tls": true},
			wantType: "grpc",
		},
		{
			name:   "http with tls never sets type",
			record: Record{"network": "http", "tls": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Record{"type": "vmess", "server": "s", "port": 1, "uuid": "u"}
			for k, v := range tt.record {
				r[k] = v
			}
			l, err := Encode(r)
			require.NoError(t, err)
			_, m := decodeVMessURI(t, l.URI)
			got, ok := m["type"]
			if tt.wantType == nil {
				assert.False(t, ok, "type should be absent, got %v", got)
				return
			}
			assert.Equal(t, tt.wantType, got)
		})
	}
}

func TestVMessHostFallback(t *testing.T) {
	base := Record{"type": "vmess", "server": "s.example.com", "port": 1, "uuid": "u", "network": "ws"}

	l, err := Encode(base)
	require.NoError(t, err)
	_, m := decodeVMessURI(t, l.URI)
	assert.Equal(t, "s.example.com", m["host"])
	assert.Equal(t, "/", m["path"])

	l, err = Encode(base.With("http-opts", map[string]interface{}{
		"headers": map[string]interface{}{"Host": "h.example.com"},
	}))
	require.NoError(t, err)
	_, m = decodeVMessURI(t, l.URI)
	assert.Equal(t, "h.example.com", m["host"])
}

func TestVMessGRPCServiceName(t *testing.T) {
	l, err := Encode(Record{
		"type": "vmess", "server": "s", "port": 1, "uuid": "u",
		"network": "grpc", "tls": true,
		"grpc-opts": map[string]interface{}{"serviceName": "svc"},
	})
	require.NoError(t, err)
	raw, _ := decodeVMessURI(t, l.URI)
	assert.Contains(t, raw, `"serviceName":"svc","type":"grpc"`)
}

func TestVMessPayloadHasNoForeignFields(t *testing.T) {
	l, err := Encode(Record{
		"type": "vmess", "server": "s", "port": 1, "uuid": "u",
		"network": "ws", "tls": true, "tfo": true,
		"skip-cert-verify": true, "password": "leak", "extra": "x",
	})
	require.NoError(t, err)

	_, m := decodeVMessURI(t, l.URI)
	allowed := map[string]bool{
		"v": true, "ps": true, "add": true, "port": true, "id": true, "aid": true,
		"scy": true, "net": true, "tls": true, "host": true, "path": true, "type": true,
		"serviceName": true, "sni": true, "fp": true, "tfo": true, "udp": true,
	}
	for k := range m {
		assert.True(t, allowed[k], "unexpected key %q", k)
	}
	assert.Equal(t, "1", m["tfo"])
}

func TestVMessRequiredFields(t *testing.T) {
	_, err := DecodeVMess(Record{"type": "vmess", "server": "s", "port": 0, "uuid": ""})
	require.ErrorIs(t, err, ErrMissingField)

	var mf *MissingFieldsError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, KindVMess, mf.Kind)
	assert.Equal(t, []string{"port", "uuid"}, mf.Fields)
	assert.Equal(t, "vmess: missing required fields: port, uuid", err.Error())
}

func TestVMessNonStringKeyMapping(t *testing.T) {
	records, err := ParseDocument([]byte("proxies:\n  - {type: vmess, name: a, server: s, port: 443, uuid: u, alterId: {1: 2}}\n"))
	require.NoError(t, err)

	links, err := ConvertAll(records)
	require.NoError(t, err)
	require.Len(t, links, 1)
	_, m := decodeVMessURI(t, links[0].URI)
	assert.Equal(t, map[string]interface{}{"1": 2.0}, m["aid"])

	l, err := Encode(Record{
		"type": "vmess", "server": "s", "uuid": "u",
		"port": []interface{}{map[interface{}]interface{}{1: 2}},
	})
	require.NoError(t, err)
	raw, _ := decodeVMessURI(t, l.URI)
	assert.Contains(t, raw, `"port":[{"1":2}]`)
}

func TestVMessNumericIdentityFields(t *testing.T) {
	l, err := Encode(Record{"type": "vmess", "name": 123, "server": 10, "port": 443, "uuid": 7})
	require.NoError(t, err)

	raw, _ := decodeVMessURI(t, l.URI)
	assert.Contains(t, raw, `"ps":123,"add":10,"port":443,"id":7,`)
	assert.Equal(t, "123", l.Name)
}
