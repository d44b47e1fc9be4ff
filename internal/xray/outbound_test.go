package xray

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xtls/xray-core/infra/conf"
)

func TestToOutbound(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantErr  error
		validate func(*testing.T, map[string]interface{}, *outboundView)
	}{
		{
			name: "trojan over ws",
			raw:  "trojan://pw@t.example.com:443?sni=sni.example.com&allowInsecure=1&type=ws&host=cdn.example.com&path=%2Fws",
			validate: func(t *testing.T, settings map[string]interface{}, o *outboundView) {
				assert.Equal(t, "trojan", o.Protocol)
				assert.Equal(t, "ws", o.Network)
				assert.Equal(t, "tls", o.Security)
				assert.Equal(t, "sni.example.com", o.ServerName)
				assert.True(t, o.Insecure)
				assert.Equal(t, "/ws", o.WSPath)
				assert.Equal(t, "cdn.example.com", o.WSHost)
				server := settings["servers"].([]interface{})[0].(map[string]interface{})
				assert.Equal(t, "pw", server["password"])
			},
		},
		{
			name: "vless reality grpc",
			raw:  "vless://u@s:443?type=grpc&security=reality&sni=sni.example&pbk=pbk&sid=sid&mode=multi&serviceName=svc",
			validate: func(t *testing.T, settings map[string]interface{}, o *outboundView) {
				assert.Equal(t, "vless", o.Protocol)
				assert.Equal(t, "reality", o.Security)
				assert.Equal(t, "pbk", o.RealityPublicKey)
				assert.True(t, o.GRPCMulti)
				assert.Equal(t, "svc", o.GRPCServiceName)
			},
		},
		{
			name: "shadowsocks",
			raw:  "ss://YWVzLTI1Ni1nY206cHc=@1.2.3.4:8388#node1",
			validate: func(t *testing.T, settings map[string]interface{}, o *outboundView) {
				assert.Equal(t, "shadowsocks", o.Protocol)
				assert.Equal(t, "tcp", o.Network)
				server := settings["servers"].([]interface{})[0].(map[string]interface{})
				assert.Equal(t, "aes-256-gcm", server["method"])
				assert.EqualValues(t, 8388, server["port"])
			},
		},
		{
			name: "hysteria2 obfs",
			raw:  "hysteria2://h.example.com:443?password=p&obfs=salamander&obfs-param=o",
			validate: func(t *testing.T, settings map[string]interface{}, o *outboundView) {
				assert.Equal(t, "hysteria2", o.Protocol)
				assert.Equal(t, "tls", o.Security)
				assert.Equal(t, "p", settings["auth"])
				assert.Equal(t, "salamander", settings["obfs"].(map[string]interface{})["type"])
			},
		},
		{name: "ssr has no outbound", raw: "ssr://MS4yLjMuNDo0NDM6b3JpZ2luOnJjNC1tZDU6cGxhaW46Y0hjLw", wantErr: ErrNoOutbound},
		{name: "hysteria has no outbound", raw: "hysteria://h:443?auth=a", wantErr: ErrNoOutbound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ToOutbound(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, out.Settings)

			var settings map[string]interface{}
			require.NoError(t, json.Unmarshal(*out.Settings, &settings))
			tt.validate(t, settings, view(out))
		})
	}
}

func TestVerify(t *testing.T) {
	assert.NoError(t, Verify("trojan://pw@t.example.com:443?sni=t.example.com&type=tcp#t"))
	assert.Error(t, Verify("trojan://pw@t.example.com:notaport"))
	assert.ErrorIs(t, Verify("hysteria://h:443?auth=a"), ErrNoOutbound)
}

// outboundView flattens the stream settings the tests look at.
type outboundView struct {
	Protocol         string
	Network          string
	Security         string
	ServerName       string
	Insecure         bool
	WSPath           string
	WSHost           string
	RealityPublicKey string
	GRPCMulti        bool
	GRPCServiceName  string
}

func view(o *conf.OutboundDetourConfig) *outboundView {
	v := &outboundView{Protocol: o.Protocol}
	sc := o.StreamSetting
	if sc == nil {
		return v
	}
	if sc.Network != nil {
		v.Network = string(*sc.Network)
	}
	v.Security = sc.Security
	if sc.TLSSettings != nil {
		v.ServerName = sc.TLSSettings.ServerName
		v.Insecure = sc.TLSSettings.Insecure
	}
	if sc.REALITYSettings != nil {
		v.RealityPublicKey = sc.REALITYSettings.PublicKey
	}
	if sc.WSSettings != nil {
		v.WSPath = sc.WSSettings.Path
		v.WSHost = sc.WSSettings.Headers["Host"]
	}
	if sc.GRPCSettings != nil {
		v.GRPCMulti = sc.GRPCSettings.MultiMode
		v.GRPCServiceName = sc.GRPCSettings.ServiceName
	}
	return v
}
