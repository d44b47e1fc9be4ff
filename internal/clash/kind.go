package clash

// Kind is the value of a record's "type" discriminant.
type Kind string

const (
	KindVMess        Kind = "vmess"
	KindTrojan       Kind = "trojan"
	KindVLESS        Kind = "vless"
	KindShadowsocks  Kind = "ss"
	KindShadowsocksR Kind = "ssr"
	KindHysteria     Kind = "hysteria"
	KindHysteria2    Kind = "hysteria2"
)

// Kinds lists every supported kind in dispatch order.
var Kinds = []Kind{
	KindVMess,
	KindTrojan,
	KindVLESS,
	KindShadowsocks,
	KindShadowsocksR,
	KindHysteria2,
	KindHysteria,
}

// ParseKind matches s exactly (case-sensitive). "hy2" is an alias of hysteria2.
func ParseKind(s string) (Kind, bool) {
	if s == "hy2" {
		return KindHysteria2, true
	}
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Scheme is the URI scheme emitted for the kind.
func (k Kind) Scheme() string {
	return string(k) + "://"
}
