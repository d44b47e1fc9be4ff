package clash

// HTTPOptions is the part of ws-opts (or http-opts) the stream encoders read.
type HTTPOptions struct {
	Host string // headers.Host
	Path string
}

// decodeHTTPOptions reads ws-opts, falling back to http-opts when ws-opts is unset.
func decodeHTTPOptions(r Record) HTTPOptions {
	opts := r.Sub("http-opts")
	if r.Truthy("ws-opts") {
		opts = r.Sub("ws-opts")
	}
	return HTTPOptions{
		Host: opts.Sub("headers").Text("Host"),
		Path: opts.Text("path"),
	}
}

// firstOf returns the first non-empty value.
func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
