package b64

import (
	"encoding/base64"
	"strings"
)

// Encode returns the standard, padded base64 form of s.
func Encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// EncodeURL returns the URL-safe form of s with padding stripped
// ('+' -> '-', '/' -> '_', no '=').
func EncodeURL(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

// Decode attempts standard and URL-safe alphabets, fixing missing padding.
func Decode(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	s = strings.TrimSpace(s)
	if n := len(s) % 4; n != 0 {
		s += strings.Repeat("=", 4-n)
	}

	b, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return string(b), nil
	}

	b, err = base64.URLEncoding.DecodeString(s)
	if err == nil {
		return string(b), nil
	}

	return "", err
}
