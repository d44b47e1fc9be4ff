package clash

import (
	"bytes"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// escapeComponent percent-encodes everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ).
// This is the escaping used for userinfo, host and fragment.
func escapeComponent(s string) string {
	return escape(s, func(c byte) bool {
		return isAlnum(c) || strings.IndexByte("-_.!~*'()", c) >= 0
	}, false)
}

// escapeForm is application/x-www-form-urlencoded: only A-Z a-z 0-9 * - . _ are
// kept and space becomes '+'. Note that '~' is escaped, unlike url.QueryEscape.
func escapeForm(s string) string {
	return escape(s, func(c byte) bool {
		return isAlnum(c) || strings.IndexByte("*-._", c) >= 0
	}, true)
}

func escape(s string, keep func(byte) bool, spacePlus bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case keep(c):
			b.WriteByte(c)
		case c == ' ' && spacePlus:
			b.WriteByte('+')
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
		}
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

// query is an insertion-ordered parameter list. Add appends; Set replaces the
// first occurrence in place and drops the rest.
type query struct {
	keys []string
	vals []string
}

func (q *query) Add(key, value string) {
	q.keys = append(q.keys, key)
	q.vals = append(q.vals, value)
}

func (q *query) Set(key, value string) {
	found := false
	keys, vals := q.keys[:0], q.vals[:0]
	for i, k := range q.keys {
		if k != key {
			keys = append(keys, k)
			vals = append(vals, q.vals[i])
			continue
		}
		if !found {
			found = true
			keys = append(keys, k)
			vals = append(vals, value)
		}
	}
	q.keys, q.vals = keys, vals
	if !found {
		q.Add(key, value)
	}
}

func (q *query) Has(key string) bool {
	for _, k := range q.keys {
		if k == key {
			return true
		}
	}
	return false
}

func (q *query) Encode() string {
	var b strings.Builder
	for i, k := range q.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escapeForm(k))
		b.WriteByte('=')
		b.WriteString(escapeForm(q.vals[i]))
	}
	return b.String()
}

// buildURI joins the parts, leaving out an empty query and an empty fragment.
func buildURI(base string, q *query, name string) string {
	uri := base
	if qs := q.Encode(); qs != "" {
		uri += "?" + qs
	}
	if name != "" {
		uri += "#" + escapeComponent(name)
	}
	return uri
}

// object is a JSON object that keeps key insertion order.
type object struct {
	keys []string
	vals map[string]interface{}
}

func newObject() *object {
	return &object{vals: make(map[string]interface{})}
}

func (o *object) Set(key string, v interface{}) {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

func (o *object) Get(key string) (interface{}, bool) {
	v, ok := o.vals[key]
	return v, ok
}

func (o *object) Delete(key string) {
	if _, ok := o.vals[key]; !ok {
		return
	}
	delete(o.vals, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

func (o *object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalJSON(k)
		if err != nil {
			return nil, err
		}
		vb, err := marshalJSON(o.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
