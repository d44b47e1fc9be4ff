package clash

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Proxy is a validated proxy entry of one of the supported kinds.
// The set of implementations is closed to this package.
type Proxy interface {
	Kind() Kind
	// Link renders the share URI. It never fails: all validation happens while decoding.
	Link() Link
	sealed()
}

// Link is one encoded proxy. Warnings is non-empty when the URI was built
// with parts of the record ignored.
type Link struct {
	Kind     Kind
	Name     string
	URI      string
	Warnings []Warning
}

// Decode validates r and returns the typed proxy its "type" field names.
func Decode(r Record) (Proxy, error) {
	t, _ := r.Get("type").raw.(string)
	kind, ok := ParseKind(t)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, r.Get("type").String())
	}

	var (
		p   Proxy
		err error
	)
	switch kind {
	case KindVMess:
		var v *VMess
		v, err = DecodeVMess(r)
		p = v
	case KindTrojan:
		var v *Trojan
		v, err = DecodeTrojan(r)
		p = v
	case KindVLESS:
		var v *VLESS
		v, err = DecodeVLESS(r)
		p = v
	case KindShadowsocks:
		var v *Shadowsocks
		v, err = DecodeShadowsocks(r)
		p = v
	case KindShadowsocksR:
		var v *ShadowsocksR
		v, err = DecodeShadowsocksR(r)
		p = v
	case KindHysteria:
		var v *Hysteria
		v, err = DecodeHysteria(r)
		p = v
	case KindHysteria2:
		var v *Hysteria2
		v, err = DecodeHysteria2(r)
		p = v
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Encode decodes r and renders its link.
func Encode(r Record) (Link, error) {
	p, err := Decode(r)
	if err != nil {
		return Link{}, err
	}
	return p.Link(), nil
}

// ConvertAll encodes records in order. Records of unknown kind are dropped
// without a trace; the first invalid record aborts the batch.
func ConvertAll(records []Record) ([]Link, error) {
	links := make([]Link, 0, len(records))
	for i, r := range records {
		l, err := Encode(r)
		if errors.Is(err, ErrUnknownType) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("proxy #%d: %w", i, err)
		}
		links = append(links, l)
	}
	return links, nil
}

// ConvertConcurrent has the contract of ConvertAll but encodes with up to
// workers goroutines. When several records are invalid the one with the
// lowest index is reported.
func ConvertConcurrent(ctx context.Context, records []Record, workers int) ([]Link, error) {
	if workers <= 1 {
		return ConvertAll(records)
	}

	links := make([]Link, len(records))
	errs := make([]error, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			links[i], errs[i] = Encode(records[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Link, 0, len(records))
	for i, err := range errs {
		if errors.Is(err, ErrUnknownType) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("proxy #%d: %w", i, err)
		}
		out = append(out, links[i])
	}
	return out, nil
}

// URIs returns the URI of every link.
func URIs(links []Link) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.URI
	}
	return out
}
