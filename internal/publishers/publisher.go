package publishers

import (
	"fmt"

	"proxylink/internal/clash"
)

// Publisher writes a subscription built from converted links.
type Publisher interface {
	Publish(links []clash.Link, config map[string]interface{}) error
}

type Factory func() Publisher

var registry = make(map[string]Factory)

func Register(name string, factory Factory) {
	registry[name] = factory
}

func Get(name string) (Publisher, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("publisher plugin '%s' not found", name)
	}
	return factory(), nil
}
