package stdout

import (
	"fmt"
	"io"
	"os"

	"proxylink/internal/clash"
	"proxylink/internal/publishers"
)

type Publisher struct {
	Out io.Writer
}

func (p *Publisher) Publish(links []clash.Link, config map[string]interface{}) error {
	payload, err := publishers.GenerateSubscriptionPayload(links, config)
	if err != nil {
		return err
	}
	if payload == "" {
		return nil
	}
	_, err = fmt.Fprintln(p.Out, payload)
	return err
}

func init() {
	publishers.Register("stdout", func() publishers.Publisher { return &Publisher{Out: os.Stdout} })
}
