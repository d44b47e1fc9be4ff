package stdin

import (
	"fmt"
	"io"
	"os"

	"proxylink/internal/clash"
	"proxylink/internal/collectors"
)

type StdinCollector struct {
	In io.Reader
}

func (c *StdinCollector) Collect(config map[string]interface{}) ([]clash.Record, error) {
	data, err := io.ReadAll(c.In)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return clash.ParseDocument(data)
}

func init() {
	collectors.Register("stdin", func() collectors.Collector {
		return &StdinCollector{In: os.Stdin}
	})
}
