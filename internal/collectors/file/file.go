package file

import (
	"fmt"
	"os"

	"proxylink/internal/clash"
	"proxylink/internal/collectors"
	"proxylink/internal/logger"
)

// FileCollector reads YAML proxy lists from the paths in its "path" param.
type FileCollector struct{}

func (c *FileCollector) Collect(config map[string]interface{}) ([]clash.Record, error) {
	paths := collectors.StringsParam(config, "path")
	if len(paths) == 0 {
		return nil, fmt.Errorf("missing 'path' in collector config")
	}

	var records []clash.Record
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read proxy list: %w", err)
		}
		recs, err := clash.ParseDocument(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		logger.Log.Debugf("Read %d records from %s", len(recs), path)
		records = append(records, recs...)
	}
	return records, nil
}

func init() {
	collectors.Register("file", func() collectors.Collector {
		return &FileCollector{}
	})
}
