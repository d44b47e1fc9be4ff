package file

import (
	"fmt"
	"os"
	"path/filepath"

	"proxylink/internal/clash"
	"proxylink/internal/logger"
	"proxylink/internal/publishers"
)

// Publisher writes the subscription to the file named by its "path" param,
// replacing it atomically.
type Publisher struct{}

func (p *Publisher) Publish(links []clash.Link, config map[string]interface{}) error {
	path, _ := config["path"].(string)
	if path == "" {
		return fmt.Errorf("missing 'path' in publisher config")
	}

	payload, err := publishers.GenerateSubscriptionPayload(links, config)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".proxylink-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write subscription: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write subscription: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	logger.Log.Debugf("Wrote %d bytes to %s", len(payload), path)
	return nil
}

func init() {
	publishers.Register("file", func() publishers.Publisher { return &Publisher{} })
}
