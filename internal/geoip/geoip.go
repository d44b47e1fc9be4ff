package geoip

import (
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/oschwald/geoip2-golang"

	"proxylink/internal/clash"
	"proxylink/internal/logger"
)

var (
	countryReader *geoip2.Reader
	mu            sync.RWMutex
)

// Init loads the country MMDB. An empty path leaves tagging disabled.
func Init(countryPath string) error {
	if countryPath == "" {
		return nil
	}
	reader, err := geoip2.Open(countryPath)
	if err != nil {
		return fmt.Errorf("failed to open Country DB at %s: %w", countryPath, err)
	}

	mu.Lock()
	defer mu.Unlock()
	if countryReader != nil {
		countryReader.Close()
	}
	countryReader = reader
	return nil
}

func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return countryReader != nil
}

// Country returns the ISO code for an IP literal. Hostnames are not resolved.
func Country(server string) (string, error) {
	mu.RLock()
	defer mu.RUnlock()
	if countryReader == nil {
		return "", fmt.Errorf("geoip database not initialized")
	}

	ip := net.ParseIP(strings.Trim(server, "[]"))
	if ip == nil {
		return "", fmt.Errorf("not an ip address: %s", server)
	}

	c, err := countryReader.Country(ip)
	if err != nil {
		return "", err
	}
	return c.Country.IsoCode, nil
}

// TagRecord prefixes the record's name with the flag of its server's country.
// The input is never modified; records that cannot be located come back as is.
func TagRecord(r clash.Record) clash.Record {
	code, err := Country(r.Text("server"))
	if err != nil || code == "" {
		if err != nil {
			logger.Log.Debugf("geoip: %v", err)
		}
		return r
	}

	name := r.Text("name")
	if name == "" {
		name = code
	}
	return r.With("name", FlagEmoji(code)+" "+name)
}

// FlagEmoji turns a two-letter country code into its regional-indicator flag.
func FlagEmoji(countryCode string) string {
	if len(countryCode) != 2 {
		return "🌐"
	}
	countryCode = strings.ToUpper(countryCode)
	return string(rune(countryCode[0])+127397) + string(rune(countryCode[1])+127397)
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	if countryReader != nil {
		countryReader.Close()
		countryReader = nil
	}
}
