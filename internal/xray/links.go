package xray

import (
	"bufio"
	"regexp"
	"strings"

	"proxylink/internal/b64"
)

var regexLink = regexp.MustCompile(`(vmess|vless|trojan|ssr|ss|hysteria2|hysteria|hy2)://[a-zA-Z0-9_\-\.\:@\?=&%#+/\[\]~]+`)

// ExtractLinks finds share links in free text, keeping first-seen order.
// A subscription body that is base64 as a whole is decoded first.
func ExtractLinks(text string) []string {
	text = DecodeSubscription(text)

	var links []string
	text = strings.ReplaceAll(text, "\r\n", "\n")
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		matches := regexLink.FindAllString(line, -1)
		for _, match := range matches {
			clean := strings.TrimRight(match, ".,;)\"")
			if clean != "" {
				links = append(links, clean)
			}
		}
	}
	return deduplicate(links)
}

// DecodeSubscription returns text unchanged unless it is a single base64
// blob that decodes to something containing links.
func DecodeSubscription(text string) string {
	if strings.Contains(text, "://") {
		return text
	}
	compact := strings.Join(strings.Fields(text), "")
	decoded, err := b64.Decode(compact)
	if err != nil || !strings.Contains(decoded, "://") {
		return text
	}
	return decoded
}

func deduplicate(input []string) []string {
	keys := make(map[string]bool)
	list := []string{}
	for _, entry := range input {
		if _, value := keys[entry]; !value {
			keys[entry] = true
			list = append(list, entry)
		}
	}
	return list
}
