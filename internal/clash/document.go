package clash

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseDocument reads a YAML proxy list: either a mapping with a "proxies"
// sequence (a full client profile) or a bare sequence of proxies.
func ParseDocument(data []byte) ([]Record, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse proxy list yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	node := root.Content[0]
	if node.Kind == yaml.MappingNode {
		node = mappingValue(node, "proxies")
		if node == nil || node.Tag == "!!null" {
			return nil, nil
		}
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("proxy list must be a sequence, got %s", nodeKind(node))
	}

	records := make([]Record, 0, len(node.Content))
	for i, item := range node.Content {
		target := item
		if item.Kind == yaml.AliasNode && item.Alias != nil {
			target = item.Alias
		}
		if target.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("proxy #%d (line %d) must be a mapping, got %s", i, item.Line, nodeKind(item))
		}
		var r map[string]interface{}
		if err := item.Decode(&r); err != nil {
			return nil, fmt.Errorf("proxy #%d (line %d): %w", i, item.Line, err)
		}
		records = append(records, Record(r))
	}
	return records, nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "document"
}
