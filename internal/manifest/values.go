package manifest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadValuesFile reads a YAML values file into a nested map.
func LoadValuesFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read values file: %w", err)
	}
	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse values file %s: %w", path, err)
	}
	return values, nil
}

// ParseSet applies one key=value expression onto the values map. Dots in
// the key address nested maps, so "cluster.region=eu-west-1" sets
// values["cluster"]["region"]. Values stay strings; templates coerce
// where needed.
func ParseSet(values map[string]any, expr string) error {
	key, value, ok := strings.Cut(expr, "=")
	if !ok || key == "" {
		return fmt.Errorf("invalid set expression %q: expected key=value", expr)
	}

	parts := strings.Split(key, ".")
	node := values
	for i, part := range parts[:len(parts)-1] {
		child, ok := node[part]
		if !ok {
			next := make(map[string]any)
			node[part] = next
			node = next
			continue
		}
		childMap, ok := child.(map[string]any)
		if !ok {
			return fmt.Errorf("invalid set expression %q: %s is not a map", expr, strings.Join(parts[:i+1], "."))
		}
		node = childMap
	}
	node[parts[len(parts)-1]] = value
	return nil
}

// MergeValues deep-merges src into dst, src winning on conflicts. Nested
// maps merge recursively; everything else replaces.
func MergeValues(dst, src map[string]any) {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			MergeValues(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
}
