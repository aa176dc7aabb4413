package plan

import "sort"

// sortedKeys returns map keys in lexical order so property ordering is
// stable across runs (YAML mappings carry no order).
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
