package spec

import (
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// OrderIndex remembers the key order of every mapping in the source document.
// kin-openapi decodes objects into Go maps, so paths, operations, properties and
// responses lose the order the author wrote them in; the compiler output depends
// on that order.
type OrderIndex struct {
	root   *yaml.Node
	remaps []remap
}

type remap struct{ from, to []string }

// NewOrderIndex parses raw YAML or JSON. An unparsable document yields an
// empty index, which makes every lookup fall back to sorted order.
func NewOrderIndex(raw []byte) *OrderIndex {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return &OrderIndex{}
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	return &OrderIndex{root: root}
}

// Remap makes lookups under from read the source mapping found under to.
// Converted Swagger 2 documents use it to find component schemas under
// definitions.
func (x *OrderIndex) Remap(from, to []string) *OrderIndex {
	x.remaps = append(x.remaps, remap{from: from, to: to})
	return x
}

// Keys returns the mapping keys found at path, in source order. Sequence
// elements are addressed by their decimal index.
func (x *OrderIndex) Keys(path ...string) []string {
	n := x.lookup(path)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keys = append(keys, n.Content[i].Value)
	}
	return keys
}

func (x *OrderIndex) lookup(path []string) *yaml.Node {
	if x == nil || x.root == nil {
		return nil
	}
	for _, r := range x.remaps {
		if hasPrefix(path, r.from) {
			path = append(append([]string{}, r.to...), path[len(r.from):]...)
			break
		}
	}
	n := x.root
	for _, tok := range path {
		for n.Kind == yaml.AliasNode && n.Alias != nil {
			n = n.Alias
		}
		switch n.Kind {
		case yaml.MappingNode:
			var next *yaml.Node
			for i := 0; i+1 < len(n.Content); i += 2 {
				if n.Content[i].Value == tok {
					next = n.Content[i+1]
					break
				}
			}
			if next == nil {
				return nil
			}
			n = next
		case yaml.SequenceNode:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(n.Content) {
				return nil
			}
			n = n.Content[i]
		default:
			return nil
		}
	}
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// orderedKeys returns the keys of m, first in source order as recorded at
// path, then any remaining keys sorted.
func orderedKeys[V any](m map[string]V, x *OrderIndex, path []string) []string {
	out := make([]string, 0, len(m))
	seen := make(map[string]struct{}, len(m))
	var known []string
	if path != nil {
		known = x.Keys(path...)
	}
	for _, k := range known {
		if _, ok := m[k]; !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	var rest []string
	for k := range m {
		if _, ok := seen[k]; !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// child extends a lookup path; a nil path means the location is unknown.
func child(path []string, toks ...string) []string {
	if path == nil {
		return nil
	}
	out := make([]string, 0, len(path)+len(toks))
	out = append(out, path...)
	return append(out, toks...)
}

func hasPrefix(path, prefix []string) bool {
	if len(path) < len(prefix) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}
