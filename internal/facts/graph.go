package facts

import "encoding/json"

// Graph is a derived reference index over a Store's facts: for every
// identity it records which facts embed a reference to it, and for every
// fact which identities its key references. It is rebuilt from the fact
// list after a run completes.
type Graph struct {
	forward map[ID][]ID // fact id -> ids referenced by its key
	reverse map[ID][]ID // fact id -> ids of facts referencing it
}

// NewGraph builds a Graph from a slice of facts in a single pass. Identity
// references are discovered structurally: every {"id": n} object anywhere in
// a key is an edge.
func NewGraph(ff []Fact) *Graph {
	g := &Graph{
		forward: make(map[ID][]ID, len(ff)),
		reverse: make(map[ID][]ID),
	}
	for _, f := range ff {
		targets := collectRefs(f.Key)
		if len(targets) == 0 {
			continue
		}
		g.forward[f.ID] = targets
		for _, t := range targets {
			g.reverse[t] = append(g.reverse[t], f.ID)
		}
	}
	return g
}

// References returns the identities referenced by the given fact's key.
func (g *Graph) References(id ID) []ID {
	return g.forward[id]
}

// ReferencedBy returns the identities of all facts whose keys reference id.
func (g *Graph) ReferencedBy(id ID) []ID {
	return g.reverse[id]
}

// TransitiveReferencedBy walks the reverse index breadth-first from id up to
// maxDepth levels (0 means unlimited) and returns every reachable referrer.
func (g *Graph) TransitiveReferencedBy(id ID, maxDepth int) []ID {
	seen := map[ID]bool{id: true}
	frontier := []ID{id}
	var result []ID
	depth := 0
	for len(frontier) > 0 {
		if maxDepth > 0 && depth >= maxDepth {
			break
		}
		var next []ID
		for _, cur := range frontier {
			for _, ref := range g.reverse[cur] {
				if seen[ref] {
					continue
				}
				seen[ref] = true
				result = append(result, ref)
				next = append(next, ref)
			}
		}
		frontier = next
		depth++
	}
	return result
}

// collectRefs extracts every embedded {"id": n} reference from a key.
func collectRefs(raw json.RawMessage) []ID {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}
	var refs []ID
	walkRefs(decoded, &refs)
	return refs
}

func walkRefs(v any, out *[]ID) {
	switch t := v.(type) {
	case map[string]any:
		// A bare {"id": n} object is an identity reference.
		if len(t) == 1 {
			if n, ok := t["id"].(float64); ok {
				*out = append(*out, ID(n))
				return
			}
		}
		for _, child := range t {
			walkRefs(child, out)
		}
	case []any:
		for _, child := range t {
			walkRefs(child, out)
		}
	}
}
