package document

import "strconv"

// Node is a single position visited by Walk
type Node struct {
	// Path is the dotted/indexed location, e.g. "servers[0].url"
	Path string
	// Key is the mapping key that led to this node, empty for the root
	// and for sequence items
	Key string
	// InMap is true when the node is the value of a mapping entry
	InMap bool
	// Depth is 0 for the root and grows by one per container level
	Depth int
	// Value is the node itself
	Value any
}

// WalkFunc is called for every visited node. Returning false stops the walk.
type WalkFunc func(n Node) bool

// Walk visits v and its descendants depth-first in document order.
// Nodes deeper than maxDepth are not visited and traversal below them
// stops silently. A negative maxDepth disables the ceiling.
func Walk(v any, maxDepth int, fn WalkFunc) {
	walk(Node{Value: v}, maxDepth, fn)
}

func walk(n Node, maxDepth int, fn WalkFunc) bool {
	if maxDepth >= 0 && n.Depth > maxDepth {
		return true
	}
	if !fn(n) {
		return false
	}

	switch val := n.Value.(type) {
	case *Map:
		for pair := val.Oldest(); pair != nil; pair = pair.Next() {
			child := Node{
				Path:  JoinKey(n.Path, pair.Key),
				Key:   pair.Key,
				InMap: true,
				Depth: n.Depth + 1,
				Value: pair.Value,
			}
			if !walk(child, maxDepth, fn) {
				return false
			}
		}
	case []any:
		for i, item := range val {
			child := Node{
				Path:  JoinIndex(n.Path, i),
				Depth: n.Depth + 1,
				Value: item,
			}
			if !walk(child, maxDepth, fn) {
				return false
			}
		}
	}
	return true
}

// JoinKey appends a mapping key to a path
func JoinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// JoinIndex appends a sequence index to a path
func JoinIndex(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
