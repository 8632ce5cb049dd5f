package schema

import "sort"

// Action controls the walk's behavior after visiting a node, mirroring
// the visitor contract of a schema tree traversal: a handler decides
// whether to keep descending, skip a sub-tree, or stop the walk outright.
type Action int

const (
	// Continue descends into the visited node's children (if any).
	Continue Action = iota
	// SkipChildren skips the visited node's children but continues with siblings.
	SkipChildren
	// Stop halts the walk immediately; no further nodes are visited.
	Stop
)

// Handler is called for each field reached during a walk, with its
// dot-separated path from the resource root and the node itself.
type Handler func(path string, node *SchemaNode) Action

// Walk performs a deterministic pre-order traversal of node's fields,
// calling h for every named field reached (not for node itself — callers
// that need the root visited do so explicitly, since the root's labelled
// status has special handling in LabelledPaths). Fields are visited in
// sorted key order so the resulting path list is reproducible.
//
// "_sec" is never visited as a field in its own right: it is the label
// marker/payload for its parent node, not a labelled sub-tree.
func Walk(node *SchemaNode, basePath string, h Handler) {
	walk(node, basePath, h)
}

func walk(node *SchemaNode, basePath string, h Handler) Action {
	if node == nil {
		return Continue
	}
	switch node.Kind {
	case KindObject:
		names := make([]string, 0, len(node.Fields))
		for name := range node.Fields {
			if name == "_sec" {
				continue
			}
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			child := node.Fields[name]
			path := name
			if basePath != "" {
				path = basePath + "." + name
			}
			action := h(path, child)
			if action == Stop {
				return Stop
			}
			if action == SkipChildren {
				continue
			}
			if walk(child, path, h) == Stop {
				return Stop
			}
		}
	case KindList:
		// List elements share their container's path: the spec's dot-path
		// addressing has no array-index segment.
		return walk(node.Element, basePath, h)
	}
	return Continue
}
