package schema

import (
	"fmt"
	"sort"

	"github.com/aclgate/aclgate/gwerrors"
	"go.yaml.in/yaml/v4"
)

// Registry holds resource schemas, loaded once at process start and
// treated as immutable thereafter (per the Lifecycles invariant). It is
// read-only after construction and safe for concurrent use by any number
// of request-handling goroutines.
type Registry struct {
	resources map[string]*SchemaNode
	log       gwerrors.Logger
}

// NewRegistry builds a Registry from an already-constructed set of
// resource schemas, e.g. ones assembled programmatically in tests.
func NewRegistry(resources map[string]*SchemaNode) *Registry {
	if resources == nil {
		resources = map[string]*SchemaNode{}
	}
	return &Registry{resources: resources, log: gwerrors.NoopLogger()}
}

// WithLogger attaches a Logger used for load-time diagnostics.
func (r *Registry) WithLogger(l gwerrors.Logger) *Registry {
	if l == nil {
		l = gwerrors.NoopLogger()
	}
	r.log = l
	return r
}

// LoadYAML parses the schema-source document format: a top-level map of
// resource name to a node descriptor tree of {type: "dict", schema: {...}}
// or {type: "list", schema: {...}} nodes, with "_sec" as the reserved
// label-marker child key. See SPEC_FULL.md §6 "Schema format".
func LoadYAML(data []byte) (*Registry, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("schema: parse yaml: %w", err)
	}
	resources := make(map[string]*SchemaNode, len(raw))
	for name, v := range raw {
		node, err := parseNode(v)
		if err != nil {
			return nil, fmt.Errorf("schema: resource %q: %w", name, err)
		}
		resources[name] = node
	}
	return NewRegistry(resources), nil
}

func parseNode(v any) (*SchemaNode, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a node object, got %T", v)
	}
	typ, _ := m["type"].(string)
	switch typ {
	case "dict":
		fields := map[string]*SchemaNode{}
		if schemaVal, ok := m["schema"].(map[string]any); ok {
			for k, fv := range schemaVal {
				child, err := parseNode(fv)
				if err != nil {
					return nil, fmt.Errorf("field %q: %w", k, err)
				}
				fields[k] = child
			}
		}
		node := &SchemaNode{Kind: KindObject, Fields: fields}
		_, node.Labelled = fields["_sec"]
		return node, nil
	case "list":
		elem := Leaf()
		if schemaVal, ok := m["schema"]; ok {
			e, err := parseNode(schemaVal)
			if err != nil {
				return nil, fmt.Errorf("list element: %w", err)
			}
			elem = e
		}
		return &SchemaNode{Kind: KindList, Element: elem}, nil
	default:
		return Leaf(), nil
	}
}

// Schema returns the schema tree for a resource, or the empty schema if
// unknown. Unknown resources never error.
func (r *Registry) Schema(resource string) *SchemaNode {
	if n, ok := r.resources[resource]; ok {
		return n
	}
	r.log.Debug("schema missing, returning empty schema", "resource", resource)
	return emptySchema()
}

// Known reports whether resource has a registered schema.
func (r *Registry) Known(resource string) bool {
	_, ok := r.resources[resource]
	return ok
}

// Resources returns every registered resource name, sorted, for callers
// that need to enumerate the full set (e.g. mounting one HTTP route
// group per resource).
func (r *Registry) Resources() []string {
	names := make([]string, 0, len(r.resources))
	for name := range r.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LabelledPaths returns, in pre-order, every path whose schema node bears
// the "_sec" label marker. The list always begins with the empty path
// (document root), because the document root is always labelled by
// invariant, even when the registered schema's root node itself lacks an
// explicit "_sec" marker (e.g. for an unknown resource).
func (r *Registry) LabelledPaths(resource string) []string {
	root := r.Schema(resource)
	paths := []string{""}
	Walk(root, "", func(path string, node *SchemaNode) Action {
		if node != nil && node.Labelled {
			paths = append(paths, path)
		}
		return Continue
	})
	return paths
}

// Validate enforces the schema-level invariant spec.md §9 recommends:
// every "_sec" node's "cat" must be a scalar leaf and "diss" must be a
// list of scalar leaves, so the rewriter's subset test over a
// singleton-wrapped scalar is always equivalent to scalar membership.
func (r *Registry) Validate(resource string) error {
	root := r.Schema(resource)
	return validateNode(resource, "", root)
}

func validateNode(resource, path string, node *SchemaNode) error {
	if node == nil {
		return nil
	}
	if node.Kind == KindObject && node.Labelled {
		sec := node.Fields["_sec"]
		if sec == nil || sec.Kind != KindObject {
			return fmt.Errorf("schema: resource %q path %q: _sec must be a dict", resource, path)
		}
		cat := sec.Fields["cat"]
		if cat == nil || cat.Kind != KindLeaf {
			return fmt.Errorf("schema: resource %q path %q: _sec.cat must be a scalar", resource, path)
		}
		diss := sec.Fields["diss"]
		if diss == nil || diss.Kind != KindList || (diss.Element != nil && diss.Element.Kind != KindLeaf) {
			return fmt.Errorf("schema: resource %q path %q: _sec.diss must be a list of scalars", resource, path)
		}
	}
	if node.Kind == KindObject {
		for name, child := range node.Fields {
			if name == "_sec" {
				continue
			}
			childPath := name
			if path != "" {
				childPath = path + "." + name
			}
			if err := validateNode(resource, childPath, child); err != nil {
				return err
			}
		}
	}
	if node.Kind == KindList {
		if err := validateNode(resource, path, node.Element); err != nil {
			return err
		}
	}
	return nil
}
