package schema

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openbadges/badgecheck/badge"
)

// ErrUnclassifiable is returned when no known version matches an object.
var ErrUnclassifiable = errors.New("could not determine the specification version of badge object")

// Detection is the outcome of classifying a badge object.
type Detection struct {
	Descriptor *Descriptor

	// Type is the role the object declares, or the descriptor's default.
	Type badge.Role

	// ContextAware is true when the version came from a declared @context
	// rather than the decision tree.
	ContextAware bool
}

// Detector classifies badge objects against a registry.
type Detector struct {
	registry *Registry
	tree     *Node
}

// NewDetector returns a Detector walking tree over registry. Every key
// referenced by the tree must be registered.
func NewDetector(registry *Registry, tree *Node) (*Detector, error) {
	if registry == nil {
		return nil, errors.New("registry is required")
	}
	if tree == nil {
		return nil, errors.New("decision tree is required")
	}
	if err := checkTree(registry, tree); err != nil {
		return nil, err
	}
	return &Detector{registry: registry, tree: tree}, nil
}

// DefaultDetector returns a Detector over the default registry and tree.
func DefaultDetector() (*Detector, error) {
	r, err := Default()
	if err != nil {
		return nil, err
	}
	return NewDetector(r, DefaultTree)
}

func checkTree(r *Registry, n *Node) error {
	for ; n != nil; n = n.NoMatch {
		if n.Test == "" {
			return errors.New("decision tree node without a test")
		}
		if _, ok := r.Lookup(n.Test); !ok {
			return fmt.Errorf("decision tree references unknown version %q", n.Test)
		}
		if err := checkTree(r, n.Match); err != nil {
			return err
		}
	}
	return nil
}

// Registry returns the registry the detector classifies against.
func (d *Detector) Registry() *Registry {
	return d.registry
}

// Detect classifies obj.
//
// Objects declaring an @context are matched by context: the first context
// value naming a known version wins and the type is read from @type or
// type, defaulting to assertion. All other values are walked through the
// decision tree.
func (d *Detector) Detect(obj any) (Detection, error) {
	if m, ok := obj.(map[string]any); ok {
		if desc, ok := d.byDeclaredContext(m); ok {
			role, ok := declaredRole(m)
			if !ok {
				role = badge.RoleAssertion
			}
			return Detection{Descriptor: desc, Type: role, ContextAware: true}, nil
		}
	}

	if !isJSONValue(obj) {
		return Detection{}, ErrUnclassifiable
	}

	desc, ok := d.walk(obj, badge.RoleAssertion)
	if !ok {
		return Detection{}, ErrUnclassifiable
	}
	return Detection{Descriptor: desc, Type: desc.DefaultType}, nil
}

// ClassifyComponent determines the version of a linked badge class or
// issuer object. A declared context wins. Otherwise hint, normally the
// assertion's version, is adopted when its schema for role accepts obj,
// and failing that the decision tree is walked using role schemas.
func (d *Detector) ClassifyComponent(obj map[string]any, role badge.Role, hint *Descriptor) (*Descriptor, bool) {
	if desc, ok := d.byDeclaredContext(obj); ok {
		return desc, true
	}
	if hint != nil && hint.HasSchema(role) && hint.Matches(obj, role) {
		return hint, true
	}
	return d.walk(obj, role)
}

func (d *Detector) byDeclaredContext(m map[string]any) (*Descriptor, bool) {
	raw, ok := m["@context"]
	if !ok || raw == nil {
		return nil, false
	}
	for _, iri := range contextValues(raw) {
		if desc, ok := d.registry.ByContext(iri); ok {
			return desc, true
		}
	}
	return nil, false
}

// walk descends the tree depth first. The first structural match with no
// further Match subtree is final; nothing is retried.
func (d *Detector) walk(obj any, role badge.Role) (*Descriptor, bool) {
	node := d.tree
	for node != nil {
		desc, _ := d.registry.Lookup(node.Test)
		matched := desc.HasSchema(role) && desc.Matches(obj, role)

		switch {
		case matched && node.Match != nil:
			node = node.Match
		case matched:
			return desc, true
		default:
			node = node.NoMatch
		}
	}
	return nil, false
}

// isJSONValue reports whether v is a value the schema validator accepts.
func isJSONValue(v any) bool {
	switch v.(type) {
	case nil, bool, string, float64, json.Number, map[string]any, []any:
		return true
	}
	return false
}

// contextValues flattens a JSON-LD @context value to its IRIs.
func contextValues(raw any) []string {
	switch v := raw.(type) {
	case string:
		return []string{v}
	case []any:
		var out []string
		for _, item := range v {
			out = append(out, contextValues(item)...)
		}
		return out
	case map[string]any:
		// An embedded context may itself point at a remote one.
		if inner, ok := v["@context"]; ok {
			return contextValues(inner)
		}
	}
	return nil
}

func declaredRole(m map[string]any) (badge.Role, bool) {
	for _, key := range []string{"@type", "type"} {
		switch v := m[key].(type) {
		case string:
			if role, ok := badge.IdentifyRole(v); ok {
				return role, true
			}
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					if role, ok := badge.IdentifyRole(s); ok {
						return role, true
					}
				}
			}
		}
	}
	return "", false
}
