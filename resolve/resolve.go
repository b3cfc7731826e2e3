// Package resolve assembles the assertion, badge class and issuer of a
// badge into a badge.Graph, fetching the linked components that are given
// by reference.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/openbadges/badgecheck/badge"
	"github.com/openbadges/badgecheck/loader"
	"github.com/openbadges/badgecheck/schema"
)

// FetchError is returned when a linked component cannot be retrieved.
type FetchError struct {
	Role badge.Role
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("could not fetch %s from %s: %v", e.Role, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Resolver follows the assertion -> badge class -> issuer links.
type Resolver struct {
	detector *schema.Detector
	loader   loader.Loader
}

// NewResolver returns a Resolver classifying components with detector and
// fetching references through l.
func NewResolver(detector *schema.Detector, l loader.Loader) (*Resolver, error) {
	if detector == nil {
		return nil, errors.New("detector is required")
	}
	if l == nil {
		return nil, errors.New("loader is required")
	}
	return &Resolver{detector: detector, loader: l}, nil
}

// Resolve builds the graph rooted at assertion. Inline components are used
// as they are and string references are fetched, following exactly two
// links: the assertion's badge and the badge class's issuer.
//
// On a fetch failure the graph resolved so far is returned along with a
// *FetchError; the role that failed is left nil. A missing or malformed
// link is not an error here: the role is left nil and structural
// validation reports it.
func (r *Resolver) Resolve(ctx context.Context, assertion *badge.Component) (*badge.Graph, error) {
	if assertion == nil || assertion.Object == nil {
		return nil, errors.New("assertion is required")
	}
	graph := &badge.Graph{Assertion: assertion}

	hint, _ := r.detector.Registry().Lookup(assertion.Version)

	badgeClass, err := r.follow(ctx, assertion, "badge", badge.RoleBadgeClass, hint)
	if err != nil || badgeClass == nil {
		return graph, err
	}
	graph.Set(badgeClass)

	if d, ok := r.detector.Registry().Lookup(badgeClass.Version); ok {
		hint = d
	}
	issuer, err := r.follow(ctx, badgeClass, "issuer", badge.RoleIssuer, hint)
	if err != nil || issuer == nil {
		return graph, err
	}
	graph.Set(issuer)

	return graph, nil
}

func (r *Resolver) follow(ctx context.Context, from *badge.Component, key string, role badge.Role, hint *schema.Descriptor) (*badge.Component, error) {
	c := &badge.Component{Role: role}

	switch ref := from.Object[key].(type) {
	case map[string]any:
		c.Object = ref
	case string:
		if ref == "" {
			return nil, nil
		}
		obj, err := r.loader.Fetch(ctx, ref)
		if err != nil {
			return nil, &FetchError{Role: role, URL: ref, Err: err}
		}
		c.Object = obj
		c.URL = ref
	default:
		return nil, nil
	}

	if desc, ok := r.detector.ClassifyComponent(c.Object, role, hint); ok {
		c.Version = desc.Key
	}
	return c, nil
}
