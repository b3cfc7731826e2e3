// Package badge holds the domain types shared by the verifier packages:
// the three component roles of an Open Badge and the component graph the
// resolver assembles from them.
package badge

import (
	"regexp"
	"strings"
)

// Role is the part a badge object plays in a badge.
type Role string

// Component roles.
const (
	RoleAssertion  Role = "assertion"
	RoleBadgeClass Role = "badgeclass"
	RoleIssuer     Role = "issuer"
)

// Roles lists the component roles in resolution order.
var Roles = []Role{RoleAssertion, RoleBadgeClass, RoleIssuer}

// Component is one resolved badge object.
type Component struct {
	Role Role `json:"role"`

	// Object is the raw JSON object.
	Object map[string]any `json:"object"`

	// URL is where the object was fetched from. Empty for inline objects.
	URL string `json:"url,omitempty"`

	// Version is the key of the schema descriptor the object matched.
	// Empty when the object could not be classified.
	Version string `json:"version"`
}

// String returns the string property key of the component, or "".
func (c *Component) String(key string) string {
	if c == nil {
		return ""
	}
	s, _ := c.Object[key].(string)
	return s
}

// Graph is the assertion -> badge class -> issuer graph for one badge.
// Roles that have not been resolved are nil.
type Graph struct {
	Assertion  *Component `json:"assertion"`
	BadgeClass *Component `json:"badgeclass,omitempty"`
	Issuer     *Component `json:"issuer,omitempty"`
}

// Get returns the component for role, or nil.
func (g *Graph) Get(role Role) *Component {
	if g == nil {
		return nil
	}
	switch role {
	case RoleAssertion:
		return g.Assertion
	case RoleBadgeClass:
		return g.BadgeClass
	case RoleIssuer:
		return g.Issuer
	}
	return nil
}

// Set stores c under its role.
func (g *Graph) Set(c *Component) {
	switch c.Role {
	case RoleAssertion:
		g.Assertion = c
	case RoleBadgeClass:
		g.BadgeClass = c
	case RoleIssuer:
		g.Issuer = c
	}
}

// Components returns the resolved components in role order.
func (g *Graph) Components() []*Component {
	var out []*Component
	for _, role := range Roles {
		if c := g.Get(role); c != nil {
			out = append(out, c)
		}
	}
	return out
}

var rolePatterns = []struct {
	role    Role
	pattern *regexp.Regexp
}{
	{RoleAssertion, regexp.MustCompile(`(?i)assertion`)},
	{RoleBadgeClass, regexp.MustCompile(`(?i)badge_?class`)},
	{RoleIssuer, regexp.MustCompile(`(?i)issuer`)},
}

// IdentifyRole maps a type IRI or shorthand ("Assertion", "badgeclass",
// "issuerorg", "https://w3id.org/openbadges#BadgeClass") to a Role.
func IdentifyRole(typeString string) (Role, bool) {
	typeString = strings.TrimSpace(typeString)
	for _, p := range rolePatterns {
		if p.pattern.MatchString(typeString) {
			return p.role, true
		}
	}
	return "", false
}
