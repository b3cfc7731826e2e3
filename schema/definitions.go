package schema

import (
	"embed"

	"github.com/openbadges/badgecheck/badge"
)

//go:embed definitions/*.json contexts/*.json
var staticFiles embed.FS

// Family groups descriptors whose semantic rules are the same.
type Family string

// Specification families.
const (
	FamilyPre1 Family = "pre-1.0"
	FamilyV1   Family = "1.0+"
)

// Definition is the static, file-backed description of one known
// specification version.
type Definition struct {
	Key         string
	SchemaFile  string
	SchemaURL   string
	DefaultType badge.Role
	Context     string
	ContextFile string

	// ContextAliases are other context IRIs published for the same version.
	ContextAliases []string

	// Components maps the badge class and issuer roles to their schema
	// files. The assertion role always uses SchemaFile.
	Components map[badge.Role]string

	Family Family

	// CaseSensitive is the version's contract for comparing plaintext
	// recipient identifiers.
	CaseSensitive bool
}

// Descriptor keys.
const (
	KeyPlainURL      = "plainurl"
	KeyV05           = "v0_5"
	KeyV10Strict     = "v1_0strict"
	KeyBackpackError = "backpack_error_1_0"
	KeyV11           = "v1_1"
)

// Definitions lists the known versions. Order matters for context lookup:
// when several definitions share a context IRI the first one wins.
var Definitions = []Definition{
	{
		Key:         KeyV11,
		SchemaFile:  "OBI-v1.1-assertion.json",
		SchemaURL:   "http://openbadges.org/standard/1.1/schema/1.1-assertion",
		DefaultType: badge.RoleAssertion,
		Context:     "https://w3id.org/openbadges/v1",
		ContextFile: "1.1.json",
		ContextAliases: []string{
			"http://openbadges.org/standard/1.1/context",
			"http://standard.openbadges.org/1.1/context",
		},
		Components: map[badge.Role]string{
			badge.RoleBadgeClass: "OBI-v1.1-badgeclass.json",
			badge.RoleIssuer:     "OBI-v1.1-issuer.json",
		},
		Family: FamilyV1,
	},
	{
		Key:         KeyV10Strict,
		SchemaFile:  "OBI-v1.0-linked-badgeclass.json",
		SchemaURL:   "http://openbadges.org/standard/1.0/schema/v1.0-assertion-linked-badgeclass",
		DefaultType: badge.RoleAssertion,
		Context:     "http://openbadges.org/standard/1.0/context",
		ContextFile: "1.0.json",
		ContextAliases: []string{
			"http://standard.openbadges.org/1.0/context",
		},
		Components: map[badge.Role]string{
			badge.RoleBadgeClass: "OBI-v1.0-badgeclass.json",
			badge.RoleIssuer:     "OBI-v1.0-issuer.json",
		},
		Family: FamilyV1,
	},
	{
		Key:         KeyV05,
		SchemaFile:  "OBI-v0.5-assertion.json",
		SchemaURL:   "http://openbadges.org/standard/0.5/schema/v0.5-assertion",
		DefaultType: badge.RoleAssertion,
		Context:     "http://openbadges.org/standard/context/0.5",
		ContextFile: "0.5.json",
		Components: map[badge.Role]string{
			badge.RoleBadgeClass: "OBI-v0.5-badgeclass.json",
			badge.RoleIssuer:     "OBI-v0.5-issuer.json",
		},
		Family:        FamilyPre1,
		CaseSensitive: true,
	},
	{
		Key:         KeyBackpackError,
		SchemaFile:  "backpack-error-from-valid-1.0.json",
		SchemaURL:   "http://openbadges.org/standard/0.5/schema/v0.5-1.0-mashed-up",
		DefaultType: badge.RoleAssertion,
		Context:     "http://openbadges.org/standard/0.5/context/",
		ContextFile: "0.5.json",
		Components: map[badge.Role]string{
			badge.RoleBadgeClass: "backpack-error-badgeclass.json",
			badge.RoleIssuer:     "backpack-error-issuer.json",
		},
		Family:        FamilyPre1,
		CaseSensitive: true,
	},
	{
		Key:           KeyPlainURL,
		SchemaFile:    "plainuri.json",
		SchemaURL:     "http://openbadges.org/standard/0.5/schema/v0.5-plainuri",
		DefaultType:   badge.RoleAssertion,
		Context:       "http://openbadges.org/standard/context/0.5",
		ContextFile:   "0.5.json",
		Family:        FamilyPre1,
		CaseSensitive: true,
	},
}

// Node is one test in a VersionDecisionTree. Test names a descriptor key;
// Match and NoMatch are the subtrees to walk when the object does or does
// not validate against that descriptor. A nil Match accepts Test as the
// final answer; a nil NoMatch makes the object unclassifiable.
type Node struct {
	Test    string
	Match   *Node
	NoMatch *Node
}

// DefaultTree probes the lenient legacy schemas before the strict 1.0
// schema, so a backpack-mangled assertion is never mistaken for 1.0.
var DefaultTree = &Node{
	Test: KeyPlainURL,
	NoMatch: &Node{
		Test: KeyBackpackError,
		NoMatch: &Node{
			Test: KeyV10Strict,
			NoMatch: &Node{
				Test: KeyV05,
			},
		},
	},
}
