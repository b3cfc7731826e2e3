/*
Package validator checks a resolved badge graph.

Validation runs in two phases. The structural phase validates the
assertion, badge class and issuer, in that order, against the JSON Schema
of the version each was classified as; the first component that fails
stops the phase. The semantic phase then runs every rule of the rule table
for the assertion's version family, whatever the structural outcome.

# Rule tables

Pre-1.0 badges (0.5, the backpack-rewritten 1.0 form and plain URLs):

  - components_have_same_version (error)
  - badge_belongs_to_recipient (error)
  - assertion_has_hosted_url (error, 0.5 only)
  - issuer_and_assertion_domains_match (warning)

1.0 and 1.1 badges:

  - components_have_same_version (error)
  - badge_belongs_to_recipient (error)
  - components_have_same_domain (error)

Each rule is isolated: a rule that fails or panics is recorded as a failed
check and the remaining rules still run.

# Domains

Domains are compared by host name only. Scheme and port are ignored, the
host is lowercased, a trailing dot is dropped and internationalized names
are converted to their ASCII (punycode) form, so "Bücher.example" and
"xn--bcher-kva.example" are the same domain.

# Usage

	v, err := validator.New(schema.MustDefault())
	if err != nil {
	    return err
	}
	report := v.Validate(graph, validator.Input{
	    Recipients:  []string{"student@example.org"},
	    InstanceURL: "https://example.org/assertions/1",
	})
	if !report.Valid() {
	    for _, check := range report.Errors() {
	        log.Println(check.Name, check.Message)
	    }
	}
*/
package validator
