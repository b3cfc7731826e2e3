package validator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/openbadges/badgecheck/badge"
	"github.com/openbadges/badgecheck/recipient"
	"github.com/openbadges/badgecheck/schema"
)

// Rule names.
const (
	RuleSameVersion        = "components_have_same_version"
	RuleBelongsToRecipient = "badge_belongs_to_recipient"
	RuleHostedURL          = "assertion_has_hosted_url"
	RuleIssuerDomain       = "issuer_and_assertion_domains_match"
	RuleSameDomain         = "components_have_same_domain"
)

// Rule is one semantic check. Check returns nil when the badge passes.
type Rule struct {
	Name     string
	Severity Severity
	Check    func(*RuleContext) error
}

// RuleContext is what a rule may inspect.
type RuleContext struct {
	Graph      *badge.Graph
	Input      Input
	Descriptor *schema.Descriptor

	report *Report
}

// SetMatchedIdentifier records the recipient identifier a rule matched.
func (rc *RuleContext) SetMatchedIdentifier(id string) {
	rc.report.MatchedIdentifier = id
}

func (r Rule) run(rc *RuleContext) (check Check) {
	check = Check{Name: r.Name, Severity: r.Severity}
	defer func() {
		if p := recover(); p != nil {
			check.Passed = false
			check.Message = fmt.Sprintf("check failed unexpectedly: %v", p)
		}
	}()

	if err := r.Check(rc); err != nil {
		check.Message = err.Error()
		return check
	}
	check.Passed = true
	return check
}

// Pre1Rules returns the rule table for 0.5 and backpack-rewritten badges.
func Pre1Rules() []Rule {
	return []Rule{
		{Name: RuleSameVersion, Severity: SeverityError, Check: checkSameVersion},
		{Name: RuleBelongsToRecipient, Severity: SeverityError, Check: checkBelongsToRecipient},
		{Name: RuleHostedURL, Severity: SeverityError, Check: checkHostedURL},
		{Name: RuleIssuerDomain, Severity: SeverityWarning, Check: checkIssuerDomain},
	}
}

// V1Rules returns the rule table for 1.0 and 1.1 badges.
func V1Rules() []Rule {
	return []Rule{
		{Name: RuleSameVersion, Severity: SeverityError, Check: checkSameVersion},
		{Name: RuleBelongsToRecipient, Severity: SeverityError, Check: checkBelongsToRecipient},
		{Name: RuleSameDomain, Severity: SeverityError, Check: checkSameDomain},
	}
}

func checkSameVersion(rc *RuleContext) error {
	want := rc.Graph.Assertion.Version

	var mismatched []string
	for _, c := range rc.Graph.Components() {
		if c.Version != want {
			version := c.Version
			if version == "" {
				version = "unknown"
			}
			mismatched = append(mismatched, fmt.Sprintf("%s is %s", c.Role, version))
		}
	}
	if len(mismatched) > 0 {
		return fmt.Errorf("components assembled with different specification versions: assertion is %s, %s",
			want, strings.Join(mismatched, ", "))
	}
	return nil
}

func checkBelongsToRecipient(rc *RuleContext) error {
	claim, err := recipient.ParseClaim(rc.Graph.Assertion.Object)
	if err != nil {
		return err
	}

	contract := recipient.CaseInsensitive
	if rc.Descriptor.CaseSensitive {
		contract = recipient.CaseSensitive
	}

	matched, ok := recipient.Verify(claim, rc.Input.Recipients, contract)
	if !ok {
		return errors.New("the badge does not belong to any of the given recipient identifiers")
	}
	rc.SetMatchedIdentifier(matched)
	return nil
}

func hostedURL(rc *RuleContext) string {
	if rc.Input.InstanceURL != "" {
		return rc.Input.InstanceURL
	}
	return rc.Graph.Assertion.URL
}

// checkHostedURL rejects a 0.5 assertion whose hosted URL is unknown.
// Backpack-rewritten and plain URL assertions are exempt.
func checkHostedURL(rc *RuleContext) error {
	if rc.Descriptor == nil || rc.Descriptor.Key != schema.KeyV05 {
		return nil
	}
	if hostedURL(rc) == "" {
		return errors.New("cannot verify a v0.5 badge without its hosted URL")
	}
	return nil
}

func checkIssuerDomain(rc *RuleContext) error {
	instanceURL := hostedURL(rc)
	if instanceURL == "" {
		return errors.New("cannot compare the issuer domain without the hosted URL of the assertion")
	}

	issuer := rc.Graph.Get(badge.RoleIssuer)
	origin := issuer.String("origin")
	if origin == "" {
		origin = issuer.String("url")
	}
	if origin == "" {
		return errors.New("issuer has no origin to compare with the assertion host")
	}

	same, err := SameDomain(origin, instanceURL)
	if err != nil {
		return err
	}
	if !same {
		return errors.New("the URL of the issuer does not match the verifiable host of the assertion")
	}
	return nil
}

func checkSameDomain(rc *RuleContext) error {
	a := rc.Graph.Assertion

	var resources []string
	if verify, ok := a.Object["verify"].(map[string]any); ok {
		if u, _ := verify["url"].(string); u != "" {
			resources = append(resources, u)
		}
	}
	for _, key := range []string{"badge", "url", "id", "@id"} {
		if u := a.String(key); u != "" {
			resources = append(resources, u)
		}
	}

	domains := make(map[string]struct{})
	for _, u := range resources {
		d, err := Domain(u)
		if err != nil {
			return err
		}
		domains[d] = struct{}{}
	}
	if len(domains) > 1 {
		found := make([]string, 0, len(domains))
		for d := range domains {
			found = append(found, d)
		}
		sort.Strings(found)
		return fmt.Errorf("component resource references don't share the same domain: %s", strings.Join(found, ", "))
	}
	return nil
}
