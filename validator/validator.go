package validator

import (
	"errors"
	"fmt"

	"github.com/openbadges/badgecheck/badge"
	"github.com/openbadges/badgecheck/schema"
)

// Input is the caller-supplied context of a validation.
type Input struct {
	// Recipients are identifiers the caller has verified as belonging to
	// the person presenting the badge.
	Recipients []string

	// InstanceURL is where the assertion is hosted, when known.
	InstanceURL string
}

// Validator runs structural and semantic checks over a badge.Graph.
type Validator struct {
	registry *schema.Registry
	rules    map[schema.Family][]Rule
}

// New returns a Validator resolving versions through registry, with the
// default rule table for each version family.
func New(registry *schema.Registry, opts ...Option) (*Validator, error) {
	if registry == nil {
		return nil, errors.New("registry is required but was nil")
	}

	v := &Validator{
		registry: registry,
		rules: map[schema.Family][]Rule{
			schema.FamilyPre1: Pre1Rules(),
			schema.FamilyV1:   V1Rules(),
		},
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return v, nil
}

// Validate checks graph and returns the full report. It never returns nil.
func (v *Validator) Validate(graph *badge.Graph, in Input) *Report {
	assertion := graph.Get(badge.RoleAssertion)
	if assertion == nil {
		return &Report{Checks: []Check{{
			Name:     structureCheckName(badge.RoleAssertion),
			Severity: SeverityError,
			Message:  "assertion is missing",
		}}}
	}
	report := &Report{Version: assertion.Version}

	desc, ok := v.registry.Lookup(assertion.Version)
	if !ok {
		report.add(Check{
			Name:     structureCheckName(badge.RoleAssertion),
			Severity: SeverityError,
			Message:  fmt.Sprintf("unknown specification version %q", assertion.Version),
		})
		return report
	}

	v.validateStructure(graph, desc, report)

	rc := &RuleContext{
		Graph:      graph,
		Input:      in,
		Descriptor: desc,
		report:     report,
	}
	for _, rule := range v.rules[desc.Family] {
		report.add(rule.run(rc))
	}

	return report
}

func structureCheckName(role badge.Role) string {
	return "structure." + string(role)
}

// validateStructure checks each component against the schema of its own
// version, or the assertion's when it could not be classified. The first
// failure ends the phase.
func (v *Validator) validateStructure(graph *badge.Graph, assertionDesc *schema.Descriptor, report *Report) {
	for _, role := range badge.Roles {
		check := Check{Name: structureCheckName(role), Severity: SeverityError}

		c := graph.Get(role)
		if c == nil {
			check.Message = fmt.Sprintf("%s could not be resolved", role)
			report.add(check)
			return
		}

		desc := assertionDesc
		if d, ok := v.registry.Lookup(c.Version); ok {
			desc = d
		}

		err := desc.Validate(c.Object, role)
		if err == nil {
			check.Passed = true
			report.add(check)
			continue
		}

		check.Message = fmt.Sprintf("%s does not conform to %s", role, desc.Key)
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			check.Violations = verr.Violations
		}
		report.add(check)
		return
	}
}
