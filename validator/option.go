package validator

import (
	"errors"
	"fmt"

	"github.com/openbadges/badgecheck/schema"
)

// Option is how options for the Validator are set up.
// Options return errors to enable validation during construction.
type Option func(*Validator) error

// WithRules replaces the rule table used for a version family.
func WithRules(family schema.Family, rules ...Rule) Option {
	return func(v *Validator) error {
		if family != schema.FamilyPre1 && family != schema.FamilyV1 {
			return fmt.Errorf("unknown version family %q", family)
		}
		for _, r := range rules {
			if r.Name == "" || r.Check == nil {
				return errors.New("rules need a name and a check")
			}
		}
		v.rules[family] = rules
		return nil
	}
}

// WithAdditionalRules appends rules to the table of a version family.
func WithAdditionalRules(family schema.Family, rules ...Rule) Option {
	return func(v *Validator) error {
		merged := append(append([]Rule(nil), v.rules[family]...), rules...)
		return WithRules(family, merged...)(v)
	}
}
