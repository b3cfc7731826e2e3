package validator

import "github.com/openbadges/badgecheck/schema"

// Severity is how a failed check affects the report.
type Severity string

// Check severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Check is the outcome of one structural or semantic check.
type Check struct {
	Name     string   `json:"name"`
	Passed   bool     `json:"passed"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message,omitempty"`

	// Violations lists the schema constraints a structural check failed.
	Violations []schema.Violation `json:"violations,omitempty"`
}

// Report is the ordered list of checks run against a badge.
type Report struct {
	// Version is the key of the version the assertion was validated as.
	Version string  `json:"version"`
	Checks  []Check `json:"checks"`

	// MatchedIdentifier is the caller identifier the recipient matched.
	MatchedIdentifier string `json:"matchedIdentifier,omitempty"`
}

// Valid reports whether no error-severity check failed.
func (r *Report) Valid() bool {
	return len(r.Errors()) == 0
}

// Errors returns the failed error-severity checks.
func (r *Report) Errors() []Check {
	return r.failed(SeverityError)
}

// Warnings returns the failed warning-severity checks.
func (r *Report) Warnings() []Check {
	return r.failed(SeverityWarning)
}

// Check returns the check named name.
func (r *Report) Check(name string) (Check, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}

func (r *Report) failed(severity Severity) []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Passed && c.Severity == severity {
			out = append(out, c)
		}
	}
	return out
}

func (r *Report) add(c Check) {
	r.Checks = append(r.Checks, c)
}
