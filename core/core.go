// Package core provides the framework-agnostic badge verification engine
// that the transport adapters (net/http, gin, echo, gRPC, CLI) wrap.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openbadges/badgecheck/badge"
	"github.com/openbadges/badgecheck/bakery"
	"github.com/openbadges/badgecheck/loader"
	"github.com/openbadges/badgecheck/normalize"
	"github.com/openbadges/badgecheck/resolve"
	"github.com/openbadges/badgecheck/schema"
	"github.com/openbadges/badgecheck/validator"
)

// Logger defines an optional logging interface for the core engine.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Result is the outcome of a verification.
type Result struct {
	// Version is the key of the specification version the badge matched.
	Version string `json:"version"`

	// ContextAware is true when the version came from a declared @context.
	ContextAware bool `json:"contextAware"`

	// InstanceURL is the hosted location of the assertion, when known.
	InstanceURL string `json:"instanceUrl,omitempty"`

	Graph  *badge.Graph      `json:"graph,omitempty"`
	Report *validator.Report `json:"report,omitempty"`
}

// Valid reports whether the badge passed every error-severity check.
func (r *Result) Valid() bool {
	return r != nil && r.Report != nil && r.Report.Valid()
}

// Core is the badge verification engine. It is safe for concurrent use.
type Core struct {
	detector  *schema.Detector
	loader    loader.Loader
	resolver  *resolve.Resolver
	validator *validator.Validator
	logger    Logger

	validatorOpts []validator.Option
	rejectLegacy  bool
}

// Verify runs the full pipeline over artifact: normalize, classify,
// resolve linked components, then validate.
//
// Errors are one of the kinds declared in errors.go. On a ResourceError
// the result holds the partially resolved graph and no report. On a
// structural or semantic failure the result holds the graph and the full
// report.
func (c *Core) Verify(ctx context.Context, artifact any, opts ...VerifyOption) (*Result, error) {
	cfg := &verifyConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	start := time.Now()
	result, err := c.verify(ctx, artifact, cfg)
	duration := time.Since(start)

	if err != nil {
		if c.logger != nil {
			c.logger.Warn("Badge verification failed",
				"error", err, "code", ErrorCode(err), "version", versionOf(result), "duration", duration)
		}
		return result, err
	}

	if c.logger != nil {
		c.logger.Debug("Badge verified successfully",
			"version", result.Version, "matched", result.Report.MatchedIdentifier != "", "duration", duration)
	}
	return result, nil
}

func versionOf(r *Result) string {
	if r == nil {
		return ""
	}
	return r.Version
}

func (c *Core) verify(ctx context.Context, artifact any, cfg *verifyConfig) (*Result, error) {
	obj, err := normalize.Normalize(artifact)
	if err != nil {
		return nil, formatError(err)
	}
	if p, ok := obj.(normalize.Pointer); ok {
		obj = string(p)
	}

	detection, err := c.detector.Detect(obj)
	if err != nil {
		return nil, &ClassificationError{
			Code:    ErrorCodeVersionUnclassifiable,
			Message: "could not determine the badge version",
			Details: err,
		}
	}
	desc := detection.Descriptor
	result := &Result{Version: desc.Key, ContextAware: detection.ContextAware}

	if c.logger != nil {
		c.logger.Debug("Badge classified", "version", desc.Key, "contextAware", detection.ContextAware)
	}

	m, ok := obj.(map[string]any)
	if !ok {
		// Only a hosted-assertion URL classifies without being an object.
		url, _ := obj.(string)
		return result, &UnsupportedVersionError{Version: desc.Key, URL: url}
	}
	if detection.Type != badge.RoleAssertion {
		return result, &ClassificationError{
			Code:    ErrorCodeUnexpectedType,
			Message: fmt.Sprintf("expected an assertion, got a %s", detection.Type),
		}
	}

	assertion := &badge.Component{Role: badge.RoleAssertion, Object: m, Version: desc.Key}
	result.InstanceURL = cfg.instanceURL
	if result.InstanceURL == "" {
		result.InstanceURL = normalize.InstanceURL(m)
	}

	graph, err := c.resolver.Resolve(ctx, assertion)
	result.Graph = graph
	if err != nil {
		var fetchErr *resolve.FetchError
		if errors.As(err, &fetchErr) {
			return result, &ResourceError{URL: fetchErr.URL, Role: fetchErr.Role, Details: fetchErr.Err}
		}
		return result, err
	}

	result.Report = c.validator.Validate(graph, validator.Input{
		Recipients:  cfg.recipients,
		InstanceURL: result.InstanceURL,
	})

	if err := reportError(result.Report); err != nil {
		return result, err
	}

	if c.rejectLegacy && desc.Family == schema.FamilyPre1 {
		return result, &UnsupportedVersionError{Version: desc.Key}
	}
	return result, nil
}

// formatError maps a normalization failure to a FormatError.
func formatError(err error) error {
	code, msg := ErrorCodeFormatInvalid, "could not read badge input"
	switch {
	case errors.Is(err, normalize.ErrSignedBadge):
		code, msg = ErrorCodeSignedBadgeUnsupported, "signed badges are not supported"
	case errors.Is(err, bakery.ErrNotBaked):
		code, msg = ErrorCodeImageNotBaked, "image does not contain badge data"
	}
	return &FormatError{Code: code, Message: msg, Details: err}
}

// reportError turns a failing report into a StructuralValidationError,
// when a structural check failed, or a SemanticValidationError.
func reportError(report *validator.Report) error {
	failures := report.Errors()
	if len(failures) == 0 {
		return nil
	}

	for _, check := range failures {
		if role, ok := strings.CutPrefix(check.Name, "structure."); ok {
			violations := check.Violations
			if len(violations) == 0 {
				violations = []schema.Violation{{Field: "/", Constraint: "resolve", Message: check.Message}}
			}
			return &StructuralValidationError{Role: badge.Role(role), Violations: violations}
		}
	}

	out := &SemanticValidationError{}
	for _, check := range failures {
		out.Failures = append(out.Failures, Failure{Check: check.Name, Message: check.Message})
	}
	return out
}
