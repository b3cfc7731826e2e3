package core

import (
	"errors"
	"fmt"

	"github.com/openbadges/badgecheck/loader"
	"github.com/openbadges/badgecheck/resolve"
	"github.com/openbadges/badgecheck/schema"
	"github.com/openbadges/badgecheck/validator"
)

// Option is a function that configures the Core.
// Options return errors to enable validation during construction.
type Option func(*Core) error

// New creates a new Core instance with the provided options.
//
// The Core must be configured with a document loader using WithLoader.
// All other options are optional and will use sensible defaults if not
// provided.
//
// Example:
//
//	httpLoader, _ := loader.NewHTTPLoader()
//	c, err := core.New(
//	    core.WithLoader(httpLoader),
//	    core.WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
func New(opts ...Option) (*Core, error) {
	c := &Core{}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.loader == nil {
		return nil, errors.New("loader is required but not set (use WithLoader option)")
	}

	if c.detector == nil {
		d, err := schema.DefaultDetector()
		if err != nil {
			return nil, fmt.Errorf("loading schema definitions: %w", err)
		}
		c.detector = d
	}

	r, err := resolve.NewResolver(c.detector, c.loader)
	if err != nil {
		return nil, err
	}
	c.resolver = r

	v, err := validator.New(c.detector.Registry(), c.validatorOpts...)
	if err != nil {
		return nil, err
	}
	c.validator = v

	return c, nil
}

// WithLoader sets the loader used to fetch linked badge classes and
// issuers. This is a required option.
func WithLoader(l loader.Loader) Option {
	return func(c *Core) error {
		if l == nil {
			return errors.New("loader cannot be nil")
		}
		c.loader = l
		return nil
	}
}

// WithLogger sets an optional logger for the Core.
//
// When configured, the Core logs classification results and the outcome
// and duration of every verification.
func WithLogger(logger Logger) Option {
	return func(c *Core) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithDetector replaces the default version detector, for example to
// register additional specification versions.
func WithDetector(d *schema.Detector) Option {
	return func(c *Core) error {
		if d == nil {
			return errors.New("detector cannot be nil")
		}
		c.detector = d
		return nil
	}
}

// WithRejectLegacyVersions makes Verify return an UnsupportedVersionError
// for badges older than 1.0, even when they pass every check. The result
// is still returned alongside the error.
func WithRejectLegacyVersions(reject bool) Option {
	return func(c *Core) error {
		c.rejectLegacy = reject
		return nil
	}
}

// WithValidatorOptions passes options to the validator, such as extra
// semantic rules.
func WithValidatorOptions(opts ...validator.Option) Option {
	return func(c *Core) error {
		c.validatorOpts = append(c.validatorOpts, opts...)
		return nil
	}
}

// VerifyOption configures a single Verify call.
type VerifyOption func(*verifyConfig)

type verifyConfig struct {
	recipients  []string
	instanceURL string
}

// WithRecipients sets the identifiers the caller has verified as belonging
// to the badge holder. A badge only verifies when its recipient matches
// one of them.
func WithRecipients(identifiers ...string) VerifyOption {
	return func(c *verifyConfig) {
		c.recipients = append(c.recipients, identifiers...)
	}
}

// WithInstanceURL sets where the assertion is hosted. Pre-1.0 badges need
// it to compare the issuer's domain with the assertion's.
func WithInstanceURL(url string) VerifyOption {
	return func(c *verifyConfig) {
		c.instanceURL = url
	}
}
