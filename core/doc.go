/*
Package core is the framework-agnostic badge verification engine.

The Core type runs the whole pipeline without depending on any transport,
so the same verification code backs the net/http, gin, echo and gRPC
adapters and the command line tool.

# Architecture

	┌─────────────────────────────────────────────┐
	│         Transport Adapters                  │
	│  (net/http, Gin, Echo, gRPC, CLI)           │
	└────────────────┬────────────────────────────┘
	                 │
	                 ▼
	┌─────────────────────────────────────────────┐
	│          Core Engine (THIS PACKAGE)         │
	│  normalize → classify → resolve → validate  │
	│  • Error taxonomy                           │
	│  • Logger Integration                       │
	└────────────────┬────────────────────────────┘
	                 │
	                 ▼
	┌─────────────────────────────────────────────┐
	│  bakery, normalize, schema, resolve,        │
	│  validator, recipient, loader               │
	└─────────────────────────────────────────────┘

# Basic Usage

	httpLoader, err := loader.NewHTTPLoader()
	if err != nil {
	    log.Fatal(err)
	}

	c, err := core.New(core.WithLoader(httpLoader))
	if err != nil {
	    log.Fatal(err)
	}

	result, err := c.Verify(ctx, pngBytes,
	    core.WithRecipients("student@example.org"),
	)

# Error Handling

Every error returned by Verify matches one sentinel:

	result, err := c.Verify(ctx, input)
	switch {
	case errors.Is(err, core.ErrFormat):
	    // not a badge, an image without a badge, or a signed badge
	case errors.Is(err, core.ErrClassification):
	    // no known version matches
	case errors.Is(err, core.ErrResource):
	    // a linked badge class or issuer could not be fetched;
	    // result.Graph holds what was resolved
	case errors.Is(err, core.ErrStructuralValidation),
	    errors.Is(err, core.ErrSemanticValidation):
	    // result.Report lists every check
	case errors.Is(err, core.ErrUnsupportedVersion):
	    // bare URL input, or a legacy badge with WithRejectLegacyVersions
	}

ErrorCode returns a stable machine-readable code for any of them.

# Context Helpers

Adapters store results in the request context:

	ctx = core.SetResult(ctx, result)

	result, err := core.GetResult(ctx)
	if err != nil {
	    // no verification ran for this request
	}
*/
package core
