/*
Package badgecheck verifies Open Badges 0.5, 1.0 and 1.1.

A badge arrives as a baked PNG or SVG image, JSON text, a hosted
assertion URL or an already parsed object. The Verifier determines the
specification version, fetches the linked badge class and issuer,
validates every component against its version's schema and semantic
rules, and checks the hashed recipient identity against the identifiers
the caller vouches for.

# Quick Start

	v, err := badgecheck.New()
	if err != nil {
	    log.Fatalf("failed to create verifier: %v", err)
	}

	result, err := v.Verify(ctx, pngBytes,
	    badgecheck.WithRecipients("student@example.org"),
	)
	if err != nil {
	    log.Printf("badge rejected: %v", err)
	    return
	}
	fmt.Println(result.Version, result.Report.MatchedIdentifier)

# Architecture

The root package is a facade over the framework-agnostic core engine:

	badgecheck (Verifier, HTTP + gin handlers, metrics, tracing)
	    │
	    ▼
	core (normalize → classify → resolve → validate, error taxonomy)
	    │
	    ▼
	bakery, normalize, schema, loader, resolve, validator, recipient

Adapters for other frameworks live under framework/: echo handlers in
framework/echo and gRPC status mapping in framework/grpc.

# Fetching Linked Components

By default linked badge classes and issuers are fetched over HTTP and
cached. The cache honours Cache-Control max-age when it is longer than
the configured TTL and never stores no-store responses:

	v, err := badgecheck.New(
	    badgecheck.WithCacheTTL(10*time.Minute),
	    badgecheck.WithUserAgent("my-service/1.0"),
	)

Tests and offline deployments can supply their own loader:

	v, err := badgecheck.New(
	    badgecheck.WithLoader(loader.StaticLoader{
	        "https://example.org/badge.json":  badgeClass,
	        "https://example.org/issuer.json": issuer,
	    }),
	)

# HTTP Handlers

Handler serves verification as an endpoint; Middleware guards a route and
stores the Result in the request context:

	http.Handle("/verify", v.Handler())
	http.Handle("/claim", v.Middleware(claimHandler))

	func claimHandler(w http.ResponseWriter, r *http.Request) {
	    result := badgecheck.MustGetResult(r.Context())
	    // ...
	}

The badge is read from the request body by default. A JSON body may wrap
the badge with its inputs:

	{"artifact": "https://example.org/assertions/1", "recipients": ["a@example.org"]}

Use WithArtifactExtractor with FormFileArtifactExtractor,
ParameterArtifactExtractor or MultiArtifactExtractor to read it from
elsewhere. Recipients may also be passed as repeated "recipient" query
parameters.

For gin, use GinHandler and GinMiddleware.

# Error Handling

Failures are written by DefaultErrorHandler as JSON:

	{"code": "semantic_invalid", "message": "...", "failures": [...]}

Status codes:
  - 400: no badge in the request, unreadable input, signed badges
  - 422: unknown version, schema violations, failed checks, rejected versions
  - 424: a linked badge class or issuer could not be fetched
  - 500: anything else

# Logging, Metrics and Tracing

Any slog-compatible logger works, and adapters exist for logrus, zap and
zerolog:

	v, err := badgecheck.New(
	    badgecheck.WithLogger(badgecheck.NewLogrusLogger(logrus.StandardLogger())),
	    badgecheck.WithMetrics(badgecheck.NewPrometheusMetrics(prometheus.DefaultRegisterer)),
	    badgecheck.WithTracer(badgecheck.NewOpenTelemetryTracer(otel.Tracer("badgecheck"))),
	)

Every verification increments badgecheck_verifications_total by outcome
and version and observes badgecheck_verification_seconds.

# Command Line

cmd/badgecheck wraps the Verifier:

	badgecheck verify assertion.json --recipient someone@example.org
	badgecheck verify https://example.org/assertions/1.json -o yaml
	badgecheck bake badge.png assertion.json --out baked.png
	badgecheck unbake baked.png
	badgecheck hash someone@example.org
	badgecheck serve --addr :8080
*/
package badgecheck
