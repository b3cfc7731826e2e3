/*
Package badgegrpc verifies Open Badges carried by gRPC requests and maps
verification errors to gRPC status codes.

# Interceptors

	v, _ := badgecheck.New()
	interceptor, err := badgegrpc.New(
	    badgegrpc.WithVerifier(v),
	    badgegrpc.WithExcludedMethods("/badges.v1.Badges/Health"),
	)
	if err != nil {
	    log.Fatal(err)
	}

	server := grpc.NewServer(
	    grpc.UnaryInterceptor(interceptor.UnaryServerInterceptor()),
	)

Requests whose message has a GetBadge() []byte method, as generated for a
`bytes badge` protobuf field, are verified before the handler runs. The
handler reads the result with badgecheck.GetResult(ctx). Recipients come
from a GetRecipients() []string method and from "badge-recipient"
metadata. Messages without a badge pass through untouched.

# Status Codes

DefaultErrorHandler maps verification failures to:
  - InvalidArgument: unreadable input or no badge
  - FailedPrecondition: unknown version, schema violations, failed checks,
    rejected versions
  - Unavailable: a linked badge class or issuer could not be fetched
  - Internal: anything else
*/
package badgegrpc
