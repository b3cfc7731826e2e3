package badgegrpc

import (
	"context"

	"google.golang.org/grpc/metadata"

	"github.com/openbadges/badgecheck"
)

// RecipientMetadataKey is the metadata key that carries the identifiers a
// badge is verified against. It may be repeated.
const RecipientMetadataKey = "badge-recipient"

// ArtifactExtractor returns the badge carried by a request message, or nil
// when the message carries none.
type ArtifactExtractor func(ctx context.Context, req any) (*badgecheck.Request, error)

// badgeMessage is implemented by generated messages with a bytes badge
// field.
type badgeMessage interface {
	GetBadge() []byte
}

// recipientsMessage is implemented by generated messages with a repeated
// string recipients field.
type recipientsMessage interface {
	GetRecipients() []string
}

// MessageArtifactExtractor reads the badge from the message's GetBadge
// method, and recipients from its GetRecipients method and the request
// metadata.
func MessageArtifactExtractor(ctx context.Context, req any) (*badgecheck.Request, error) {
	msg, ok := req.(badgeMessage)
	if !ok {
		return nil, nil
	}
	badge := msg.GetBadge()
	if len(badge) == 0 {
		return nil, nil
	}

	out := &badgecheck.Request{Artifact: badge}
	if r, ok := req.(recipientsMessage); ok {
		out.Recipients = append(out.Recipients, r.GetRecipients()...)
	}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		out.Recipients = append(out.Recipients, md.Get(RecipientMetadataKey)...)
	}
	return out, nil
}
