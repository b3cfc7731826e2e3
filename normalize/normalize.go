// Package normalize coerces heterogeneous badge input into the form the
// rest of the verifier works with.
//
// Detection order for text input:
//  1. JSON document            -> map[string]any (or other JSON value)
//  2. HTTP(S) URL              -> Pointer
//  3. three-part dotted token  -> ErrSignedBadge
//
// Byte input carrying a PNG or SVG container is unbaked first and the
// extracted text goes through the same steps. Values that are already
// normalized are returned unchanged.
package normalize

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
	"github.com/lestrrat-go/jwx/v2/jws"

	"github.com/openbadges/badgecheck/bakery"
)

// Pointer is an unresolved reference to a hosted badge object.
type Pointer string

var (
	// ErrUnrecognized is returned for input that is neither JSON, a URL,
	// a signed token nor a baked image.
	ErrUnrecognized = errors.New("unrecognized badge input")

	// ErrSignedBadge is returned for signed (JWS) badges, which are not
	// supported yet.
	ErrSignedBadge = errors.New("signed badges are not supported")
)

// FormatError describes why input could not be normalized.
type FormatError struct {
	// Input names the kind of input that was rejected, e.g. "image" or "text".
	Input string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("could not normalize %s input: %s", e.Input, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

var (
	urlPattern   = regexp.MustCompile(`^(?i)https?://\S+$`)
	tokenPattern = regexp.MustCompile(`^[\w-]+\.[\w-]+\.[\w-]+$`)
)

// Normalize converts input into a parsed JSON value or a Pointer.
//
// Accepted inputs are string and []byte (JSON text, URL text, signed
// token text, or baked PNG/SVG bytes), map[string]any, []any, numeric
// values and Pointer. Anything else yields a *FormatError.
func Normalize(input any) (any, error) {
	switch v := input.(type) {
	case map[string]any, []any, Pointer:
		return v, nil
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return v, nil
	case string:
		return normalizeText(v)
	case []byte:
		return normalizeBytes(v)
	case nil:
		return nil, &FormatError{Input: "empty", Err: ErrUnrecognized}
	default:
		return nil, &FormatError{Input: fmt.Sprintf("%T", input), Err: ErrUnrecognized}
	}
}

func normalizeBytes(b []byte) (any, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		if v, ok := parseJSON(trimmed); ok {
			return v, nil
		}
	}

	if bakery.IsImage(b) {
		payload, err := bakery.Unbake(b)
		if err != nil {
			return nil, &FormatError{Input: "image", Err: err}
		}
		return normalizeText(payload)
	}

	return normalizeText(string(b))
}

func normalizeText(s string) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, &FormatError{Input: "text", Err: ErrUnrecognized}
	}

	if v, ok := parseJSON([]byte(s)); ok {
		return v, nil
	}

	if urlPattern.MatchString(s) {
		return Pointer(s), nil
	}

	if tokenPattern.MatchString(s) {
		return nil, &FormatError{Input: "token", Err: signedBadgeError(s)}
	}

	return nil, &FormatError{Input: "text", Err: ErrUnrecognized}
}

func parseJSON(b []byte) (any, bool) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false
	}
	// A bare JSON string is still text: "http://..." must become a Pointer.
	if s, ok := v.(string); ok {
		if r, err := normalizeText(s); err == nil {
			return r, true
		}
		return nil, false
	}
	return v, true
}

// signedBadgeError names the signing algorithm when the token parses as a
// compact JWS.
func signedBadgeError(token string) error {
	msg, err := jws.Parse([]byte(token))
	if err != nil || len(msg.Signatures()) == 0 {
		return ErrSignedBadge
	}
	alg := msg.Signatures()[0].ProtectedHeaders().Algorithm()
	return fmt.Errorf("%w (alg %s)", ErrSignedBadge, alg)
}

// InstanceURL returns the URL an assertion is hosted at, looking in the
// places the different specification versions put it: id, @id, then
// verify.url. It returns "" when none is present.
func InstanceURL(assertion map[string]any) string {
	for _, key := range []string{"id", "@id"} {
		if s, ok := assertion[key].(string); ok && s != "" {
			return s
		}
	}
	if verify, ok := assertion["verify"].(map[string]any); ok {
		if s, ok := verify["url"].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
