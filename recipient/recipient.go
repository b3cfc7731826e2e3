// Package recipient checks that a badge was issued to one of a caller's
// identifiers, and produces the salted digests issuers publish in place of
// the plaintext identifier.
package recipient

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Supported digest algorithms, as they appear before the "$" of a hashed
// identity.
const (
	SHA256 = "sha256"
	MD5    = "md5"
)

var (
	// ErrNoRecipient is returned when an assertion carries no usable
	// recipient identity.
	ErrNoRecipient = errors.New("assertion has no recipient identity")

	// ErrUnsupportedAlgorithm is returned for digest prefixes other than
	// sha256 and md5.
	ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")
)

// Contract is how plaintext identifiers are compared.
type Contract int

const (
	// CaseSensitive compares identifiers byte for byte.
	CaseSensitive Contract = iota
	// CaseInsensitive compares NFC-normalized, case-folded identifiers.
	CaseInsensitive
)

func (c Contract) String() string {
	if c == CaseInsensitive {
		return "case-insensitive"
	}
	return "case-sensitive"
}

// Claim is the recipient identity an assertion declares.
type Claim struct {
	// Type is the identity type, usually "email". Empty for 0.5 badges.
	Type string `json:"type,omitempty"`

	Hashed    bool   `json:"hashed"`
	Algorithm string `json:"algorithm,omitempty"`
	Salt      string `json:"salt,omitempty"`

	// Digest is the lowercase hex digest, without the algorithm prefix.
	Digest string `json:"digest,omitempty"`

	// Plaintext is the identifier of an unhashed claim.
	Plaintext string `json:"plaintext,omitempty"`
}

// Identity renders the claim the way it is written in an assertion.
func (c Claim) Identity() string {
	if c.Hashed {
		return c.Algorithm + "$" + c.Digest
	}
	return c.Plaintext
}

// ParseClaim reads the recipient of an assertion. Both the 0.5 form, a
// string with the salt at the top level, and the 1.0 object form
// {identity, hashed, salt, type} are accepted.
func ParseClaim(assertion map[string]any) (Claim, error) {
	switch r := assertion["recipient"].(type) {
	case string:
		salt, _ := assertion["salt"].(string)
		return parseIdentity(r, salt, nil)

	case map[string]any:
		identity, _ := r["identity"].(string)
		salt, _ := r["salt"].(string)
		var hashed *bool
		if h, ok := r["hashed"].(bool); ok {
			hashed = &h
		}
		claim, err := parseIdentity(identity, salt, hashed)
		if err != nil {
			return Claim{}, err
		}
		claim.Type, _ = r["type"].(string)
		return claim, nil
	}
	return Claim{}, ErrNoRecipient
}

// parseIdentity splits identity into algorithm and digest. When hashed is
// nil it is inferred from a known algorithm prefix.
func parseIdentity(identity, salt string, hashed *bool) (Claim, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return Claim{}, ErrNoRecipient
	}

	alg, digest, found := strings.Cut(identity, "$")
	isHashed := found && newHash(strings.ToLower(alg)) != nil
	if hashed != nil {
		if *hashed && !found {
			return Claim{}, fmt.Errorf("hashed identity %q has no algorithm prefix: %w", identity, ErrUnsupportedAlgorithm)
		}
		if *hashed && !isHashed {
			return Claim{}, fmt.Errorf("%q: %w", alg, ErrUnsupportedAlgorithm)
		}
		isHashed = *hashed
	}

	if !isHashed {
		return Claim{Plaintext: identity, Salt: salt}, nil
	}
	return Claim{
		Hashed:    true,
		Algorithm: strings.ToLower(alg),
		Salt:      salt,
		Digest:    strings.ToLower(digest),
	}, nil
}

// Verify returns the first candidate the claim was issued to. Hashed claims
// are checked by recomputing hex(digest(candidate + salt)); plaintext claims
// by comparing under contract. Under CaseInsensitive a hashed claim also
// accepts the lowercased candidate.
func Verify(claim Claim, candidates []string, contract Contract) (string, bool) {
	for _, candidate := range candidates {
		if matches(claim, candidate, contract) {
			return candidate, true
		}
	}
	return "", false
}

func matches(claim Claim, candidate string, contract Contract) bool {
	if !claim.Hashed {
		return equalPlaintext(claim.Plaintext, candidate, contract)
	}

	want, err := hex.DecodeString(claim.Digest)
	if err != nil {
		return false
	}
	if digestMatches(claim.Algorithm, candidate, claim.Salt, want) {
		return true
	}
	if contract == CaseInsensitive {
		lower := cases.Lower(language.Und).String(candidate)
		if lower != candidate {
			return digestMatches(claim.Algorithm, lower, claim.Salt, want)
		}
	}
	return false
}

func digestMatches(alg, identifier, salt string, want []byte) bool {
	got, err := sum(alg, identifier, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(got, want) == 1
}

func equalPlaintext(a, b string, contract Contract) bool {
	if contract == CaseInsensitive {
		a, b = fold(a), fold(b)
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// Hash returns identifier salted and hashed with alg, in the
// "alg$hexdigest" form used by assertions.
func Hash(alg, identifier, salt string) (string, error) {
	alg = strings.ToLower(alg)
	digest, err := sum(alg, identifier, salt)
	if err != nil {
		return "", err
	}
	return alg + "$" + hex.EncodeToString(digest), nil
}

// NewSalt returns a fresh random salt.
func NewSalt() string {
	return uuid.NewString()
}

// NewClaim hashes identifier with sha256 and a new salt. The plaintext is
// not kept in the claim.
func NewClaim(identifier string) Claim {
	salt := NewSalt()
	digest, _ := sum(SHA256, identifier, salt)
	return Claim{
		Type:      "email",
		Hashed:    true,
		Algorithm: SHA256,
		Salt:      salt,
		Digest:    hex.EncodeToString(digest),
	}
}

func sum(alg, identifier, salt string) ([]byte, error) {
	h := newHash(alg)
	if h == nil {
		return nil, fmt.Errorf("%q: %w", alg, ErrUnsupportedAlgorithm)
	}
	h.Write([]byte(identifier + salt))
	return h.Sum(nil), nil
}

func newHash(alg string) hash.Hash {
	switch alg {
	case SHA256:
		return sha256.New()
	case MD5:
		return md5.New()
	}
	return nil
}
