// Package keying derives and checks the short security keys printed in payment
// requests.
//
// A key is HMAC-SHA256(salt, canonical form), truncated to 50 bits and written
// with a 32 letter alphabet that leaves out 0, O, 1 and I. The salt never
// leaves the Deriver; only its fingerprint (SaltID) is exposed.
package keying

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"strings"

	"github.com/okian/matchkey/internal/domain/canonical"
	"github.com/okian/matchkey/internal/domain/model"
)

const (
	// Alphabet lists every character a key may contain.
	Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// Length is the number of characters in a key.
	Length = 10

	// 10 digest bytes encode to 16 characters; the first 10 carry 50 bits.
	digestBytes = 10
	saltIDBytes = 4
	maskVisible = 4
)

var encoding = base32.NewEncoding(Alphabet).WithPadding(base32.NoPadding)

// Key is a derived security key.
type Key string

// String implements fmt.Stringer.
func (k Key) String() string { return string(k) }

// Outcome is the result of checking a candidate key.
type Outcome int

// Verification outcomes.
const (
	OutcomeInvalid Outcome = iota
	OutcomeValid
	OutcomeMalformed
)

// String returns the label used in logs, metrics and JSON.
func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "invalid"
	}
}

// Deriver holds the secret salt. It is immutable and safe for concurrent use.
type Deriver struct {
	salt   []byte
	saltID string
}

// NewDeriver copies salt and returns a Deriver. A blank salt is refused since
// every key would then be computable by anyone.
func NewDeriver(salt []byte) (*Deriver, error) {
	if strings.TrimSpace(string(salt)) == "" {
		return nil, ErrEmptySalt
	}
	s := make([]byte, len(salt))
	copy(s, salt)

	sum := sha256.Sum256(s)
	return &Deriver{salt: s, saltID: hex.EncodeToString(sum[:saltIDBytes])}, nil
}

// SaltID is a short public fingerprint of the salt. Keys derived under
// different SaltIDs are not comparable.
func (d *Deriver) SaltID() string { return d.saltID }

// Derive returns the key for a canonical form.
func (d *Deriver) Derive(form canonical.Form) Key {
	mac := hmac.New(sha256.New, d.salt)
	mac.Write(form.Bytes())
	sum := mac.Sum(nil)
	return Key(encoding.EncodeToString(sum[:digestBytes])[:Length])
}

// DeriveMatch canonicalizes m and derives its key.
func (d *Deriver) DeriveMatch(m model.Match) Key {
	return d.Derive(canonical.Canonicalize(m))
}

// Verify recomputes the key for m and compares it with candidate in constant
// time. Candidates are cleaned first (see Clean); anything that is not a
// well-formed key is reported as OutcomeMalformed.
func (d *Deriver) Verify(m model.Match, candidate string) Outcome {
	cleaned, ok := Clean(candidate)
	if !ok {
		return OutcomeMalformed
	}
	expected := d.DeriveMatch(m)
	if hmac.Equal([]byte(expected), []byte(cleaned)) {
		return OutcomeValid
	}
	return OutcomeInvalid
}

// Clean upper-cases candidate and drops whitespace and "-" group separators.
// It reports false when the result is not a well-formed key.
func Clean(candidate string) (Key, bool) {
	var b strings.Builder
	for _, r := range strings.ToUpper(candidate) {
		switch {
		case r == '-' || r == ' ' || r == '\t' || r == '\n' || r == '\r':
			continue
		case r > 0x7f || !strings.ContainsRune(Alphabet, r):
			return "", false
		}
		b.WriteRune(r)
		if b.Len() > Length {
			return "", false
		}
	}
	if b.Len() != Length {
		return "", false
	}
	return Key(b.String()), true
}

// Mask hides all but the last four characters of k.
func Mask(k Key) string {
	s := string(k)
	if len(s) <= maskVisible {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-maskVisible) + s[len(s)-maskVisible:]
}

// Group renders k in two dash separated halves for reading aloud.
func Group(k Key) string {
	s := string(k)
	if len(s) != Length {
		return s
	}
	return s[:Length/2] + "-" + s[Length/2:]
}
