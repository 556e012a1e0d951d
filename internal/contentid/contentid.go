// Package contentid formats and parses the stable content identifiers under which
// assets are addressed, in the form "<scheme>://<namespace>/<record>".
package contentid

import (
	"fmt"
	"strings"

	apperrors "github.com/allisson/assetvault/internal/errors"
)

// DefaultScheme is the scheme used when none is configured.
const DefaultScheme = "nillion"

// ErrMalformed indicates a string that is not a valid content identifier.
var ErrMalformed = apperrors.Wrap(apperrors.ErrBadRequest, "malformed content identifier")

// ID is a parsed content identifier.
type ID struct {
	Scheme    string
	Namespace string
	Record    string
}

// String formats the identifier.
func (id ID) String() string {
	return id.Scheme + "://" + id.Namespace + "/" + id.Record
}

// Codec formats and parses identifiers for one scheme.
type Codec struct {
	scheme string
	prefix string
}

// NewCodec returns a Codec for scheme. An empty scheme uses DefaultScheme.
func NewCodec(scheme string) (*Codec, error) {
	if scheme == "" {
		scheme = DefaultScheme
	}
	if strings.ContainsAny(scheme, ":/ ") {
		return nil, fmt.Errorf("invalid content identifier scheme %q", scheme)
	}
	return &Codec{scheme: scheme, prefix: scheme + "://"}, nil
}

// Scheme returns the codec scheme.
func (c *Codec) Scheme() string {
	return c.scheme
}

// Format builds "<scheme>://<namespace>/<record>". It does not validate its input;
// Parse(Format(ns, r)) returns (ns, r) for any non-empty ns without "/" and non-empty r.
func (c *Codec) Format(namespace, record string) string {
	return c.prefix + namespace + "/" + record
}

// Parse splits an identifier into namespace and record.
//
// The namespace ends at the first "/" after the scheme; everything after it is the
// record, which may itself contain "/". Wrong scheme, empty namespace or empty
// record yield ErrMalformed.
func (c *Codec) Parse(s string) (ID, error) {
	rest, ok := strings.CutPrefix(s, c.prefix)
	if !ok {
		return ID{}, fmt.Errorf("%w: expected %q prefix", ErrMalformed, c.prefix)
	}

	namespace, record, ok := strings.Cut(rest, "/")
	if !ok || namespace == "" || record == "" {
		return ID{}, fmt.Errorf("%w: expected %snamespace/record", ErrMalformed, c.prefix)
	}

	return ID{Scheme: c.scheme, Namespace: namespace, Record: record}, nil
}
