package release

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Type classifies how significant a set of changes is.
// The zero value is None, and the values are ordered by severity.
type Type int

const (
	// None means no release is necessary.
	None Type = iota
	// Patch is a backwards-compatible bug fix.
	Patch
	// Minor is a backwards-compatible feature.
	Minor
	// Major is an incompatible change.
	Major
)

var typeNames = map[Type]string{
	None:  "none",
	Patch: "patch",
	Minor: "minor",
	Major: "major",
}

// String returns the lower-case name of t.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseType converts a level name into a Type.
// "false" and the empty string both mean None, matching the release rule syntax
// where `release: false` suppresses a release.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "false":
		return None, nil
	case "patch":
		return Patch, nil
	case "minor":
		return Minor, nil
	case "major":
		return Major, nil
	}
	return None, errors.Newf("unknown release type %q", s)
}

// MaxType returns the more severe of a and b.
func MaxType(a, b Type) Type {
	if a > b {
		return a
	}
	return b
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
