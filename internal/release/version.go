package release

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/mod/semver"
)

// FirstVersion is used when a repository has never been released.
const FirstVersion = "1.0.0"

// Version is a release version without prerelease or build metadata.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses "1.2.3" or "v1.2.3". Prerelease and build suffixes
// are rejected because they are never produced by a release.
func ParseVersion(s string) (Version, error) {
	v := s
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) || strings.Count(v, ".") < 2 {
		return Version{}, errors.Newf("invalid version %q", s)
	}
	if semver.Prerelease(v) != "" || semver.Build(v) != "" {
		return Version{}, errors.Newf("version %q is not a release version", s)
	}

	parts := strings.SplitN(strings.TrimPrefix(v, "v"), ".", 3)
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, errors.Wrapf(err, "parsing version %q", s)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String formats v as MAJOR.MINOR.PATCH.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Bump returns the version that follows v for a release of type t.
// A None bump returns v unchanged.
func (v Version) Bump(t Type) Version {
	switch t {
	case Major:
		return Version{Major: v.Major + 1}
	case Minor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	case Patch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
	return v
}

// NextVersion computes the next version string from the last released
// version and the release type. An empty last version yields FirstVersion.
func NextVersion(last string, t Type) (string, error) {
	if last == "" {
		return FirstVersion, nil
	}
	v, err := ParseVersion(last)
	if err != nil {
		return "", err
	}
	return v.Bump(t).String(), nil
}

// CompareVersions compares two versions with semver precedence.
// The result is -1, 0 or +1.
func CompareVersions(a, b string) int {
	return semver.Compare(canonical(a), canonical(b))
}

func canonical(s string) string {
	if strings.HasPrefix(s, "v") {
		return s
	}
	return "v" + s
}
