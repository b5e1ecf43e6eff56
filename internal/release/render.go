package release

import (
	"regexp"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnknownVariable is returned when a template references a variable
// that the release context does not provide.
var ErrUnknownVariable = errors.New("unknown template variable")

var placeholder = regexp.MustCompile(`\$\{\s*([A-Za-z][A-Za-z0-9_.]*)\s*\}`)

// Variables returns the values a template may reference, keyed by their
// dotted path.
func (c *Context) Variables() map[string]string {
	return map[string]string{
		"nextRelease.version": c.NextRelease.Version,
		"nextRelease.gitTag":  c.NextRelease.GitTag,
		"nextRelease.gitHead": c.NextRelease.GitHead,
		"nextRelease.type":    c.NextRelease.Type.String(),
		"nextRelease.notes":   c.NextRelease.Notes,
		"lastRelease.version": c.LastRelease.Version,
		"lastRelease.gitTag":  c.LastRelease.GitTag,
		"lastRelease.gitHead": c.LastRelease.GitHead,
		"branch.name":         c.Branch,
	}
}

// Render substitutes ${path} placeholders in tmpl with values from vars.
// If escape is non-nil it is applied to every substituted value.
// Every unknown path is reported in a single error.
func Render(tmpl string, vars map[string]string, escape func(string) string) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := placeholder.FindStringSubmatch(m)[1]
		val, ok := vars[key]
		if !ok {
			missing = append(missing, key)
			return m
		}
		if escape != nil {
			return escape(val)
		}
		return val
	})
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", errors.Wrapf(ErrUnknownVariable, "%s", strings.Join(missing, ", "))
	}
	return out, nil
}

// Render renders tmpl against the variables of c.
func (c *Context) Render(tmpl string) (string, error) {
	return Render(tmpl, c.Variables(), nil)
}

// TagName derives the git tag for version using the tag format.
func TagName(format, version string) (string, error) {
	return Render(format, map[string]string{"version": version}, nil)
}

// ValidateTagFormat checks that format contains exactly one ${version} placeholder
// and no other variables.
func ValidateTagFormat(format string) error {
	matches := placeholder.FindAllStringSubmatch(format, -1)
	count := 0
	for _, m := range matches {
		if m[1] != "version" {
			return errors.Wrapf(ErrUnknownVariable, "tag format %q references %s", format, m[1])
		}
		count++
	}
	if count != 1 {
		return errors.Newf("tag format %q must contain ${version} exactly once", format)
	}
	return nil
}

// VersionFromTag extracts the version from tag if it matches format.
// The boolean is false when the tag does not follow the format.
func VersionFromTag(format, tag string) (string, bool) {
	loc := placeholder.FindStringIndex(format)
	if loc == nil {
		return "", false
	}
	prefix := format[:loc[0]]
	suffix := format[loc[1]:]
	if !strings.HasPrefix(tag, prefix) || !strings.HasSuffix(tag, suffix) {
		return "", false
	}
	if len(tag) < len(prefix)+len(suffix) {
		return "", false
	}
	v := tag[len(prefix) : len(tag)-len(suffix)]
	if strings.HasPrefix(v, "v") {
		return "", false
	}
	if _, err := ParseVersion(v); err != nil {
		return "", false
	}
	return v, true
}
