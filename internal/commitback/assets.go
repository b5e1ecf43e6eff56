package commitback

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/thoreinstein/relx/internal/errors"
)

// flattenAssets accepts the forms the assets option may take: a single
// path, a list of paths, or a list that mixes paths and groups of paths.
func flattenAssets(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case bool:
		if v {
			return nil, errors.New("assets: true is not a valid value")
		}
		return []string{}, nil
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		var out []string
		for i, item := range v {
			sub, err := flattenAssets(item)
			if err != nil {
				return nil, errors.Wrapf(err, "assets[%d]", i)
			}
			out = append(out, sub...)
		}
		return out, nil
	}
	return nil, errors.Newf("unsupported asset entry of type %T", raw)
}

// resolveAssets expands glob patterns relative to dir and returns the
// matching files, relative to dir, without duplicates. Patterns that match
// nothing are skipped.
func resolveAssets(dir string, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid asset pattern %q", pattern)
		}
		sort.Strings(matches)
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			rel, err := filepath.Rel(dir, m)
			if err != nil {
				return nil, errors.Wrapf(err, "resolving asset %s", m)
			}
			if !seen[rel] {
				seen[rel] = true
				out = append(out, rel)
			}
		}
	}
	return out, nil
}
