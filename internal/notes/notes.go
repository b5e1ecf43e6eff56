// Package notes implements the release-notes-generator stage. It renders
// Markdown release notes from the commits of a release, grouped into
// Angular sections.
package notes

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/jonboulle/clockwork"

	"github.com/thoreinstein/relx/internal/commit"
	"github.com/thoreinstein/relx/internal/config"
	"github.com/thoreinstein/relx/internal/errors"
	"github.com/thoreinstein/relx/internal/git"
	"github.com/thoreinstein/relx/internal/logging"
	"github.com/thoreinstein/relx/internal/release"
	"github.com/thoreinstein/relx/pkg/fileutil"
)

// Name is the stage name used in logs and errors.
const Name = "release-notes-generator"

// dateLayout formats the release date in the header.
const dateLayout = "2006-01-02"

// Section titles in the order they appear.
const (
	SectionFeatures = "Features"
	SectionFixes    = "Bug Fixes"
	SectionPerf     = "Performance Improvements"
	SectionReverts  = "Reverts"
	SectionBreaking = "BREAKING CHANGES"
)

var sectionOrder = []string{SectionFeatures, SectionFixes, SectionPerf, SectionReverts, SectionBreaking}

var typeSections = map[string]string{
	"feat":   SectionFeatures,
	"fix":    SectionFixes,
	"perf":   SectionPerf,
	"revert": SectionReverts,
}

// Options configures the generator.
type Options struct {
	// Preset selects the commit dialect, as for the analyzer.
	Preset string `mapstructure:"preset"`

	// TemplateFile replaces the built-in Markdown template. Relative paths
	// are resolved against the repository root. The template is executed
	// with a Data value.
	TemplateFile string `mapstructure:"templateFile"`
}

// Entry is one bullet in a section.
type Entry struct {
	Scope string
	Text  string
	Hash  string
	URL   string
}

// Section is a titled group of entries.
type Section struct {
	Title   string
	Entries []Entry
}

// Data is what the notes template is executed with.
type Data struct {
	Version    string
	Date       string
	CompareURL string
	IsPatch    bool
	Sections   []Section
}

// Generator is the release-notes-generator stage.
type Generator struct {
	clock        clockwork.Clock
	tmpl         *template.Template
	templateFile string
	dialect      commit.Dialect
}

// New creates a Generator that dates releases with clock.
func New(clock clockwork.Clock) *Generator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Generator{
		clock: clock,
		tmpl:  template.Must(template.New("notes").Parse(defaultTemplate)),
	}
}

// Factory decodes a plugin option map and builds the stage.
func Factory(clock clockwork.Clock, options map[string]any) (*Generator, error) {
	var opts Options
	if err := config.DecodeOptions(options, &opts); err != nil {
		return nil, err
	}
	g := New(clock)
	g.templateFile = opts.TemplateFile
	g.dialect = commit.DialectFor(opts.Preset)
	return g, nil
}

// Name implements pipeline.Stage.
func (g *Generator) Name() string { return Name }

// Run renders notes for rc.NextRelease and stores them on it.
func (g *Generator) Run(ctx context.Context, rc *release.Context) error {
	logger := logging.FromContext(ctx).With("stage", Name)

	if rc.NextRelease.Version == "" {
		return errors.New("next release version is not set; the commit analyzer must run first")
	}

	out, err := g.Generate(rc)
	if err != nil {
		return err
	}
	rc.NextRelease.Notes = out

	logger.Debug("generated release notes", "bytes", len(out))
	return nil
}

// Generate renders notes for rc without modifying it.
func (g *Generator) Generate(rc *release.Context) (string, error) {
	data := Data{
		Version:  rc.NextRelease.Version,
		Date:     g.clock.Now().Format(dateLayout),
		IsPatch:  rc.NextRelease.Type == release.Patch,
		Sections: Group(commit.ParseAll(rc.Commits, g.dialect), commitURLFunc(rc.RepositoryURL)),
	}
	data.CompareURL = compareURL(rc)

	tmpl, err := g.template(rc.Cwd)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "rendering release notes")
	}
	return strings.TrimRight(buf.String(), "\n") + "\n", nil
}

// Group sorts commits into sections. Sections without entries are left
// out. Commits keep their input order within a section.
func Group(commits []commit.Commit, urlFor func(hash string) string) []Section {
	entries := make(map[string][]Entry, len(sectionOrder))
	for _, c := range commits {
		hash := c.Raw.ShortHash()
		url := ""
		if urlFor != nil && c.Raw.Hash != "" {
			url = urlFor(c.Raw.Hash)
		}

		title, ok := typeSections[c.Type]
		if !ok && c.Revert {
			title, ok = SectionReverts, true
		}
		if ok {
			entries[title] = append(entries[title], Entry{Scope: c.Scope, Text: c.Subject, Hash: hash, URL: url})
		}

		for _, n := range c.Notes {
			if n.Title != "BREAKING CHANGE" {
				continue
			}
			entries[SectionBreaking] = append(entries[SectionBreaking], Entry{Scope: c.Scope, Text: n.Text})
		}
	}

	var sections []Section
	for _, title := range sectionOrder {
		if len(entries[title]) == 0 {
			continue
		}
		sections = append(sections, Section{Title: title, Entries: entries[title]})
	}
	return sections
}

// template returns the configured template file, parsed, or the built-in one.
func (g *Generator) template(cwd string) (*template.Template, error) {
	if g.templateFile == "" {
		return g.tmpl, nil
	}
	path := g.templateFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading notes template %s", g.templateFile)
	}
	tmpl, err := template.New(filepath.Base(path)).Parse(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing notes template %s", g.templateFile)
	}
	return tmpl, nil
}

func commitURLFunc(repositoryURL string) func(string) string {
	r, err := git.ParseRemote(repositoryURL)
	if err != nil {
		return nil
	}
	base := r.WebURL()
	return func(hash string) string { return base + "/commit/" + hash }
}

// compareURL links the previous and next tags, or nothing when the
// repository is not on GitHub or this is the first release.
func compareURL(rc *release.Context) string {
	if rc.LastRelease.GitTag == "" || rc.NextRelease.GitTag == "" {
		return ""
	}
	r, err := git.ParseRemote(rc.RepositoryURL)
	if err != nil || !r.IsGitHub() {
		return ""
	}
	return r.WebURL() + "/compare/" + rc.LastRelease.GitTag + "..." + rc.NextRelease.GitTag
}
