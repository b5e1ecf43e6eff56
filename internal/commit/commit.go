// Package commit parses commit messages written in the Angular
// conventional format:
//
//	type(scope): subject
//
//	body
//
//	BREAKING CHANGE: description
//
// The Conventional dialect also accepts "type(scope)!: subject" and a
// "BREAKING-CHANGE:" footer. Messages that do not follow the format still
// parse; they simply have no type and only a subject.
package commit

import (
	"regexp"
	"strings"

	"github.com/thoreinstein/relx/internal/release"
)

// Dialect selects which breaking-change markers Parse recognises.
type Dialect int

const (
	// Angular recognises only a "BREAKING CHANGE:" footer note.
	Angular Dialect = iota

	// Conventional also accepts "!" before the colon of the header and a
	// "BREAKING-CHANGE:" footer note.
	Conventional
)

// DialectFor maps an analyzer preset name to its dialect. Unknown and empty
// names map to Angular.
func DialectFor(preset string) Dialect {
	if preset == "conventionalcommits" {
		return Conventional
	}
	return Angular
}

type grammar struct {
	header       *regexp.Regexp
	breakingNote *regexp.Regexp
}

var grammars = map[Dialect]grammar{
	Angular: {
		header:       regexp.MustCompile(`^(\w*)(?:\(([^()]*)\))?(): (.*)$`),
		breakingNote: regexp.MustCompile(`^BREAKING CHANGE:\s*(.*)$`),
	},
	Conventional: {
		header:       regexp.MustCompile(`^(\w*)(?:\(([^()]*)\))?(!)?: (.*)$`),
		breakingNote: regexp.MustCompile(`^BREAKING[ -]CHANGE:\s*(.*)$`),
	},
}

var revertPattern = regexp.MustCompile(`^Revert "(.*)"$`)

// skipMarkers exclude a commit from release analysis when found anywhere in its message.
var skipMarkers = []string{"[skip release]", "[release skip]"}

// Note is a footer note attached to a commit.
type Note struct {
	Title string
	Text  string
}

// Commit is a parsed conventional commit.
type Commit struct {
	Raw     release.Commit
	Type    string
	Scope   string
	Subject string
	Body    string
	Notes   []Note

	// Breaking is set by a BREAKING CHANGE note or, in the Conventional
	// dialect, a "!" in the header.
	Breaking bool

	// Revert is set for "revert: ..." and `Revert "..."` headers.
	Revert bool
}

// Parse parses a raw commit in dialect d.
func Parse(raw release.Commit, d Dialect) Commit {
	g, ok := grammars[d]
	if !ok {
		g = grammars[Angular]
	}
	c := Commit{Raw: raw}

	msg := strings.ReplaceAll(raw.Message, "\r\n", "\n")
	header, rest, _ := strings.Cut(strings.TrimSpace(msg), "\n")
	header = strings.TrimSpace(header)

	if m := g.header.FindStringSubmatch(header); m != nil {
		c.Type = strings.ToLower(m[1])
		c.Scope = m[2]
		c.Breaking = m[3] == "!"
		c.Subject = strings.TrimSpace(m[4])
	} else {
		c.Subject = header
	}

	if c.Type == "revert" || revertPattern.MatchString(header) {
		c.Revert = true
	}

	body, notes := splitNotes(rest, g.breakingNote)
	c.Body = body
	c.Notes = notes
	for _, n := range notes {
		if n.Title == "BREAKING CHANGE" {
			c.Breaking = true
		}
	}
	if c.Breaking && len(notes) == 0 {
		c.Notes = append(c.Notes, Note{Title: "BREAKING CHANGE", Text: c.Subject})
	}

	return c
}

// splitNotes separates the body from BREAKING CHANGE footer notes. A note
// extends until the next note or the end of the message.
func splitNotes(rest string, breakingNote *regexp.Regexp) (string, []Note) {
	var (
		body  []string
		notes []Note
		cur   = -1
	)
	for _, line := range strings.Split(rest, "\n") {
		if m := breakingNote.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			notes = append(notes, Note{Title: "BREAKING CHANGE", Text: m[1]})
			cur = len(notes) - 1
			continue
		}
		if cur >= 0 {
			text := strings.TrimSpace(line)
			switch {
			case text == "":
			case notes[cur].Text == "":
				notes[cur].Text = text
			default:
				notes[cur].Text += "\n" + text
			}
			continue
		}
		body = append(body, line)
	}
	return strings.TrimSpace(strings.Join(body, "\n")), notes
}

// Skipped reports whether the commit message asks to be left out of a release.
func Skipped(raw release.Commit) bool {
	for _, marker := range skipMarkers {
		if strings.Contains(raw.Message, marker) {
			return true
		}
	}
	return false
}

// ParseAll parses every commit that is not marked as skipped, preserving order.
func ParseAll(raws []release.Commit, d Dialect) []Commit {
	out := make([]Commit, 0, len(raws))
	for _, raw := range raws {
		if Skipped(raw) {
			continue
		}
		out = append(out, Parse(raw, d))
	}
	return out
}
