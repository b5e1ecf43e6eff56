package validator

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thoreinstein/relx/internal/config"
)

func TestCheckConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bumpVersion.sh"), nil, 0755); err != nil {
		t.Fatal(err)
	}

	result := CheckConfig(config.Default(), Environment{
		Vars:      map[string]string{"GITHUB_TOKEN": "ghp_x"},
		Dir:       dir,
		RemoteURL: "git@github.com:acme/widgets.git",
	})

	if result.HasErrors() || result.HasWarnings() {
		t.Errorf("unexpected issues: %+v", result.Issues)
	}
	if len(result.Infos()) != 1 {
		t.Errorf("Infos() = %+v, want the defaults notice", result.Infos())
	}
}

func TestCheckConfig_Warnings(t *testing.T) {
	result := CheckConfig(config.Default(), Environment{Dir: t.TempDir()})

	var messages []string
	for _, w := range result.Warnings() {
		messages = append(messages, w.Field+": "+w.Message)
	}
	joined := strings.Join(messages, "\n")

	for _, want := range []string{
		"plugins[2]: GITHUB_TOKEN or GH_TOKEN is not set",
		"repositoryUrl: not set and no origin remote found",
		"plugins[3]: prepareCmd references a script that does not exist",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("warnings missing %q\ngot:\n%s", want, joined)
		}
	}
	if result.HasErrors() {
		t.Errorf("unexpected errors: %+v", result.Errors())
	}
}

func TestCheckConfig_Errors(t *testing.T) {
	cfg := config.Default()
	cfg.TagFormat = "release"
	cfg.Plugins = append(cfg.Plugins, config.Plugin{Name: "@semantic-release/npm"})

	result := CheckConfig(cfg, Environment{ConfigFile: ".releaserc.yaml"})
	errs := result.Errors()
	if len(errs) != 2 {
		t.Fatalf("Errors() = %+v, want 2", errs)
	}

	var pluginIssue *Issue
	for i := range errs {
		if errs[i].Field == "plugins[5]" {
			pluginIssue = &errs[i]
		}
		if errs[i].Context["file"] != ".releaserc.yaml" {
			t.Errorf("issue %q lacks file context", errs[i].Message)
		}
	}
	if pluginIssue == nil {
		t.Fatalf("no issue for plugins[5]: %+v", errs)
	}

	var buf bytes.Buffer
	if err := NewReporter(&buf, FormatText).Report(result); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Configuration is invalid: 2 error(s)") {
		t.Errorf("report = %q", buf.String())
	}
}

func TestCheckConfig_EnterpriseRemote(t *testing.T) {
	cfg := config.Default()
	cfg.RepositoryURL = "https://ghe.example.com/team/svc.git"

	result := CheckConfig(cfg, Environment{Vars: map[string]string{"GH_TOKEN": "x"}})
	found := false
	for _, info := range result.Infos() {
		if info.Field == "repositoryUrl" && info.Value == "ghe.example.com" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected enterprise host notice, got %+v", result.Issues)
	}
}
