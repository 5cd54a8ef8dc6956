package extension

import (
	"strings"
	"testing"
)

func TestLint_Valid(t *testing.T) {
	cfg, err := ParseConfig([]byte(`[spotify]
repository = https://github.com/example/spotify-extension.git
branch = main
`))
	if err != nil {
		t.Fatal(err)
	}

	issues, err := Lint(cfg)
	if err != nil {
		t.Fatalf("Lint() error = %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("expected no issues, got %v", issues)
	}
}

func TestLint_Issues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		keyword string
		path    string
	}{
		{"missing repository", "[airplay]\nbranch = main\n", "required", "/airplay"},
		{"unknown key", "[roon]\nrepository = r\nrepo = typo\n", "additionalProperties", "/roon"},
		{"empty repository", "[roon]\nrepository =\n", "minLength", "/roon/repository"},
		{"branch with spaces", "[roon]\nrepository = r\nbranch = my branch\n", "pattern", "/roon/branch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.content))
			if err != nil {
				t.Fatal(err)
			}
			issues, err := Lint(cfg)
			if err != nil {
				t.Fatalf("Lint() error = %v", err)
			}
			if len(issues) == 0 {
				t.Fatal("expected issues, got none")
			}

			found := false
			for _, issue := range issues {
				if issue.Keyword == tt.keyword && issue.Path == tt.path {
					found = true
				}
			}
			if !found {
				t.Errorf("no %s issue at %s in %v", tt.keyword, tt.path, issues)
			}
		})
	}
}

func TestLintIssueString(t *testing.T) {
	issue := LintIssue{Path: "/roon", Message: "missing property 'repository'"}
	if got := issue.String(); !strings.HasPrefix(got, "/roon: ") {
		t.Errorf("String() = %q", got)
	}
	if got := (LintIssue{Message: "broken"}).String(); got != "broken" {
		t.Errorf("String() = %q, want 'broken'", got)
	}
}
