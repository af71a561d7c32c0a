package matcher

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name  string
		token string
		path  string
		want  bool
	}{
		{name: "exact basename", token: "package.json", path: "/tmp/t/package.json", want: true},
		{name: "stem match on app bundle", token: "Google Chrome", path: "/Applications/Google Chrome.app", want: true},
		{name: "different application", token: "Google Chrome", path: "/Applications/Firefox.app", want: false},
		{name: "case-insensitive basename", token: "PACKAGE.JSON", path: "/tmp/t/package.json", want: true},
		{name: "case-insensitive stem", token: "safari", path: "/Applications/Safari.app", want: true},
		{name: "prefix is not a match", token: "Google", path: "/Applications/Google Chrome.app", want: false},
		{name: "directory component is not matched", token: "Applications", path: "/Applications/Safari.app", want: false},
		{name: "only last extension is stripped", token: "archive.tar", path: "/tmp/archive.tar.gz", want: true},
		{name: "dotfile has no extension", token: ".bashrc", path: "/home/u/.bashrc", want: true},
		{name: "dotfile stem is whole name", token: "", path: "/home/u/.bashrc", want: false},
		{name: "no extension", token: "Makefile", path: "/src/Makefile", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.token, tt.path))
		})
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		path                  string
		base, stem, extension string
	}{
		{"/a/b/package.json", "package.json", "package", ".json"},
		{"/Applications/Google Chrome.app", "Google Chrome.app", "Google Chrome", ".app"},
		{"/home/u/.bashrc", ".bashrc", ".bashrc", ""},
		{"/home/u/.config.bak", ".config.bak", ".config", ".bak"},
		{"/src/Makefile", "Makefile", "Makefile", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			base, stem, ext := SplitName(tt.path)
			assert.Equal(t, tt.base, base)
			assert.Equal(t, tt.stem, stem)
			assert.Equal(t, tt.extension, ext)
			assert.Equal(t, base, stem+ext)
		})
	}
}

func TestMatchAll(t *testing.T) {
	files := []string{
		"/Applications/Firefox.app",
		"/Applications/Safari.app",
		"/Applications/Google Chrome.app",
	}

	got := MatchAll("Google Chrome", files)
	assert.Equal(t, []string{"/Applications/Google Chrome.app"}, got)

	got = MatchAll("nothing", files)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMatchAll_PreservesOrder(t *testing.T) {
	files := []string{"/b/notes.txt", "/a/notes.md", "/c/other", "/a/NOTES"}
	assert.Equal(t, []string{"/b/notes.txt", "/a/notes.md", "/a/NOTES"}, MatchAll("notes", files))
}

func TestExcludeByRule(t *testing.T) {
	directories := []string{
		"VuTran.app",
		"Vu.png",
		"Tran.png",
		".DS_Store",
		".log",
	}
	rule := regexp.MustCompile(`^\.`)

	got := ExcludeByRule(directories, rule)

	assert.Equal(t, []string{"VuTran.app", "Vu.png", "Tran.png"}, got)
	assert.Len(t, directories, 5, "input must not be mutated")
}

func TestExcludeByRule_RemovesExactlyMatching(t *testing.T) {
	inputs := [][]string{
		{},
		{"a", "b", "c"},
		{"x.log", "y", "z.log", "w"},
		{"node_modules/a", "src/node_modules/b", "src/c"},
	}
	rules := []Rule{
		regexp.MustCompile(`\.log$`),
		regexp.MustCompile(`node_modules`),
		regexp.MustCompile(`^a`),
	}

	for _, xs := range inputs {
		for _, rule := range rules {
			got := ExcludeByRule(xs, rule)

			var want []string
			for _, x := range xs {
				if !rule.MatchString(x) {
					want = append(want, x)
				}
			}
			if want == nil {
				want = []string{}
			}
			assert.Equal(t, want, got)
		}
	}
}

func TestExcludeByRule_NilRule(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ExcludeByRule([]string{"a", "b"}, nil))
}

func TestExcludeByRules(t *testing.T) {
	directories := []string{
		"VuTran.app",
		"Vu.png",
		"Tran.png",
		".DS_Store",
		".log",
	}
	rules := []Rule{
		regexp.MustCompile(`^\.`),
		regexp.MustCompile(`\.png$`),
	}

	assert.Equal(t, []string{"VuTran.app"}, ExcludeByRules(directories, rules))
}

func TestExcludeByRules_EqualsSequentialFold(t *testing.T) {
	xs := []string{"/a/.git", "/a/b.log", "/a/node_modules/x", "/a/keep", "/b/keep.txt"}
	rules := []Rule{
		regexp.MustCompile(`node_modules`),
		regexp.MustCompile(`\.log$`),
		regexp.MustCompile(`(^|/)\.[^/]*$`),
	}

	want := xs
	for _, rule := range rules {
		want = ExcludeByRule(want, rule)
	}

	assert.Equal(t, want, ExcludeByRules(xs, rules))
	assert.Equal(t, []string{"/a/keep", "/b/keep.txt"}, ExcludeByRules(xs, rules))
}

func TestExcludeByRules_NoRules(t *testing.T) {
	xs := []string{"a", "b"}
	got := ExcludeByRules(xs, nil)
	assert.Equal(t, xs, got)

	got[0] = "changed"
	assert.Equal(t, "a", xs[0], "result must not alias the input")
}
