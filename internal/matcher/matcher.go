// Package matcher decides which candidate paths answer a search token and
// removes candidates that match configured exclusion rules.
//
// Every function here is pure: inputs are never mutated and the returned
// slices are freshly allocated and never nil.
package matcher

import (
	"path/filepath"
	"strings"
)

// Rule reports whether a full path should be excluded.
// *regexp.Regexp satisfies Rule.
type Rule interface {
	MatchString(s string) bool
}

// SplitName returns the basename of path and its stem (basename without
// extension). A basename whose only dot is the leading one (".bashrc") has
// no extension, so its stem is the whole basename.
func SplitName(path string) (base, stem, ext string) {
	base = filepath.Base(path)
	ext = filepath.Ext(base)
	if ext == base {
		ext = ""
	}
	stem = strings.TrimSuffix(base, ext)
	return base, stem, ext
}

// Matches reports whether candidatePath answers token: its basename or its
// stem equals token under simple lowercase folding.
func Matches(token, candidatePath string) bool {
	base, stem, _ := SplitName(candidatePath)
	want := strings.ToLower(token)
	return strings.ToLower(base) == want || strings.ToLower(stem) == want
}

// MatchAll keeps the candidates that match token, preserving order.
func MatchAll(token string, candidates []string) []string {
	matched := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if Matches(token, candidate) {
			matched = append(matched, candidate)
		}
	}
	return matched
}

// ExcludeByRule drops the candidates whose full path matches rule,
// preserving the order of the rest. A nil rule excludes nothing.
func ExcludeByRule(candidates []string, rule Rule) []string {
	kept := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if rule != nil && rule.MatchString(candidate) {
			continue
		}
		kept = append(kept, candidate)
	}
	return kept
}

// ExcludeByRules applies ExcludeByRule once per rule, in order, each rule
// operating on the output of the previous one.
func ExcludeByRules(candidates []string, rules []Rule) []string {
	filtered := append(make([]string, 0, len(candidates)), candidates...)
	for _, rule := range rules {
		filtered = ExcludeByRule(filtered, rule)
	}
	return filtered
}
