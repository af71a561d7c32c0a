package matcher

import (
	"fmt"
	"regexp"
)

// DefaultExcludePatterns hides dotfiles, anything under node_modules and log
// files.
var DefaultExcludePatterns = []string{
	`(^|/)\.[^/]*$`,
	`node_modules`,
	`\.log$`,
}

// ConfigurationError reports a malformed exclusion rule or search directory.
// It is returned when configuration is turned into rules, never while
// filtering.
type ConfigurationError struct {
	// Field names the offending setting ("exclude", "search_dirs").
	Field string
	// Index is the position of the bad value within its list.
	Index int
	// Value is the offending pattern or path.
	Value string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s[%d] %q: %v", e.Field, e.Index, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s[%d] %q", e.Field, e.Index, e.Value)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// CompileRules compiles exclusion patterns into rules, keeping their order.
func CompileRules(patterns []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(patterns))
	for i, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, &ConfigurationError{Field: "exclude", Index: i, Value: pattern, Err: err}
		}
		rules = append(rules, re)
	}
	return rules, nil
}

// DefaultRules returns the compiled DefaultExcludePatterns.
func DefaultRules() []Rule {
	rules, err := CompileRules(DefaultExcludePatterns)
	if err != nil {
		panic(err)
	}
	return rules
}
