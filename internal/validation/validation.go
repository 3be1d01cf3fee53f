// Package validation checks synthesized CloudFormation templates with
// cfn-lint-go. The structural rules in internal/lint operate on the declared
// assembly; this package runs the generic CloudFormation linter over the
// emitted template files.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lex00/cfn-lint-go/pkg/lint"
)

// Result categorizes linter findings for one template file.
type Result struct {
	Passed        bool     `json:"passed"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	Informational []string `json:"informational"`
}

// TotalIssues returns the total number of findings.
func (r Result) TotalIssues() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Informational)
}

// ValidateFile runs cfn-lint-go on the template at path. Warnings do not
// fail the result, errors do.
func ValidateFile(path string) (*Result, error) {
	if _, err := os.Stat(path); err != nil {
		return &Result{
			Passed: false,
			Errors: []string{fmt.Sprintf("template file not found: %s", path)},
		}, nil
	}

	linter := lint.New(lint.Options{})
	matches, err := linter.LintFile(path)
	if err != nil {
		return &Result{
			Passed: false,
			Errors: []string{fmt.Sprintf("linter error: %v", err)},
		}, nil
	}

	result := &Result{
		Errors:        []string{},
		Warnings:      []string{},
		Informational: []string{},
	}

	for _, match := range matches {
		formatted := formatMatch(match)
		switch match.Level {
		case "Error":
			result.Errors = append(result.Errors, formatted)
		case "Warning":
			result.Warnings = append(result.Warnings, formatted)
		default:
			result.Informational = append(result.Informational, formatted)
		}
	}

	result.Passed = len(result.Errors) == 0
	return result, nil
}

// ValidateDir runs ValidateFile over every synthesized template in dir,
// keyed by file name.
func ValidateDir(dir string) (map[string]*Result, error) {
	patterns := []string{"*.template.json", "*.template.yaml"}

	var paths []string
	for _, p := range patterns {
		found, err := filepath.Glob(filepath.Join(dir, p))
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no templates found in %s", dir)
	}
	sort.Strings(paths)

	results := make(map[string]*Result, len(paths))
	for _, path := range paths {
		r, err := ValidateFile(path)
		if err != nil {
			return nil, err
		}
		results[filepath.Base(path)] = r
	}
	return results, nil
}

// formatMatch formats a cfn-lint-go match for display.
func formatMatch(match lint.Match) string {
	pathStr := ""
	if len(match.Location.Path) > 0 {
		parts := make([]string, len(match.Location.Path))
		for i, p := range match.Location.Path {
			parts[i] = fmt.Sprintf("%v", p)
		}
		pathStr = strings.Join(parts, "/")
	}

	if pathStr != "" {
		return fmt.Sprintf("%s: %s (at %s)", match.Rule.ID, match.Message, pathStr)
	}
	return fmt.Sprintf("%s: %s", match.Rule.ID, match.Message)
}
