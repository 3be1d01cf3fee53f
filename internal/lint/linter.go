// Package lint provides structural rules over built stack assemblies.
//
// Rules:
//
//	E101: Cluster stack must be preceded by exactly one network stack
//	E102: Spot node pools must cover at least as many instance shapes as on-demand pools
//	E103: Cluster autoscaler chart requires its priority expander config
//	E104: Bastion instances must be ordered after the agent daemonset
//	W201: Production deploy stages should start with a manual approval
//	W202: Permission policies sourced from remote URLs are not reproducible
//	W203: Deploy stages should target distinct environments
package lint

import (
	"fmt"

	eksblueprint "github.com/nordforge/eksblueprint"
	"github.com/nordforge/eksblueprint/stack"
)

// Severity levels for lint issues.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Unit is one built stack as seen by rules: the declaration-side graph and
// the emitted template.
type Unit struct {
	Stack    *stack.Stack
	Template *eksblueprint.Template
}

// Rule checks one structural property across the assembly's built stacks.
type Rule interface {
	ID() string
	Description() string
	Check(units []Unit) []eksblueprint.LintIssue
}

// Options configures the linter.
type Options struct {
	// Rules to enable. If empty, all rules are enabled.
	EnabledRules []string
}

// Lint builds the assembly and runs all enabled rules over it.
func Lint(a *stack.Assembly, opts Options) (eksblueprint.LintResult, error) {
	built, err := a.Build()
	if err != nil {
		return eksblueprint.LintResult{}, fmt.Errorf("building assembly: %w", err)
	}

	units := make([]Unit, len(built))
	for i, b := range built {
		units[i] = Unit{Stack: b.Stack, Template: b.Template}
	}

	var issues []eksblueprint.LintIssue
	for _, rule := range getRules(opts) {
		issues = append(issues, rule.Check(units)...)
	}

	success := true
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			success = false
		}
	}

	return eksblueprint.LintResult{Success: success, Issues: issues}, nil
}

// AllRules returns every rule in ID order.
func AllRules() []Rule {
	return []Rule{
		NetworkBeforeCluster{},
		SpotShapeCoverage{},
		AutoscalerExpanderPair{},
		BastionAfterAgent{},
		ProdApprovalGate{},
		RemotePolicySource{},
		DistinctStageTargets{},
	}
}

// getRules returns the rules to use based on options.
func getRules(opts Options) []Rule {
	all := AllRules()

	if len(opts.EnabledRules) == 0 {
		return all
	}

	enabled := make(map[string]bool)
	for _, id := range opts.EnabledRules {
		enabled[id] = true
	}

	var filtered []Rule
	for _, r := range all {
		if enabled[r.ID()] {
			filtered = append(filtered, r)
		}
	}

	return filtered
}
