package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	eksblueprint "github.com/nordforge/eksblueprint"
	"github.com/nordforge/eksblueprint/internal/lint"
)

func newLintCmd() *cobra.Command {
	var (
		opts         composeOptions
		outputFormat string
		rules        []string
	)

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check the declared stacks for issues",
		Long: `Lint checks the declared stacks for structural issues.

Rules:
    E101: Network stack must precede the cluster stack
    E102: Spot node pools must cover the on-demand instance shapes
    E103: Cluster autoscaler requires its expander configuration
    E104: Bastion hosts must be ordered after the agent manifest
    W201: Production stages should gate on a manual approval
    W202: IAM policies should not be sourced from remote URLs
    W203: Pipeline stages should deploy to distinct targets

Examples:
    eksblueprint lint
    eksblueprint lint --pipeline
    eksblueprint lint --rules E101,E104`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(opts, outputFormat, rules)
		},
	}

	addComposeFlags(cmd, &opts)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringSliceVar(&rules, "rules", nil, "Rule IDs to enable (default: all)")

	return cmd
}

func runLint(opts composeOptions, format string, rules []string) error {
	assemblies, _, err := composeAssemblies(opts)
	if err != nil {
		return fmt.Errorf("lint failed: %w", err)
	}

	result := eksblueprint.LintResult{Success: true}
	for _, a := range assemblies {
		r, err := lint.Lint(a, lint.Options{EnabledRules: rules})
		if err != nil {
			return fmt.Errorf("lint failed: %w", err)
		}
		if !r.Success {
			result.Success = false
		}
		result.Issues = append(result.Issues, r.Issues...)
	}

	return outputLintResult(result, format)
}

func outputLintResult(result eksblueprint.LintResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if len(result.Issues) == 0 {
			fmt.Println("No issues found.")
			return nil
		}

		for _, issue := range result.Issues {
			if issue.Resource != "" {
				fmt.Printf("%s/%s: %s: %s [%s]\n",
					issue.Stack, issue.Resource,
					issue.Severity, issue.Message, issue.Rule)
			} else {
				fmt.Printf("%s: %s: %s [%s]\n",
					issue.Stack, issue.Severity, issue.Message, issue.Rule)
			}
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		os.Exit(2) // Exit code 2 for issues found
	}

	return nil
}
