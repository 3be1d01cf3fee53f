package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	eksblueprint "github.com/nordforge/eksblueprint"
	"github.com/nordforge/eksblueprint/internal/validation"
)

// newValidateCmd creates the "validate" subcommand. It synthesizes the
// selected stacks to a scratch directory and runs cfn-lint-go over the
// emitted templates.
func newValidateCmd() *cobra.Command {
	var (
		opts         composeOptions
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate synthesized templates with cfn-lint",
		Long: `Validate synthesizes the declared stacks and checks the resulting
CloudFormation templates with cfn-lint-go. Warnings do not fail validation,
errors do.

Examples:
    eksblueprint validate
    eksblueprint validate --pipeline --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, outputFormat)
		},
	}

	addComposeFlags(cmd, &opts)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func runValidate(opts composeOptions, format string) error {
	assemblies, warnings, err := composeAssemblies(opts)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	dir, err := os.MkdirTemp("", "eksblueprint-validate-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.RemoveAll(dir)
	}()

	resources := 0
	for _, a := range assemblies {
		files, err := writeAssembly(a, "json", dir)
		if err != nil {
			return fmt.Errorf("synthesizing %s: %w", a.Name(), err)
		}
		for _, f := range files {
			resources += f.Resources
		}
	}

	results, err := validation.ValidateDir(dir)
	if err != nil {
		return err
	}

	validateResult := eksblueprint.ValidateResult{
		Success:   true,
		Resources: resources,
		Warnings:  warnings,
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		r := results[name]
		if !r.Passed {
			validateResult.Success = false
		}
		for _, e := range r.Errors {
			validateResult.Errors = append(validateResult.Errors, fmt.Sprintf("%s: %s", name, e))
		}
		for _, w := range r.Warnings {
			validateResult.Warnings = append(validateResult.Warnings, fmt.Sprintf("%s: %s", name, w))
		}
	}

	return outputValidateResult(validateResult, format)
}

func outputValidateResult(result eksblueprint.ValidateResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if result.Success {
			fmt.Printf("Validation passed: %d resources OK\n", result.Resources)
			for _, warnMsg := range result.Warnings {
				fmt.Printf("  WARNING: %s\n", warnMsg)
			}
			return nil
		}

		fmt.Println("Validation FAILED:")
		for _, errMsg := range result.Errors {
			fmt.Printf("  ERROR: %s\n", errMsg)
		}
		for _, warnMsg := range result.Warnings {
			fmt.Printf("  WARNING: %s\n", warnMsg)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		os.Exit(1)
	}

	return nil
}
