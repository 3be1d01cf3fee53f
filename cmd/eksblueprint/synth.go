package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	eksblueprint "github.com/nordforge/eksblueprint"
	"github.com/nordforge/eksblueprint/stack"
)

func newSynthCmd() *cobra.Command {
	var (
		opts         composeOptions
		outputFormat string
		outputDir    string
	)

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize CloudFormation templates",
		Long: `Synth builds the declared stacks and writes one template file per stack.

Examples:
    eksblueprint synth --output-dir assembly
    eksblueprint synth --format yaml
    eksblueprint synth --pipeline --output-dir assembly`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSynth(opts, outputFormat, outputDir)
		},
	}

	addComposeFlags(cmd, &opts)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Template format: json or yaml")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "assembly", "Directory for synthesized templates")

	return cmd
}

func runSynth(opts composeOptions, format, outputDir string) error {
	if format != "json" && format != "yaml" {
		return fmt.Errorf("unknown format: %s", format)
	}

	assemblies, warnings, err := composeAssemblies(opts)
	if err != nil {
		return outputSynthResult(eksblueprint.SynthResult{
			Success:  false,
			Warnings: warnings,
			Errors:   []string{err.Error()},
		})
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	result := eksblueprint.SynthResult{Success: true, Warnings: warnings}
	for _, a := range assemblies {
		files, err := writeAssembly(a, format, outputDir)
		if err != nil {
			result.Success = false
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Templates = append(result.Templates, files...)
	}

	return outputSynthResult(result)
}

// writeAssembly builds the assembly and writes one template file per stack.
func writeAssembly(a *stack.Assembly, format, outputDir string) ([]eksblueprint.TemplateFile, error) {
	built, err := a.Build()
	if err != nil {
		return nil, err
	}

	files := make([]eksblueprint.TemplateFile, 0, len(built))
	for _, b := range built {
		var data []byte
		var err error
		switch format {
		case "yaml":
			data, err = stack.ToYAML(b.Template)
		default:
			data, err = stack.ToJSON(b.Template)
		}
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", b.Stack.Name(), err)
		}

		path := filepath.Join(outputDir, fmt.Sprintf("%s.template.%s", b.Stack.Name(), format))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}

		files = append(files, eksblueprint.TemplateFile{
			Stack:     b.Stack.Name(),
			Path:      path,
			Resources: len(b.Template.Resources),
		})
	}
	return files, nil
}

func outputSynthResult(result eksblueprint.SynthResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	if !result.Success {
		os.Exit(1)
	}
	return nil
}
