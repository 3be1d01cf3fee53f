package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	eksblueprint "github.com/nordforge/eksblueprint"
)

func newListCmd() *cobra.Command {
	var (
		opts         composeOptions
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List declared resources",
		Long: `List displays every resource in the selected stacks.

Examples:
    eksblueprint list
    eksblueprint list --pipeline --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, outputFormat)
		},
	}

	addComposeFlags(cmd, &opts)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func runList(opts composeOptions, format string) error {
	assemblies, _, err := composeAssemblies(opts)
	if err != nil {
		return err
	}

	listResult := eksblueprint.ListResult{Resources: []eksblueprint.ListResource{}}
	for _, a := range assemblies {
		for _, s := range a.Stacks() {
			for _, name := range s.Resources() {
				listResult.Resources = append(listResult.Resources, eksblueprint.ListResource{
					Stack: s.Name(),
					Name:  name,
					Type:  s.Resource(name).ResourceType(),
				})
			}
		}
	}

	sort.Slice(listResult.Resources, func(i, j int) bool {
		a, b := listResult.Resources[i], listResult.Resources[j]
		if a.Stack != b.Stack {
			return a.Stack < b.Stack
		}
		return a.Name < b.Name
	})

	return outputListResult(listResult, format)
}

func outputListResult(result eksblueprint.ListResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if len(result.Resources) == 0 {
			fmt.Println("No resources found.")
			return nil
		}

		fmt.Printf("Declared resources (%d):\n\n", len(result.Resources))
		stack := ""
		for _, res := range result.Resources {
			if res.Stack != stack {
				stack = res.Stack
				fmt.Printf("%s:\n", stack)
			}
			fmt.Printf("  %s: %s\n", res.Name, res.Type)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}
