// Command eksblueprint synthesizes CloudFormation templates for the EKS
// platform: the network stack, the cluster stack with its add-ons, and the
// promotion pipeline.
//
// Usage:
//
//	eksblueprint synth                Synthesize templates
//	eksblueprint synth --pipeline     Include the pipeline and its stages
//	eksblueprint lint                 Check the declared stacks for issues
//	eksblueprint validate             Run cfn-lint over synthesized templates
//	eksblueprint version              Show version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "eksblueprint",
		Short: "Synthesize CloudFormation templates for the EKS platform",
		Long: `eksblueprint synthesizes the EKS platform's CloudFormation templates.

The platform is declared as typed Go resource structs: a VPC network stack,
an EKS cluster stack with managed node pools and add-ons, and a promotion
pipeline that deploys pre-production before production.

Synthesize the default environment:

    eksblueprint synth --output-dir assembly

Synthesize the pipeline and every promotion stage:

    eksblueprint synth --pipeline --output-dir assembly`,
	}

	rootCmd.AddCommand(
		newSynthCmd(),
		newValidateCmd(),
		newLintCmd(),
		newListCmd(),
		newGraphCmd(),
		newDiffCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("eksblueprint %s\n", getVersion())
		},
	}
}
