package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nordforge/eksblueprint/internal/policydoc"
	"github.com/nordforge/eksblueprint/intrinsics"
	"github.com/nordforge/eksblueprint/pipeline"
	"github.com/nordforge/eksblueprint/platform"
	"github.com/nordforge/eksblueprint/stack"
)

// Development environment defaults for single-environment synthesis.
const (
	defaultName        = "Platform-Dev"
	defaultEnvName     = "dev"
	defaultClusterName = "eks-test"
)

// composeOptions selects what to synthesize. Shared by the synth, validate,
// lint, list, graph, and watch commands.
type composeOptions struct {
	name        string
	envName     string
	clusterName string
	account     string
	region      string

	pipelineMode   bool
	noAutoscaler   bool
	noLBController bool
	policyFile     string
}

// addComposeFlags registers the selection flags on cmd.
func addComposeFlags(cmd *cobra.Command, opts *composeOptions) {
	cmd.Flags().StringVar(&opts.name, "name", defaultName, "Environment name prefix for stack names")
	cmd.Flags().StringVar(&opts.envName, "env-name", defaultEnvName, "Environment name appended to the cluster name")
	cmd.Flags().StringVar(&opts.clusterName, "cluster-name", defaultClusterName, "Base cluster name")
	cmd.Flags().StringVar(&opts.account, "account", "", "Target account (default: $"+platform.EnvAccount+")")
	cmd.Flags().StringVar(&opts.region, "region", "", "Target region (default: $"+platform.EnvRegion+")")
	cmd.Flags().BoolVar(&opts.pipelineMode, "pipeline", false, "Synthesize the promotion pipeline and its stage environments")
	cmd.Flags().BoolVar(&opts.noAutoscaler, "no-autoscaler", false, "Skip the cluster autoscaler add-on")
	cmd.Flags().BoolVar(&opts.noLBController, "no-lb-controller", false, "Skip the load balancer controller add-on")
	cmd.Flags().StringVar(&opts.policyFile, "lb-policy-file", "", "Load balancer controller IAM policy file (default: fetched from the upstream release)")
}

// resolveConfig reads the target from flags, falling back to the environment.
func resolveConfig(opts composeOptions) (platform.Config, error) {
	if opts.account != "" || opts.region != "" {
		c := platform.Config{Account: opts.account, Region: opts.region}
		if err := c.Validate(); err != nil {
			return platform.Config{}, err
		}
		return c, nil
	}
	return platform.ConfigFromEnv()
}

// composeAssemblies builds the selected assemblies. In pipeline mode that is
// the pipeline stack plus one environment per promotion stage; otherwise a
// single environment from the name flags. Warnings report non-fatal notes
// such as a remotely fetched permission policy.
func composeAssemblies(opts composeOptions) ([]*stack.Assembly, []string, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	addons := platform.DefaultOptions()
	if opts.noAutoscaler {
		addons.DeployClusterAutoscaler = false
	}
	if opts.noLBController {
		addons.DeployLoadBalancerController = false
	}

	var (
		policy       intrinsics.PolicyDocument
		policySource string
		warnings     []string
	)
	if addons.DeployLoadBalancerController {
		if opts.policyFile != "" {
			policy, err = policydoc.Load(opts.policyFile)
			policySource = opts.policyFile
		} else {
			policy, err = policydoc.Fetch(context.Background(), policydoc.DefaultPolicyURL)
			policySource = policydoc.DefaultPolicyURL
			warnings = append(warnings,
				fmt.Sprintf("load balancer controller policy fetched from %s; pin a local copy with --lb-policy-file", policydoc.DefaultPolicyURL))
		}
		if err != nil {
			return nil, nil, fmt.Errorf("loading load balancer controller policy: %w", err)
		}
	}

	if !opts.pipelineMode {
		a, err := platform.Compose(platform.Params{
			Name:                     opts.name,
			Config:                   cfg,
			EnvName:                  opts.envName,
			ClusterName:              opts.clusterName,
			Options:                  addons,
			LBControllerPolicy:       policy,
			LBControllerPolicySource: policySource,
		})
		if err != nil {
			return nil, nil, err
		}
		return []*stack.Assembly{a}, warnings, nil
	}

	pipelineAssembly, err := pipeline.New(pipeline.Params{Config: cfg})
	if err != nil {
		return nil, nil, err
	}
	assemblies := []*stack.Assembly{pipelineAssembly}

	for _, st := range pipeline.Stages(cfg) {
		p := st.Platform
		p.Options = addons
		p.LBControllerPolicy = policy
		p.LBControllerPolicySource = policySource

		a, err := platform.Compose(p)
		if err != nil {
			return nil, nil, err
		}
		assemblies = append(assemblies, a)
	}

	return assemblies, warnings, nil
}
