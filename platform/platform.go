package platform

import (
	"fmt"

	"github.com/nordforge/eksblueprint/intrinsics"
	"github.com/nordforge/eksblueprint/stack"
)

// Defaults substituted by Compose when params leave them empty.
const (
	DefaultClusterName = "eks"
	DefaultEnvName     = "eks-env"
)

// Params configures one deployable unit: a named environment built from a
// network stack and a cluster stack.
type Params struct {
	// Name prefixes the unit's stack names, e.g. "Platform-Dev".
	Name        string
	Config      Config
	EnvName     string
	ClusterName string
	Options     Options

	// Load balancer controller permission policy, required when the
	// controller option is on. See ClusterParams.
	LBControllerPolicy       intrinsics.PolicyDocument
	LBControllerPolicySource string
}

// Compose builds the deployable unit: the network stack followed by the
// cluster stack. Identical params produce identical assemblies.
func Compose(p Params) (*stack.Assembly, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("compose: name is required")
	}
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}
	if p.EnvName == "" {
		p.EnvName = DefaultEnvName
	}
	if p.ClusterName == "" {
		p.ClusterName = DefaultClusterName
	}

	network := NewNetwork(p.Name + "-Network")

	cluster, err := NewCluster(p.Name+"-EKS", ClusterParams{
		Config:                   p.Config,
		EnvName:                  p.EnvName,
		ClusterName:              p.ClusterName,
		Options:                  p.Options,
		Network:                  network,
		LBControllerPolicy:       p.LBControllerPolicy,
		LBControllerPolicySource: p.LBControllerPolicySource,
	})
	if err != nil {
		return nil, fmt.Errorf("composing %s: %w", p.Name, err)
	}

	a := stack.NewAssembly(p.Name)
	a.Add(network.Stack())
	a.Add(cluster)
	return a, nil
}
