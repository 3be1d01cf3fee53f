package platform

import (
	"fmt"
	"sort"
	"strings"
)

// Flag names accepted by OptionsFromFlags.
const (
	FlagClusterAutoscaler      = "deploy_cluster_autoscaler"
	FlagLoadBalancerController = "deploy_alb_controller"
)

// Options is the closed set of add-on toggles. Both default to on.
type Options struct {
	DeployClusterAutoscaler      bool
	DeployLoadBalancerController bool
}

// DefaultOptions enables every conditional add-on.
func DefaultOptions() Options {
	return Options{
		DeployClusterAutoscaler:      true,
		DeployLoadBalancerController: true,
	}
}

// OptionsFromFlags maps named flags onto Options, rejecting unknown names.
// Absent flags keep their defaults.
func OptionsFromFlags(flags map[string]bool) (Options, error) {
	opts := DefaultOptions()

	var unknown []string
	for name, value := range flags {
		switch name {
		case FlagClusterAutoscaler:
			opts.DeployClusterAutoscaler = value
		case FlagLoadBalancerController:
			opts.DeployLoadBalancerController = value
		default:
			unknown = append(unknown, name)
		}
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Options{}, fmt.Errorf("unknown flags: %s", strings.Join(unknown, ", "))
	}

	return opts, nil
}
