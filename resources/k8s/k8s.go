// Package k8s provides cluster-applied resource types: raw Kubernetes
// manifests and Helm chart installations. Both are emitted as custom
// resources that the provisioning engine's cluster handler applies against
// the managed cluster's API.
package k8s

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// Manifest represents a Custom::KubernetesManifest resource: one or more
// Kubernetes objects applied to the named cluster.
type Manifest struct {
	ClusterName any
	Manifest    string
}

// ResourceType returns the CloudFormation type.
func (Manifest) ResourceType() string { return "Custom::KubernetesManifest" }

// HelmChart represents a Custom::HelmChart resource: a chart release
// installed onto the named cluster.
type HelmChart struct {
	ClusterName any
	Chart       string
	Version     string
	Release     string
	Repository  string
	Namespace   string
	Values      map[string]any
}

// ResourceType returns the CloudFormation type.
func (HelmChart) ResourceType() string { return "Custom::HelmChart" }

// RenderManifest serializes typed Kubernetes objects into a single YAML
// document stream suitable for Manifest.Manifest.
func RenderManifest(objects ...any) (string, error) {
	var out string
	for i, obj := range objects {
		data, err := yaml.Marshal(obj)
		if err != nil {
			return "", fmt.Errorf("rendering manifest object %d: %w", i, err)
		}
		if i > 0 {
			out += "---\n"
		}
		out += string(data)
	}
	return out, nil
}
