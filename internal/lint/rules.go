package lint

import (
	"fmt"
	"strings"

	eksblueprint "github.com/nordforge/eksblueprint"
	"github.com/nordforge/eksblueprint/platform"
)

const (
	typeCluster   = "AWS::EKS::Cluster"
	typeNodegroup = "AWS::EKS::Nodegroup"
	typeVPC       = "AWS::EC2::VPC"
	typeInstance  = "AWS::EC2::Instance"
	typeRole      = "AWS::IAM::Role"
	typePipeline  = "AWS::CodePipeline::Pipeline"
	typeManifest  = "Custom::KubernetesManifest"
	typeHelmChart = "Custom::HelmChart"
)

// NetworkBeforeCluster checks that every stack containing a cluster is
// preceded in the assembly by exactly one network stack.
type NetworkBeforeCluster struct{}

func (r NetworkBeforeCluster) ID() string { return "E101" }
func (r NetworkBeforeCluster) Description() string {
	return "Cluster stack must be preceded by exactly one network stack"
}

func (r NetworkBeforeCluster) Check(units []Unit) []eksblueprint.LintIssue {
	var issues []eksblueprint.LintIssue

	for i, u := range units {
		if !hasResourceOfType(u, typeCluster) {
			continue
		}

		networks := 0
		for _, prev := range units[:i] {
			if hasResourceOfType(prev, typeVPC) {
				networks++
			}
		}

		if networks != 1 {
			issues = append(issues, eksblueprint.LintIssue{
				Stack:    u.Stack.Name(),
				Severity: SeverityError,
				Message:  fmt.Sprintf("cluster stack must be preceded by exactly one network stack, found %d", networks),
				Rule:     r.ID(),
			})
		}
	}

	return issues
}

// SpotShapeCoverage checks that spot node pools list at least as many
// instance shapes as any on-demand pool, so spot capacity can always
// substitute for on-demand capacity.
type SpotShapeCoverage struct{}

func (r SpotShapeCoverage) ID() string { return "E102" }
func (r SpotShapeCoverage) Description() string {
	return "Spot node pools must cover at least as many instance shapes as on-demand pools"
}

func (r SpotShapeCoverage) Check(units []Unit) []eksblueprint.LintIssue {
	var issues []eksblueprint.LintIssue

	for _, u := range units {
		maxOnDemand := 0
		for _, name := range u.Stack.Resources() {
			def := u.Template.Resources[name]
			if def.Type != typeNodegroup || capacityType(def) != "ON_DEMAND" {
				continue
			}
			if n := len(instanceTypes(def)); n > maxOnDemand {
				maxOnDemand = n
			}
		}
		if maxOnDemand == 0 {
			continue
		}

		for _, name := range u.Stack.Resources() {
			def := u.Template.Resources[name]
			if def.Type != typeNodegroup || capacityType(def) != "SPOT" {
				continue
			}
			if n := len(instanceTypes(def)); n < maxOnDemand {
				issues = append(issues, eksblueprint.LintIssue{
					Stack:    u.Stack.Name(),
					Resource: name,
					Severity: SeverityError,
					Message:  fmt.Sprintf("spot pool lists %d instance shapes, on-demand pools list up to %d", n, maxOnDemand),
					Rule:     r.ID(),
				})
			}
		}
	}

	return issues
}

// AutoscalerExpanderPair checks that a cluster autoscaler chart is always
// accompanied by its priority expander configuration.
type AutoscalerExpanderPair struct{}

func (r AutoscalerExpanderPair) ID() string { return "E103" }
func (r AutoscalerExpanderPair) Description() string {
	return "Cluster autoscaler chart requires its priority expander config"
}

func (r AutoscalerExpanderPair) Check(units []Unit) []eksblueprint.LintIssue {
	var issues []eksblueprint.LintIssue

	for _, u := range units {
		for _, name := range u.Stack.Resources() {
			def := u.Template.Resources[name]
			if def.Type != typeHelmChart {
				continue
			}
			chart, _ := def.Properties["Chart"].(string)
			if chart != "cluster-autoscaler" {
				continue
			}

			if !hasExpanderConfig(u) {
				issues = append(issues, eksblueprint.LintIssue{
					Stack:    u.Stack.Name(),
					Resource: name,
					Severity: SeverityError,
					Message:  "cluster-autoscaler chart has no priority expander ConfigMap in the same stack",
					Rule:     r.ID(),
				})
			}
		}
	}

	return issues
}

// BastionAfterAgent checks that instances in cluster stacks are ordered
// after an applied agent manifest, so session access works as soon as the
// instance is reachable.
type BastionAfterAgent struct{}

func (r BastionAfterAgent) ID() string { return "E104" }
func (r BastionAfterAgent) Description() string {
	return "Bastion instances must be ordered after the agent daemonset"
}

func (r BastionAfterAgent) Check(units []Unit) []eksblueprint.LintIssue {
	var issues []eksblueprint.LintIssue

	for _, u := range units {
		if !hasResourceOfType(u, typeManifest) {
			continue
		}

		for _, name := range u.Stack.Resources() {
			if u.Template.Resources[name].Type != typeInstance {
				continue
			}
			if !dependsOnType(u, name, typeManifest) {
				issues = append(issues, eksblueprint.LintIssue{
					Stack:    u.Stack.Name(),
					Resource: name,
					Severity: SeverityError,
					Message:  "instance does not depend on any applied manifest, agent ordering is not guaranteed",
					Rule:     r.ID(),
				})
			}
		}
	}

	return issues
}

// ProdApprovalGate checks that deploy stages targeting production start
// with a manual approval action of their own.
type ProdApprovalGate struct{}

func (r ProdApprovalGate) ID() string { return "W201" }
func (r ProdApprovalGate) Description() string {
	return "Production deploy stages should start with a manual approval"
}

func (r ProdApprovalGate) Check(units []Unit) []eksblueprint.LintIssue {
	var issues []eksblueprint.LintIssue

	forEachPipeline(units, func(u Unit, name string, stages []map[string]any) {
		for _, s := range stages {
			stageName, _ := s["Name"].(string)
			if !strings.Contains(stageName, "Prod") || strings.Contains(stageName, "PreProd") {
				continue
			}

			actions := stageActions(s)
			if len(actions) == 0 || actionCategory(actions[0]) != "Approval" {
				issues = append(issues, eksblueprint.LintIssue{
					Stack:    u.Stack.Name(),
					Resource: name,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("stage %s deploys to production without its own approval gate", stageName),
					Rule:     r.ID(),
				})
			}
		}
	})

	return issues
}

// RemotePolicySource flags roles whose permission policy was fetched from a
// remote URL. The source URL is recorded as a tag when the policy is loaded.
type RemotePolicySource struct{}

func (r RemotePolicySource) ID() string { return "W202" }
func (r RemotePolicySource) Description() string {
	return "Permission policies sourced from remote URLs are not reproducible"
}

func (r RemotePolicySource) Check(units []Unit) []eksblueprint.LintIssue {
	var issues []eksblueprint.LintIssue

	for _, u := range units {
		for _, name := range u.Stack.Resources() {
			def := u.Template.Resources[name]
			if def.Type != typeRole {
				continue
			}
			source := tagValue(def, platform.PolicySourceTag)
			if strings.HasPrefix(source, "https://") || strings.HasPrefix(source, "http://") {
				issues = append(issues, eksblueprint.LintIssue{
					Stack:    u.Stack.Name(),
					Resource: name,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("policy fetched from %s, pin a local copy for reproducible builds", source),
					Rule:     r.ID(),
				})
			}
		}
	}

	return issues
}

// DistinctStageTargets checks that no two deploy stages in a pipeline
// target the same environment.
type DistinctStageTargets struct{}

func (r DistinctStageTargets) ID() string { return "W203" }
func (r DistinctStageTargets) Description() string {
	return "Deploy stages should target distinct environments"
}

func (r DistinctStageTargets) Check(units []Unit) []eksblueprint.LintIssue {
	var issues []eksblueprint.LintIssue

	forEachPipeline(units, func(u Unit, name string, stages []map[string]any) {
		seen := make(map[string]string)
		for _, s := range stages {
			stageName, _ := s["Name"].(string)
			fp := deployFingerprint(s)
			if fp == "" {
				continue
			}
			if other, dup := seen[fp]; dup {
				issues = append(issues, eksblueprint.LintIssue{
					Stack:    u.Stack.Name(),
					Resource: name,
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("stages %s and %s deploy to the same environment", other, stageName),
					Rule:     r.ID(),
				})
			} else {
				seen[fp] = stageName
			}
		}
	})

	return issues
}

// hasResourceOfType reports whether the unit contains a resource of the type.
func hasResourceOfType(u Unit, resourceType string) bool {
	for _, def := range u.Template.Resources {
		if def.Type == resourceType {
			return true
		}
	}
	return false
}

// dependsOnType reports whether the named resource reaches a resource of the
// given type through its dependency edges.
func dependsOnType(u Unit, name, resourceType string) bool {
	visited := make(map[string]bool)
	queue := u.Stack.Dependencies(name)

	for len(queue) > 0 {
		dep := queue[0]
		queue = queue[1:]
		if visited[dep] {
			continue
		}
		visited[dep] = true

		if u.Template.Resources[dep].Type == resourceType {
			return true
		}
		queue = append(queue, u.Stack.Dependencies(dep)...)
	}

	return false
}

// hasExpanderConfig reports whether the unit contains a manifest carrying an
// expander ConfigMap.
func hasExpanderConfig(u Unit) bool {
	for _, def := range u.Template.Resources {
		if def.Type != typeManifest {
			continue
		}
		manifest, _ := def.Properties["Manifest"].(string)
		if strings.Contains(manifest, "ConfigMap") && strings.Contains(manifest, "expander") {
			return true
		}
	}
	return false
}

// capacityType extracts the CapacityType of a nodegroup definition.
func capacityType(def eksblueprint.ResourceDef) string {
	s, _ := def.Properties["CapacityType"].(string)
	return s
}

// instanceTypes extracts the InstanceTypes of a nodegroup definition.
func instanceTypes(def eksblueprint.ResourceDef) []any {
	types, _ := def.Properties["InstanceTypes"].([]any)
	return types
}

// tagValue extracts a tag value by key from a resource definition.
func tagValue(def eksblueprint.ResourceDef, key string) string {
	tags, _ := def.Properties["Tags"].([]any)
	for _, t := range tags {
		tag, ok := t.(map[string]any)
		if !ok {
			continue
		}
		if tag["Key"] == key {
			value, _ := tag["Value"].(string)
			return value
		}
	}
	return ""
}

// forEachPipeline invokes fn for every pipeline resource with its stages.
func forEachPipeline(units []Unit, fn func(u Unit, name string, stages []map[string]any)) {
	for _, u := range units {
		for _, name := range u.Stack.Resources() {
			def := u.Template.Resources[name]
			if def.Type != typePipeline {
				continue
			}

			raw, _ := def.Properties["Stages"].([]any)
			stages := make([]map[string]any, 0, len(raw))
			for _, s := range raw {
				if stage, ok := s.(map[string]any); ok {
					stages = append(stages, stage)
				}
			}
			fn(u, name, stages)
		}
	}
}

// stageActions extracts the actions of a stage declaration.
func stageActions(stage map[string]any) []map[string]any {
	raw, _ := stage["Actions"].([]any)
	actions := make([]map[string]any, 0, len(raw))
	for _, a := range raw {
		if action, ok := a.(map[string]any); ok {
			actions = append(actions, action)
		}
	}
	return actions
}

// actionCategory extracts the ActionTypeId.Category of an action.
func actionCategory(action map[string]any) string {
	typeID, _ := action["ActionTypeId"].(map[string]any)
	category, _ := typeID["Category"].(string)
	return category
}

// deployFingerprint identifies the environment a stage's deploy actions
// target. Empty for stages without deploy actions.
func deployFingerprint(stage map[string]any) string {
	var parts []string
	for _, action := range stageActions(stage) {
		if actionCategory(action) != "Deploy" {
			continue
		}
		region, _ := action["Region"].(string)
		config, _ := action["Configuration"].(map[string]any)
		target, _ := config["StackName"].(string)
		parts = append(parts, region+"|"+target)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ",")
}
