// Package codebuild provides the CodeBuild project type for the pipeline's
// synthesis step.
package codebuild

// Project_Source configures where a build gets its input.
type Project_Source struct {
	Type      string
	BuildSpec string
}

// Project_Artifacts configures where build output goes.
type Project_Artifacts struct {
	Type string
}

// Project_Environment configures the build container.
type Project_Environment struct {
	ComputeType string
	Image       string
	Type        string
}

// Project represents an AWS::CodeBuild::Project resource.
type Project struct {
	Name        any
	ServiceRole any
	Source      Project_Source
	Artifacts   Project_Artifacts
	Environment Project_Environment
	Tags        []any
}

// ResourceType returns the CloudFormation type.
func (Project) ResourceType() string { return "AWS::CodeBuild::Project" }
