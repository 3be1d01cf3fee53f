// Package codepipeline provides pipeline, stage, and webhook types for the
// promotion pipeline.
package codepipeline

// Pipeline_ArtifactStore configures the pipeline's artifact bucket.
type Pipeline_ArtifactStore struct {
	Type     string
	Location any
}

// Pipeline_ActionTypeId identifies an action implementation.
type Pipeline_ActionTypeId struct {
	Category string
	Owner    string
	Provider string
	Version  string
}

// Pipeline_InputArtifact names an artifact consumed by an action.
type Pipeline_InputArtifact struct {
	Name string
}

// Pipeline_OutputArtifact names an artifact produced by an action.
type Pipeline_OutputArtifact struct {
	Name string
}

// Pipeline_ActionDeclaration is a single action within a stage.
type Pipeline_ActionDeclaration struct {
	Name            string
	ActionTypeId    Pipeline_ActionTypeId
	Configuration   map[string]any
	InputArtifacts  []any
	OutputArtifacts []any
	RunOrder        *int
	Region          string
	RoleArn         any
}

// Pipeline_StageDeclaration is an ordered stage of actions.
type Pipeline_StageDeclaration struct {
	Name    string
	Actions []any
}

// Pipeline represents an AWS::CodePipeline::Pipeline resource.
type Pipeline struct {
	Name          any
	RoleArn       any
	ArtifactStore Pipeline_ArtifactStore
	Stages        []any
	Tags          []any
}

// ResourceType returns the CloudFormation type.
func (Pipeline) ResourceType() string { return "AWS::CodePipeline::Pipeline" }

// Webhook_AuthConfiguration carries webhook authentication settings.
type Webhook_AuthConfiguration struct {
	SecretToken any
}

// Webhook_FilterRule matches incoming webhook payloads.
type Webhook_FilterRule struct {
	JsonPath    string
	MatchEquals string
}

// Webhook represents an AWS::CodePipeline::Webhook resource.
type Webhook struct {
	Name                        any
	Authentication              string
	AuthenticationConfiguration Webhook_AuthConfiguration
	Filters                     []any
	TargetPipeline              any
	TargetAction                string
	TargetPipelineVersion       *int
	RegisterWithThirdParty      bool
}

// ResourceType returns the CloudFormation type.
func (Webhook) ResourceType() string { return "AWS::CodePipeline::Webhook" }
