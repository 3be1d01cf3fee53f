// Package pipeline declares the promotion pipeline: a source trigger, a
// synthesis build, and sequential pre-production and production deploy
// stages.
package pipeline

import (
	"fmt"

	eksblueprint "github.com/nordforge/eksblueprint"
	"github.com/nordforge/eksblueprint/intrinsics"
	"github.com/nordforge/eksblueprint/platform"
	"github.com/nordforge/eksblueprint/resources/codebuild"
	"github.com/nordforge/eksblueprint/resources/codepipeline"
	"github.com/nordforge/eksblueprint/resources/iam"
	"github.com/nordforge/eksblueprint/resources/s3"
	"github.com/nordforge/eksblueprint/stack"
)

// ProdRegion is the fixed region the production stage deploys to,
// independent of the account's default region.
const ProdRegion = "eu-central-1"

// Defaults for the source trigger.
const (
	DefaultRepo   = "eks-platform"
	DefaultBranch = "main"
)

// Secret store entries consumed by the source trigger.
const (
	SecretGithubToken = "github-token"
	SecretGithubUser  = "github-user"
)

// Artifact names used between pipeline actions.
const (
	sourceArtifact        = "SourceArtifact"
	cloudAssemblyArtifact = "CloudAssembly"
)

// Stage describes one promotion target: the platform params the synthesis
// step composes for it and whether an approval gate follows its deploy.
type Stage struct {
	Name           string
	Platform       platform.Params
	ApprovalAfter  string // approval action name, empty for none
	RegionOverride string // deploy action region, empty for the default
}

// Stages returns the promotion order for the given default target:
// pre-production in the default region with an approval gate, then
// production in the fixed production region without one.
func Stages(c platform.Config) []Stage {
	return []Stage{
		{
			Name: "Deploy-PreProd",
			Platform: platform.Params{
				Name:    "Platform-PreProd",
				Config:  c,
				EnvName: "pre-prod",
				Options: platform.DefaultOptions(),
			},
			ApprovalAfter: "ConfirmPreProdDeployment",
		},
		{
			Name: "Deploy-Prod",
			Platform: platform.Params{
				Name:    "Platform-Prod",
				Config:  platform.Config{Account: c.Account, Region: ProdRegion},
				Options: platform.DefaultOptions(),
			},
			RegionOverride: ProdRegion,
		},
	}
}

// Params configures the pipeline stack.
type Params struct {
	Config platform.Config
	Repo   string
	Branch string
}

// New declares the pipeline stack for the promotion of the platform through
// the given stages.
func New(p Params) (*stack.Assembly, error) {
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}
	if p.Repo == "" {
		p.Repo = DefaultRepo
	}
	if p.Branch == "" {
		p.Branch = DefaultBranch
	}

	s := stack.New("Platform-Pipeline")
	s.SetDescription("Promotion pipeline: source, synthesis, pre-prod, prod")

	s.Add("ArtifactBucket", s3.Bucket{
		VersioningConfiguration: &s3.Bucket_VersioningConfiguration{Status: "Enabled"},
	})

	addRoles(s)
	addSynthProject(s)

	stages := []any{
		sourceStage(p),
		synthStage(),
	}
	for _, st := range Stages(p.Config) {
		stages = append(stages, deployStage(st))
	}

	s.Add("Pipeline", codepipeline.Pipeline{
		Name:    "eks-platform",
		RoleArn: intrinsics.GetAtt{LogicalName: "PipelineRole", Attribute: "Arn"},
		ArtifactStore: codepipeline.Pipeline_ArtifactStore{
			Type:     "S3",
			Location: intrinsics.Ref{LogicalName: "ArtifactBucket"},
		},
		Stages: stages,
	}, "ArtifactBucket", "PipelineRole", "SynthProject", "DeployRole")

	s.Add("SourceWebhook", codepipeline.Webhook{
		Authentication: "GITHUB_HMAC",
		AuthenticationConfiguration: codepipeline.Webhook_AuthConfiguration{
			SecretToken: intrinsics.SecretsManager(SecretGithubToken),
		},
		Filters: intrinsics.Any(codepipeline.Webhook_FilterRule{
			JsonPath:    "$.ref",
			MatchEquals: "refs/heads/{Branch}",
		}),
		TargetPipeline:         intrinsics.Ref{LogicalName: "Pipeline"},
		TargetAction:           "GitHub",
		TargetPipelineVersion:  intrinsics.IntPtr(1),
		RegisterWithThirdParty: true,
	}, "Pipeline")

	s.SetOutput("PipelineName", eksblueprint.Output{
		Description: "Promotion pipeline name",
		Value:       intrinsics.Ref{LogicalName: "Pipeline"},
	})

	a := stack.NewAssembly("Platform-Pipeline")
	a.Add(s)
	return a, nil
}

// addRoles declares the pipeline, build, and deploy identities.
func addRoles(s *stack.Stack) {
	serviceAssume := func(service string) intrinsics.PolicyDocument {
		return intrinsics.NewPolicyDocument(intrinsics.PolicyStatement{
			Effect:    "Allow",
			Principal: intrinsics.ServicePrincipal{service},
			Action:    "sts:AssumeRole",
		})
	}

	s.Add("PipelineRole", iam.Role{
		AssumeRolePolicyDocument: serviceAssume("codepipeline.amazonaws.com"),
		Policies: intrinsics.Any(iam.Role_Policy{
			PolicyName: "pipeline",
			PolicyDocument: intrinsics.NewPolicyDocument(
				intrinsics.PolicyStatement{
					Effect:   "Allow",
					Action:   intrinsics.Any("s3:GetObject", "s3:GetObjectVersion", "s3:PutObject", "s3:GetBucketVersioning"),
					Resource: intrinsics.Any(
						intrinsics.GetAtt{LogicalName: "ArtifactBucket", Attribute: "Arn"},
						intrinsics.Sub{String: "${ArtifactBucket.Arn}/*"},
					),
				},
				intrinsics.PolicyStatement{
					Effect:   "Allow",
					Action:   intrinsics.Any("codebuild:StartBuild", "codebuild:BatchGetBuilds"),
					Resource: intrinsics.GetAtt{LogicalName: "SynthProject", Attribute: "Arn"},
				},
				intrinsics.PolicyStatement{
					Effect:   "Allow",
					Action:   intrinsics.Any("cloudformation:*", "iam:PassRole"),
					Resource: "*",
				},
			),
		}),
	}, "ArtifactBucket", "SynthProject")

	s.Add("SynthRole", iam.Role{
		AssumeRolePolicyDocument: serviceAssume("codebuild.amazonaws.com"),
		Policies: intrinsics.Any(iam.Role_Policy{
			PolicyName: "synth",
			PolicyDocument: intrinsics.NewPolicyDocument(
				intrinsics.PolicyStatement{
					Effect:   "Allow",
					Action:   intrinsics.Any("logs:CreateLogGroup", "logs:CreateLogStream", "logs:PutLogEvents"),
					Resource: "*",
				},
				intrinsics.PolicyStatement{
					Effect:   "Allow",
					Action:   intrinsics.Any("s3:GetObject", "s3:GetObjectVersion", "s3:PutObject"),
					Resource: intrinsics.Sub{String: "${ArtifactBucket.Arn}/*"},
				},
			),
		}),
	}, "ArtifactBucket")

	// Deploy actions hand the whole template to CloudFormation, which needs
	// broad rights to create the declared IAM and EKS resources.
	s.Add("DeployRole", iam.Role{
		AssumeRolePolicyDocument: serviceAssume("cloudformation.amazonaws.com"),
		ManagedPolicyArns: intrinsics.Any(
			iam.ManagedPolicyArn("AdministratorAccess"),
		),
	})
}

// addSynthProject declares the build step that synthesizes the templates.
func addSynthProject(s *stack.Stack) {
	buildSpec := `version: 0.2
phases:
  install:
    commands:
      - go install ./cmd/eksblueprint
  build:
    commands:
      - eksblueprint synth --pipeline --output-dir assembly
artifacts:
  base-directory: assembly
  files:
    - '**/*'
`

	s.Add("SynthProject", codebuild.Project{
		Name:        "eks-platform-synth",
		ServiceRole: intrinsics.GetAtt{LogicalName: "SynthRole", Attribute: "Arn"},
		Source: codebuild.Project_Source{
			Type:      "CODEPIPELINE",
			BuildSpec: buildSpec,
		},
		Artifacts: codebuild.Project_Artifacts{Type: "CODEPIPELINE"},
		Environment: codebuild.Project_Environment{
			ComputeType: "BUILD_GENERAL1_SMALL",
			Image:       "aws/codebuild/standard:5.0",
			Type:        "LINUX_CONTAINER",
		},
	}, "SynthRole")
}

// sourceStage triggers on pushes to the configured branch. The repository
// owner and token resolve from the secret store at pipeline runtime.
func sourceStage(p Params) codepipeline.Pipeline_StageDeclaration {
	return codepipeline.Pipeline_StageDeclaration{
		Name: "Source",
		Actions: intrinsics.Any(codepipeline.Pipeline_ActionDeclaration{
			Name: "GitHub",
			ActionTypeId: codepipeline.Pipeline_ActionTypeId{
				Category: "Source",
				Owner:    "ThirdParty",
				Provider: "GitHub",
				Version:  "1",
			},
			Configuration: map[string]any{
				"Owner":                intrinsics.SecretsManager(SecretGithubUser),
				"Repo":                 p.Repo,
				"Branch":               p.Branch,
				"OAuthToken":           intrinsics.SecretsManager(SecretGithubToken),
				"PollForSourceChanges": false,
			},
			OutputArtifacts: intrinsics.Any(codepipeline.Pipeline_OutputArtifact{Name: sourceArtifact}),
			RunOrder:        intrinsics.IntPtr(1),
		}),
	}
}

// synthStage runs the synthesis build over the source artifact.
func synthStage() codepipeline.Pipeline_StageDeclaration {
	return codepipeline.Pipeline_StageDeclaration{
		Name: "Synth",
		Actions: intrinsics.Any(codepipeline.Pipeline_ActionDeclaration{
			Name: "Synth",
			ActionTypeId: codepipeline.Pipeline_ActionTypeId{
				Category: "Build",
				Owner:    "AWS",
				Provider: "CodeBuild",
				Version:  "1",
			},
			Configuration: map[string]any{
				"ProjectName": intrinsics.Ref{LogicalName: "SynthProject"},
			},
			InputArtifacts:  intrinsics.Any(codepipeline.Pipeline_InputArtifact{Name: sourceArtifact}),
			OutputArtifacts: intrinsics.Any(codepipeline.Pipeline_OutputArtifact{Name: cloudAssemblyArtifact}),
			RunOrder:        intrinsics.IntPtr(1),
		}),
	}
}

// deployStage deploys the stage's network stack then its cluster stack,
// followed by a manual approval when the stage declares one.
func deployStage(st Stage) codepipeline.Pipeline_StageDeclaration {
	var actions []any
	runOrder := 1

	for _, suffix := range []string{"Network", "EKS"} {
		stackName := fmt.Sprintf("%s-%s", st.Platform.Name, suffix)
		actions = append(actions, codepipeline.Pipeline_ActionDeclaration{
			Name: suffix,
			ActionTypeId: codepipeline.Pipeline_ActionTypeId{
				Category: "Deploy",
				Owner:    "AWS",
				Provider: "CloudFormation",
				Version:  "1",
			},
			Configuration: map[string]any{
				"ActionMode":   "CREATE_UPDATE",
				"StackName":    stackName,
				"TemplatePath": fmt.Sprintf("%s::%s.template.json", cloudAssemblyArtifact, stackName),
				"Capabilities": "CAPABILITY_IAM,CAPABILITY_NAMED_IAM",
				"RoleArn":      intrinsics.GetAtt{LogicalName: "DeployRole", Attribute: "Arn"},
			},
			InputArtifacts: intrinsics.Any(codepipeline.Pipeline_InputArtifact{Name: cloudAssemblyArtifact}),
			RunOrder:       intrinsics.IntPtr(runOrder),
			Region:         st.RegionOverride,
		})
		runOrder++
	}

	if st.ApprovalAfter != "" {
		actions = append(actions, codepipeline.Pipeline_ActionDeclaration{
			Name: st.ApprovalAfter,
			ActionTypeId: codepipeline.Pipeline_ActionTypeId{
				Category: "Approval",
				Owner:    "AWS",
				Provider: "Manual",
				Version:  "1",
			},
			RunOrder: intrinsics.IntPtr(runOrder),
		})
	}

	return codepipeline.Pipeline_StageDeclaration{
		Name:    st.Name,
		Actions: actions,
	}
}
