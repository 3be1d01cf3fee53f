package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eksblueprint "github.com/nordforge/eksblueprint"
	"github.com/nordforge/eksblueprint/platform"
)

var testConfig = platform.Config{Account: "111111111111", Region: "eu-west-1"}

func buildTemplate(t *testing.T, p Params) *eksblueprint.Template {
	t.Helper()
	a, err := New(p)
	require.NoError(t, err)

	built, err := a.Build()
	require.NoError(t, err)
	require.Len(t, built, 1)
	return built[0].Template
}

func pipelineStages(t *testing.T, tpl *eksblueprint.Template) []map[string]any {
	t.Helper()
	def, ok := tpl.Resources["Pipeline"]
	require.True(t, ok, "Pipeline resource missing")

	raw, ok := def.Properties["Stages"].([]any)
	require.True(t, ok, "Stages missing")

	stages := make([]map[string]any, 0, len(raw))
	for _, s := range raw {
		stages = append(stages, s.(map[string]any))
	}
	return stages
}

func stageByName(t *testing.T, tpl *eksblueprint.Template, name string) map[string]any {
	t.Helper()
	for _, s := range pipelineStages(t, tpl) {
		if s["Name"] == name {
			return s
		}
	}
	t.Fatalf("stage %s not found", name)
	return nil
}

func stageActions(t *testing.T, stage map[string]any) []map[string]any {
	t.Helper()
	raw, ok := stage["Actions"].([]any)
	require.True(t, ok, "Actions missing in stage %v", stage["Name"])

	actions := make([]map[string]any, 0, len(raw))
	for _, a := range raw {
		actions = append(actions, a.(map[string]any))
	}
	return actions
}

func actionCategory(a map[string]any) string {
	typeID, _ := a["ActionTypeId"].(map[string]any)
	cat, _ := typeID["Category"].(string)
	return cat
}

func actionConfig(a map[string]any) map[string]any {
	cfg, _ := a["Configuration"].(map[string]any)
	return cfg
}

func TestNew_StageOrder(t *testing.T) {
	tpl := buildTemplate(t, Params{Config: testConfig})

	var names []string
	for _, s := range pipelineStages(t, tpl) {
		names = append(names, s["Name"].(string))
	}
	assert.Equal(t, []string{"Source", "Synth", "Deploy-PreProd", "Deploy-Prod"}, names)
}

func TestNew_SourceAction(t *testing.T) {
	tpl := buildTemplate(t, Params{Config: testConfig})

	actions := stageActions(t, stageByName(t, tpl, "Source"))
	require.Len(t, actions, 1)

	cfg := actionConfig(actions[0])
	assert.Equal(t, "eks-platform", cfg["Repo"])
	assert.Equal(t, "main", cfg["Branch"])
	assert.Equal(t, "{{resolve:secretsmanager:github-user}}", cfg["Owner"])
	assert.Equal(t, "{{resolve:secretsmanager:github-token}}", cfg["OAuthToken"])
	assert.Equal(t, false, cfg["PollForSourceChanges"])
}

func TestNew_SourceOverrides(t *testing.T) {
	tpl := buildTemplate(t, Params{Config: testConfig, Repo: "infra", Branch: "release"})

	actions := stageActions(t, stageByName(t, tpl, "Source"))
	cfg := actionConfig(actions[0])
	assert.Equal(t, "infra", cfg["Repo"])
	assert.Equal(t, "release", cfg["Branch"])
}

func TestNew_PreProdStage(t *testing.T) {
	tpl := buildTemplate(t, Params{Config: testConfig})

	actions := stageActions(t, stageByName(t, tpl, "Deploy-PreProd"))
	require.Len(t, actions, 3)

	assert.Equal(t, "Network", actions[0]["Name"])
	assert.Equal(t, "Deploy", actionCategory(actions[0]))
	assert.Equal(t, int64(1), actions[0]["RunOrder"])
	assert.Equal(t, "Platform-PreProd-Network", actionConfig(actions[0])["StackName"])

	assert.Equal(t, "EKS", actions[1]["Name"])
	assert.Equal(t, int64(2), actions[1]["RunOrder"])
	assert.Equal(t, "Platform-PreProd-EKS", actionConfig(actions[1])["StackName"])

	assert.Equal(t, "ConfirmPreProdDeployment", actions[2]["Name"])
	assert.Equal(t, "Approval", actionCategory(actions[2]))
	assert.Equal(t, int64(3), actions[2]["RunOrder"])

	// Deploy actions in the default region carry no region override.
	_, hasRegion := actions[0]["Region"]
	assert.False(t, hasRegion)
}

func TestNew_ProdStage(t *testing.T) {
	tpl := buildTemplate(t, Params{Config: testConfig})

	actions := stageActions(t, stageByName(t, tpl, "Deploy-Prod"))
	require.Len(t, actions, 2)

	for _, a := range actions {
		assert.Equal(t, "Deploy", actionCategory(a))
		assert.Equal(t, "eu-central-1", a["Region"])
	}
	assert.Equal(t, "Platform-Prod-Network", actionConfig(actions[0])["StackName"])
	assert.Equal(t, "Platform-Prod-EKS", actionConfig(actions[1])["StackName"])
}

func TestNew_TemplatePaths(t *testing.T) {
	tpl := buildTemplate(t, Params{Config: testConfig})

	actions := stageActions(t, stageByName(t, tpl, "Deploy-PreProd"))
	assert.Equal(t, "CloudAssembly::Platform-PreProd-Network.template.json",
		actionConfig(actions[0])["TemplatePath"])
	assert.Equal(t, "CloudAssembly::Platform-PreProd-EKS.template.json",
		actionConfig(actions[1])["TemplatePath"])
}

func TestNew_DistinctStageTargets(t *testing.T) {
	tpl := buildTemplate(t, Params{Config: testConfig})

	seen := make(map[string]bool)
	for _, name := range []string{"Deploy-PreProd", "Deploy-Prod"} {
		for _, a := range stageActions(t, stageByName(t, tpl, name)) {
			if actionCategory(a) != "Deploy" {
				continue
			}
			region, _ := a["Region"].(string)
			key := region + "|" + actionConfig(a)["StackName"].(string)
			assert.False(t, seen[key], "duplicate deploy target %s", key)
			seen[key] = true
		}
	}
}

func TestNew_Webhook(t *testing.T) {
	tpl := buildTemplate(t, Params{Config: testConfig})

	def, ok := tpl.Resources["SourceWebhook"]
	require.True(t, ok)
	assert.Equal(t, "AWS::CodePipeline::Webhook", def.Type)

	auth := def.Properties["AuthenticationConfiguration"].(map[string]any)
	assert.Equal(t, "{{resolve:secretsmanager:github-token}}", auth["SecretToken"])
	assert.Contains(t, def.DependsOn, "Pipeline")
}

func TestNew_ArtifactBucketVersioned(t *testing.T) {
	tpl := buildTemplate(t, Params{Config: testConfig})

	def, ok := tpl.Resources["ArtifactBucket"]
	require.True(t, ok)
	versioning := def.Properties["VersioningConfiguration"].(map[string]any)
	assert.Equal(t, "Enabled", versioning["Status"])
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Params{})
	require.Error(t, err)
}

func TestStages(t *testing.T) {
	stages := Stages(testConfig)
	require.Len(t, stages, 2)

	assert.Equal(t, "Platform-PreProd", stages[0].Platform.Name)
	assert.Equal(t, "pre-prod", stages[0].Platform.EnvName)
	assert.Equal(t, testConfig, stages[0].Platform.Config)
	assert.Equal(t, "ConfirmPreProdDeployment", stages[0].ApprovalAfter)

	assert.Equal(t, "Platform-Prod", stages[1].Platform.Name)
	assert.Empty(t, stages[1].Platform.EnvName)
	assert.Equal(t, ProdRegion, stages[1].Platform.Config.Region)
	assert.Empty(t, stages[1].ApprovalAfter)
}

func TestNew_Deterministic(t *testing.T) {
	first, err := New(Params{Config: testConfig})
	require.NoError(t, err)
	firstBuilt, err := first.Build()
	require.NoError(t, err)
	firstJSON, err := firstBuilt[0].Template.MarshalIndentJSON()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		a, err := New(Params{Config: testConfig})
		require.NoError(t, err)
		built, err := a.Build()
		require.NoError(t, err)
		out, err := built[0].Template.MarshalIndentJSON()
		require.NoError(t, err)
		assert.Equal(t, string(firstJSON), string(out))
	}
}
