package serialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordforge/eksblueprint/intrinsics"
)

type TestBucket struct {
	BucketName  string            `json:"BucketName,omitempty"`
	Tags        []Tag             `json:"Tags,omitempty"`
	Versioning  *TestVersioning   `json:"VersioningConfiguration,omitempty"`
	Environment map[string]string `json:"Environment,omitempty"`
}

type Tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

type TestVersioning struct {
	Status string `json:"Status"`
}

type TestScaling struct {
	MinSize     *int
	MaxSize     *int
	DesiredSize *int
}

type TestCluster struct {
	Name    string
	RoleArn any
	Scaling *TestScaling
	Private *bool
}

func TestProperties_SimpleStruct(t *testing.T) {
	bucket := TestBucket{
		BucketName: "my-bucket",
	}

	props, err := Properties(bucket)
	require.NoError(t, err)

	assert.Equal(t, "my-bucket", props["BucketName"])
	assert.NotContains(t, props, "Tags")       // Empty slice should be omitted
	assert.NotContains(t, props, "Versioning") // Nil pointer should be omitted
}

func TestProperties_WithNestedStruct(t *testing.T) {
	bucket := TestBucket{
		BucketName: "my-bucket",
		Versioning: &TestVersioning{
			Status: "Enabled",
		},
	}

	props, err := Properties(bucket)
	require.NoError(t, err)

	assert.Equal(t, "my-bucket", props["BucketName"])

	versioning := props["VersioningConfiguration"].(map[string]any)
	assert.Equal(t, "Enabled", versioning["Status"])
}

func TestProperties_WithSlice(t *testing.T) {
	bucket := TestBucket{
		BucketName: "my-bucket",
		Tags: []Tag{
			{Key: "Environment", Value: "prod"},
			{Key: "Team", Value: "platform"},
		},
	}

	props, err := Properties(bucket)
	require.NoError(t, err)

	tags := props["Tags"].([]any)
	assert.Len(t, tags, 2)

	tag0 := tags[0].(map[string]any)
	assert.Equal(t, "Environment", tag0["Key"])
	assert.Equal(t, "prod", tag0["Value"])
}

func TestProperties_WithMap(t *testing.T) {
	bucket := TestBucket{
		BucketName: "my-bucket",
		Environment: map[string]string{
			"BUCKET_NAME": "my-bucket",
			"REGION":      "eu-west-1",
		},
	}

	props, err := Properties(bucket)
	require.NoError(t, err)

	env := props["Environment"].(map[string]any)
	assert.Equal(t, "my-bucket", env["BUCKET_NAME"])
	assert.Equal(t, "eu-west-1", env["REGION"])
}

func TestProperties_OmitsZeroValues(t *testing.T) {
	bucket := TestBucket{
		BucketName: "", // Empty string
		Tags:       nil,
		Versioning: nil,
	}

	props, err := Properties(bucket)
	require.NoError(t, err)

	// All zero values should be omitted
	assert.Empty(t, props)
}

func TestProperties_WithPointer(t *testing.T) {
	bucket := &TestBucket{
		BucketName: "my-bucket",
	}

	props, err := Properties(bucket)
	require.NoError(t, err)

	assert.Equal(t, "my-bucket", props["BucketName"])
}

func TestProperties_PointerFieldsKeepMeaningfulZeros(t *testing.T) {
	cluster := TestCluster{
		Name: "eks-dev",
		Scaling: &TestScaling{
			MinSize:     intrinsics.IntPtr(0),
			MaxSize:     intrinsics.IntPtr(10),
			DesiredSize: intrinsics.IntPtr(0),
		},
		Private: intrinsics.BoolPtr(false),
	}

	props, err := Properties(cluster)
	require.NoError(t, err)

	scaling := props["Scaling"].(map[string]any)
	assert.Equal(t, int64(0), scaling["MinSize"])
	assert.Equal(t, int64(10), scaling["MaxSize"])
	assert.Equal(t, int64(0), scaling["DesiredSize"])
	assert.Equal(t, false, props["Private"])
}

func TestProperties_IntrinsicsMarshalAsFunctions(t *testing.T) {
	cluster := TestCluster{
		Name:    "eks-dev",
		RoleArn: intrinsics.GetAtt{LogicalName: "ClusterAdminRole", Attribute: "Arn"},
	}

	props, err := Properties(cluster)
	require.NoError(t, err)

	roleArn := props["RoleArn"].(map[string]any)
	assert.Equal(t, []any{"ClusterAdminRole", "Arn"}, roleArn["Fn::GetAtt"])
}
