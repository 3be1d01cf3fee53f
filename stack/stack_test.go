package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eksblueprint "github.com/nordforge/eksblueprint"
	"github.com/nordforge/eksblueprint/intrinsics"
	"github.com/nordforge/eksblueprint/resources/ec2"
	"github.com/nordforge/eksblueprint/resources/s3"
)

func TestStack_BuildSimple(t *testing.T) {
	s := New("network")
	s.SetDescription("network layer")
	s.Add("Vpc", ec2.VPC{CidrBlock: "10.0.0.0/16"})
	s.Add("Igw", ec2.InternetGateway{})
	s.Add("IgwAttachment", ec2.VPCGatewayAttachment{
		VpcId:             intrinsics.Ref{LogicalName: "Vpc"},
		InternetGatewayId: intrinsics.Ref{LogicalName: "Igw"},
	}, "Vpc", "Igw")

	template, err := s.Build()
	require.NoError(t, err)

	assert.Equal(t, "2010-09-09", template.AWSTemplateFormatVersion)
	assert.Equal(t, "network layer", template.Description)
	assert.Len(t, template.Resources, 3)

	vpc := template.Resources["Vpc"]
	assert.Equal(t, "AWS::EC2::VPC", vpc.Type)
	assert.Equal(t, "10.0.0.0/16", vpc.Properties["CidrBlock"])

	attachment := template.Resources["IgwAttachment"]
	assert.Equal(t, []string{"Igw", "Vpc"}, attachment.DependsOn)
}

func TestStack_DuplicateName(t *testing.T) {
	s := New("network")
	s.Add("Vpc", ec2.VPC{CidrBlock: "10.0.0.0/16"})
	s.Add("Vpc", ec2.VPC{CidrBlock: "10.1.0.0/16"})

	_, err := s.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate resource name: Vpc")
}

func TestStack_UnknownDependency(t *testing.T) {
	s := New("network")
	s.Add("Igw", ec2.InternetGateway{}, "Vpc")

	_, err := s.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown resource Vpc")
}

func TestStack_CycleDetection(t *testing.T) {
	s := New("broken")
	s.Add("A", s3.Bucket{BucketName: "a"}, "B")
	s.Add("B", s3.Bucket{BucketName: "b"}, "C")
	s.Add("C", s3.Bucket{BucketName: "c"}, "A")

	_, err := s.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular dependency detected")
	assert.Contains(t, err.Error(), "A")
	assert.Contains(t, err.Error(), "B")
	assert.Contains(t, err.Error(), "C")
}

func TestStack_AddDependencyAfterRegistration(t *testing.T) {
	s := New("addons")
	s.Add("Agent", s3.Bucket{BucketName: "agent"})
	s.Add("Autoscaler", s3.Bucket{BucketName: "autoscaler"})
	s.AddDependency("Autoscaler", "Agent")

	template, err := s.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"Agent"}, template.Resources["Autoscaler"].DependsOn)
}

func TestStack_DeterministicOutput(t *testing.T) {
	build := func() []byte {
		s := New("network")
		s.Add("Vpc", ec2.VPC{CidrBlock: "10.0.0.0/16"})
		s.Add("SubnetA", ec2.Subnet{
			VpcId:     intrinsics.Ref{LogicalName: "Vpc"},
			CidrBlock: "10.0.0.0/24",
		}, "Vpc")
		s.Add("SubnetB", ec2.Subnet{
			VpcId:     intrinsics.Ref{LogicalName: "Vpc"},
			CidrBlock: "10.0.1.0/24",
		}, "Vpc")
		s.SetOutput("VpcId", eksblueprint.Output{
			Description: "vpc identifier",
			Value:       intrinsics.Ref{LogicalName: "Vpc"},
		})
		template, err := s.Build()
		require.NoError(t, err)
		data, err := ToJSON(template)
		require.NoError(t, err)
		return data
	}

	first := build()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, build())
	}
}

func TestStack_OutputsAndParameters(t *testing.T) {
	s := New("network")
	s.Add("Vpc", ec2.VPC{CidrBlock: "10.0.0.0/16"})
	s.SetParameter("EnvName", eksblueprint.Parameter{Type: "String", Default: "dev"})
	s.SetOutput("VpcId", eksblueprint.Output{
		Description: "vpc identifier",
		Value:       intrinsics.Ref{LogicalName: "Vpc"},
		Export:      &eksblueprint.Export{Name: "network-VpcId"},
	})

	template, err := s.Build()
	require.NoError(t, err)

	require.Contains(t, template.Parameters, "EnvName")
	require.Contains(t, template.Outputs, "VpcId")
	assert.Equal(t, "network-VpcId", template.Outputs["VpcId"].Export.Name)
}

func TestAssembly_BuildOrder(t *testing.T) {
	network := New("network")
	network.Add("Vpc", ec2.VPC{CidrBlock: "10.0.0.0/16"})

	cluster := New("eks")
	cluster.Add("Artifacts", s3.Bucket{BucketName: "artifacts"})

	a := NewAssembly("dev")
	a.Add(network)
	a.Add(cluster)

	built, err := a.Build()
	require.NoError(t, err)
	require.Len(t, built, 2)
	assert.Equal(t, "network", built[0].Stack.Name())
	assert.Equal(t, "eks", built[1].Stack.Name())
}

func TestAssembly_DuplicateStackName(t *testing.T) {
	a := NewAssembly("dev")
	a.Add(New("network"))
	a.Add(New("network"))

	_, err := a.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate stack name: network")
}

func TestAssembly_StackLookup(t *testing.T) {
	a := NewAssembly("dev")
	network := New("network")
	a.Add(network)

	assert.Same(t, network, a.Stack("network"))
	assert.Nil(t, a.Stack("missing"))
}
