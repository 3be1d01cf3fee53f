// Package eks provides EKS resource types for the managed cluster and its
// node groups.
package eks

// Cluster_ResourcesVpcConfig defines the VPC configuration for a cluster.
// Endpoint access fields are pointers so an explicit false survives
// serialization (private-only endpoint access).
type Cluster_ResourcesVpcConfig struct {
	SubnetIds             []any
	SecurityGroupIds      []any
	EndpointPublicAccess  *bool
	EndpointPrivateAccess *bool
}

// Cluster represents an AWS::EKS::Cluster resource.
type Cluster struct {
	Name               any
	Version            string
	RoleArn            any
	ResourcesVpcConfig Cluster_ResourcesVpcConfig
	Tags               []any
}

// ResourceType returns the CloudFormation type.
func (Cluster) ResourceType() string { return "AWS::EKS::Cluster" }

// Nodegroup_ScalingConfig defines scaling bounds for a node group.
// Pointers keep a declared zero (e.g. DesiredSize 0) in the template.
type Nodegroup_ScalingConfig struct {
	MinSize     *int
	MaxSize     *int
	DesiredSize *int
}

// Nodegroup_Taint applies a scheduling taint to a node group.
type Nodegroup_Taint struct {
	Key    string
	Value  string
	Effect string
}

// Nodegroup represents an AWS::EKS::Nodegroup resource.
type Nodegroup struct {
	ClusterName   any
	NodegroupName any
	NodeRole      any
	Subnets       []any
	InstanceTypes []any
	AmiType       string
	CapacityType  string
	ScalingConfig Nodegroup_ScalingConfig
	Labels        map[string]any
	Taints        []any
	Tags          map[string]any
}

// ResourceType returns the CloudFormation type.
func (Nodegroup) ResourceType() string { return "AWS::EKS::Nodegroup" }

// Capacity types for node groups.
const (
	CapacityOnDemand = "ON_DEMAND"
	CapacitySpot     = "SPOT"
)

// AMI types for node groups.
const (
	AmiAL2x8664 = "AL2_x86_64"
	AmiAL2Arm64 = "AL2_ARM_64"
)
