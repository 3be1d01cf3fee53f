package platform

import (
	"fmt"

	"github.com/nordforge/eksblueprint/intrinsics"
	"github.com/nordforge/eksblueprint/resources/ec2"
	"github.com/nordforge/eksblueprint/resources/eks"
	"github.com/nordforge/eksblueprint/resources/iam"
	"github.com/nordforge/eksblueprint/stack"
)

// ClusterVersion is the pinned orchestration engine version.
const ClusterVersion = "1.20"

// ClusterParams configures the cluster stack.
type ClusterParams struct {
	Config      Config
	EnvName     string
	ClusterName string
	Options     Options
	Network     *Network

	// LBControllerPolicy carries the load balancer controller's permission
	// policy, fetched or loaded by the caller. Required when the controller
	// flag is on. LBControllerPolicySource records where it came from.
	LBControllerPolicy       intrinsics.PolicyDocument
	LBControllerPolicySource string
}

// ComposedClusterName is the deployed cluster name: "<cluster>-<env>".
func (p ClusterParams) ComposedClusterName() string {
	return p.ClusterName + "-" + p.EnvName
}

// assumedByRootAndEC2 is the trust policy shared by the admin role and the
// node pool roles.
func assumedByRootAndEC2() intrinsics.PolicyDocument {
	return intrinsics.NewPolicyDocument(intrinsics.PolicyStatement{
		Effect: "Allow",
		Principal: intrinsics.CompositePrincipal{
			AWS:     intrinsics.Any(intrinsics.AccountRootArn()),
			Service: intrinsics.Any("ec2.amazonaws.com"),
		},
		Action: "sts:AssumeRole",
	})
}

// NewCluster declares the cluster stack: administrative identity, control
// plane security boundary, the managed cluster with zero default capacity,
// three node pools, and the add-ons.
func NewCluster(stackName string, p ClusterParams) (*stack.Stack, error) {
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}
	if p.Network == nil {
		return nil, fmt.Errorf("cluster stack requires a network")
	}
	if p.Options.DeployLoadBalancerController && len(p.LBControllerPolicy.Statement) == 0 {
		return nil, fmt.Errorf("load balancer controller enabled but no permission policy provided")
	}

	s := stack.New(stackName)
	s.SetDescription(fmt.Sprintf("Managed cluster %s with node pools and add-ons", p.ComposedClusterName()))

	// Administrative identity: assumable from the account root for human
	// access and from EC2 for the bastion. SSM core for session access,
	// secret reads for the GitOps bootstrap on the bastion.
	s.Add("ClusterAdminRole", iam.Role{
		AssumeRolePolicyDocument: assumedByRootAndEC2(),
		ManagedPolicyArns: intrinsics.Any(
			iam.ManagedPolicyArn("AmazonSSMManagedInstanceCore"),
		),
		Policies: intrinsics.Any(iam.Role_Policy{
			PolicyName: "cluster-admin",
			PolicyDocument: intrinsics.NewPolicyDocument(
				intrinsics.PolicyStatement{
					Effect:   "Allow",
					Action:   intrinsics.Any("eks:DescribeCluster"),
					Resource: "*",
				},
				intrinsics.PolicyStatement{
					Effect: "Allow",
					Action: "secretsmanager:GetSecretValue",
					Resource: intrinsics.Any(
						intrinsics.Sub{String: "arn:${AWS::Partition}:secretsmanager:${AWS::Region}:*:secret:github-token*"},
						intrinsics.Sub{String: "arn:${AWS::Partition}:secretsmanager:${AWS::Region}:*:secret:github-user*"},
					),
				},
			),
		}),
	})

	// Control plane security boundary: all traffic from inside the network.
	s.Add("ControlPlaneSecurityGroup", ec2.SecurityGroup{
		GroupDescription: "Control plane ENIs",
		VpcId:            p.Network.VpcID(),
	})
	s.Add("ControlPlaneIngress", ec2.SecurityGroupIngress{
		GroupId:     intrinsics.GetAtt{LogicalName: "ControlPlaneSecurityGroup", Attribute: "GroupId"},
		CidrIp:      VpcCidr,
		IpProtocol:  "-1",
		Description: "All traffic from within the platform network",
	}, "ControlPlaneSecurityGroup")

	s.Add("ClusterServiceRole", iam.Role{
		AssumeRolePolicyDocument: intrinsics.NewPolicyDocument(intrinsics.PolicyStatement{
			Effect:    "Allow",
			Principal: intrinsics.ServicePrincipal{"eks.amazonaws.com"},
			Action:    "sts:AssumeRole",
		}),
		ManagedPolicyArns: intrinsics.Any(
			iam.ManagedPolicyArn("AmazonEKSClusterPolicy"),
		),
	})

	// Control plane ENIs land in the dedicated /28 subnets. Private
	// endpoint only, no default node capacity.
	s.Add("Cluster", eks.Cluster{
		Name:    p.ComposedClusterName(),
		Version: ClusterVersion,
		RoleArn: intrinsics.GetAtt{LogicalName: "ClusterServiceRole", Attribute: "Arn"},
		ResourcesVpcConfig: eks.Cluster_ResourcesVpcConfig{
			SubnetIds: p.Network.SubnetIDs(SubnetGroupControlPlane),
			SecurityGroupIds: intrinsics.Any(
				intrinsics.GetAtt{LogicalName: "ControlPlaneSecurityGroup", Attribute: "GroupId"},
			),
			EndpointPublicAccess:  intrinsics.BoolPtr(false),
			EndpointPrivateAccess: intrinsics.BoolPtr(true),
		},
	}, "ClusterServiceRole", "ControlPlaneSecurityGroup")

	addNodePools(s, p)

	if err := addAddons(s, p); err != nil {
		return nil, err
	}

	return s, nil
}

// nodePool describes one worker pool declaration.
type nodePool struct {
	logicalName  string
	name         string
	capacityType string
	amiType      string
	instances    []any
	min          int
	desired      int
	max          int
}

// nodePools is the platform's worker pool layout. The spot pool lists more
// instance shapes than on-demand so capacity shortage in one shape can be
// absorbed by another. The graviton pool starts empty.
var nodePools = []nodePool{
	{
		logicalName:  "OdDefaultNg",
		name:         "od-default-ng",
		capacityType: eks.CapacityOnDemand,
		amiType:      eks.AmiAL2x8664,
		instances:    intrinsics.Any("m5.large"),
		min:          0,
		desired:      1,
		max:          10,
	},
	{
		logicalName:  "SpotDefaultNg",
		name:         "spot-default-ng",
		capacityType: eks.CapacitySpot,
		amiType:      eks.AmiAL2x8664,
		instances:    intrinsics.Any("m5.large", "c5.large", "m4.large", "c4.large"),
		min:          0,
		desired:      1,
		max:          10,
	},
	{
		logicalName:  "OdGravitonNg",
		name:         "od-graviton-ng",
		capacityType: eks.CapacitySpot,
		amiType:      eks.AmiAL2Arm64,
		instances:    intrinsics.Any("m6g.large"),
		min:          0,
		desired:      0,
		max:          10,
	},
}

// requiredNodePolicies are the managed policies every node pool role needs.
var requiredNodePolicies = []string{
	"AmazonSSMManagedInstanceCore",
	"AmazonEKSWorkerNodePolicy",
	"AmazonEKS_CNI_Policy",
	"AmazonEC2ContainerRegistryReadOnly",
}

// addNodePools declares one role and one node group per pool.
func addNodePools(s *stack.Stack, p ClusterParams) {
	var policyArns []any
	for _, name := range requiredNodePolicies {
		policyArns = append(policyArns, iam.ManagedPolicyArn(name))
	}

	for _, pool := range nodePools {
		roleName := pool.logicalName + "Role"
		s.Add(roleName, iam.Role{
			AssumeRolePolicyDocument: assumedByRootAndEC2(),
			ManagedPolicyArns:        policyArns,
		})

		s.Add(pool.logicalName, eks.Nodegroup{
			ClusterName:   intrinsics.Ref{LogicalName: "Cluster"},
			NodegroupName: pool.name,
			NodeRole:      intrinsics.GetAtt{LogicalName: roleName, Attribute: "Arn"},
			Subnets:       p.Network.SubnetIDs(SubnetGroupPrivate),
			InstanceTypes: pool.instances,
			AmiType:       pool.amiType,
			CapacityType:  pool.capacityType,
			ScalingConfig: eks.Nodegroup_ScalingConfig{
				MinSize:     intrinsics.IntPtr(pool.min),
				MaxSize:     intrinsics.IntPtr(pool.max),
				DesiredSize: intrinsics.IntPtr(pool.desired),
			},
		}, "Cluster", roleName)
	}
}
