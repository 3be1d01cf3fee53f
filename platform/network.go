package platform

import (
	"fmt"

	eksblueprint "github.com/nordforge/eksblueprint"
	"github.com/nordforge/eksblueprint/intrinsics"
	"github.com/nordforge/eksblueprint/resources/ec2"
	"github.com/nordforge/eksblueprint/stack"
)

// VpcCidr is the address block of the platform network.
const VpcCidr = "10.0.0.0/16"

// Subnet group names. Control-plane subnets are /28 per the managed
// cluster's networking guidance, the rest are /24.
const (
	SubnetGroupControlPlane = "eks-control-plane"
	SubnetGroupPrivate      = "Private"
	SubnetGroupPublic       = "Public"
)

// subnetGroupTag marks which group a subnet belongs to.
const subnetGroupTag = "eksblueprint:subnet-group"

type subnetSpec struct {
	logicalName string
	group       string
	cidr        string
	azIndex     int
	public      bool
}

var subnetLayout = []subnetSpec{
	{"PublicSubnetA", SubnetGroupPublic, "10.0.0.0/24", 0, true},
	{"PublicSubnetB", SubnetGroupPublic, "10.0.1.0/24", 1, true},
	{"PrivateSubnetA", SubnetGroupPrivate, "10.0.2.0/24", 0, false},
	{"PrivateSubnetB", SubnetGroupPrivate, "10.0.3.0/24", 1, false},
	{"ControlPlaneSubnetA", SubnetGroupControlPlane, "10.0.4.0/28", 0, false},
	{"ControlPlaneSubnetB", SubnetGroupControlPlane, "10.0.4.16/28", 1, false},
}

// Network is the declared virtual network: one VPC with control-plane,
// private, and public subnet groups across two availability zones. Other
// stacks reference it through its exported values.
type Network struct {
	stack *stack.Stack
}

// NewNetwork declares the network topology in a stack with the given name.
func NewNetwork(stackName string) *Network {
	s := stack.New(stackName)
	s.SetDescription("Platform network: VPC with control-plane, private, and public subnet groups")

	s.Add("Vpc", ec2.VPC{
		CidrBlock:          VpcCidr,
		EnableDnsHostnames: true,
		EnableDnsSupport:   true,
	})
	s.Add("Igw", ec2.InternetGateway{})
	s.Add("IgwAttachment", ec2.VPCGatewayAttachment{
		InternetGatewayId: intrinsics.Ref{LogicalName: "Igw"},
		VpcId:             intrinsics.Ref{LogicalName: "Vpc"},
	}, "Vpc", "Igw")

	for _, spec := range subnetLayout {
		s.Add(spec.logicalName, ec2.Subnet{
			VpcId:               intrinsics.Ref{LogicalName: "Vpc"},
			CidrBlock:           spec.cidr,
			AvailabilityZone:    intrinsics.Select{Index: spec.azIndex, List: intrinsics.GetAZs{}},
			MapPublicIpOnLaunch: spec.public,
			Tags: []any{
				intrinsics.Tag{Key: subnetGroupTag, Value: spec.group},
			},
		}, "Vpc")
	}

	// One NAT gateway in the first public subnet serves all private traffic.
	s.Add("NatEip", ec2.EIP{Domain: "vpc"})
	s.Add("NatGateway", ec2.NatGateway{
		AllocationId: intrinsics.GetAtt{LogicalName: "NatEip", Attribute: "AllocationId"},
		SubnetId:     intrinsics.Ref{LogicalName: "PublicSubnetA"},
	}, "NatEip", "PublicSubnetA", "IgwAttachment")

	s.Add("PublicRouteTable", ec2.RouteTable{
		VpcId: intrinsics.Ref{LogicalName: "Vpc"},
	}, "Vpc")
	s.Add("PublicDefaultRoute", ec2.Route{
		RouteTableId:         intrinsics.Ref{LogicalName: "PublicRouteTable"},
		DestinationCidrBlock: "0.0.0.0/0",
		GatewayId:            intrinsics.Ref{LogicalName: "Igw"},
	}, "PublicRouteTable", "IgwAttachment")

	s.Add("PrivateRouteTable", ec2.RouteTable{
		VpcId: intrinsics.Ref{LogicalName: "Vpc"},
	}, "Vpc")
	s.Add("PrivateDefaultRoute", ec2.Route{
		RouteTableId:         intrinsics.Ref{LogicalName: "PrivateRouteTable"},
		DestinationCidrBlock: "0.0.0.0/0",
		NatGatewayId:         intrinsics.Ref{LogicalName: "NatGateway"},
	}, "PrivateRouteTable", "NatGateway")

	for _, spec := range subnetLayout {
		table := "PrivateRouteTable"
		if spec.public {
			table = "PublicRouteTable"
		}
		s.Add(spec.logicalName+"RouteAssoc", ec2.SubnetRouteTableAssociation{
			SubnetId:     intrinsics.Ref{LogicalName: spec.logicalName},
			RouteTableId: intrinsics.Ref{LogicalName: table},
		}, spec.logicalName, table)
	}

	n := &Network{stack: s}

	s.SetOutput("VpcId", eksblueprint.Output{
		Description: "Platform VPC identifier",
		Value:       intrinsics.Ref{LogicalName: "Vpc"},
		Export:      &eksblueprint.Export{Name: n.exportName("VpcId")},
	})
	s.SetOutput("VpcCidr", eksblueprint.Output{
		Description: "Platform VPC address block",
		Value:       VpcCidr,
		Export:      &eksblueprint.Export{Name: n.exportName("VpcCidr")},
	})
	for _, spec := range subnetLayout {
		s.SetOutput(spec.logicalName+"Id", eksblueprint.Output{
			Value:  intrinsics.Ref{LogicalName: spec.logicalName},
			Export: &eksblueprint.Export{Name: n.exportName(spec.logicalName + "Id")},
		})
	}

	return n
}

// Stack returns the underlying stack for assembly.
func (n *Network) Stack() *stack.Stack { return n.stack }

// VpcID returns a cross-stack reference to the VPC identifier.
func (n *Network) VpcID() any {
	return intrinsics.ImportValue{Name: n.exportName("VpcId")}
}

// SubnetIDs returns cross-stack references to the subnets of a group.
func (n *Network) SubnetIDs(group string) []any {
	var ids []any
	for _, spec := range subnetLayout {
		if spec.group == group {
			ids = append(ids, intrinsics.ImportValue{Name: n.exportName(spec.logicalName + "Id")})
		}
	}
	return ids
}

func (n *Network) exportName(suffix string) string {
	return fmt.Sprintf("%s-%s", n.stack.Name(), suffix)
}
