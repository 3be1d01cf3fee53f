// Package iam provides IAM resource types for roles and instance profiles.
package iam

// Role_Policy is an inline policy attached to a role.
type Role_Policy struct {
	PolicyName     any
	PolicyDocument any
}

// Role represents an AWS::IAM::Role resource.
type Role struct {
	RoleName                 any
	AssumeRolePolicyDocument any
	ManagedPolicyArns        []any
	Policies                 []any
	Tags                     []any
}

// ResourceType returns the CloudFormation type.
func (Role) ResourceType() string { return "AWS::IAM::Role" }

// InstanceProfile represents an AWS::IAM::InstanceProfile resource.
type InstanceProfile struct {
	InstanceProfileName any
	Roles               []any
}

// ResourceType returns the CloudFormation type.
func (InstanceProfile) ResourceType() string { return "AWS::IAM::InstanceProfile" }

// ManagedPolicyArn builds the ARN of an AWS managed policy from its name.
func ManagedPolicyArn(name string) string {
	return "arn:aws:iam::aws:policy/" + name
}
