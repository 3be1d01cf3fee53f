// Package intrinsics provides CloudFormation intrinsic functions.
// This file contains IAM policy document types and helpers.
package intrinsics

import (
	"encoding/json"
)

// Json is a shorthand for map[string]any.
// Used for inline JSON objects like Condition blocks and chart values.
type Json = map[string]any

// Any creates a []any slice from the given items.
// Use for fields typed as []any that accept mixed types or intrinsics.
func Any(items ...any) []any {
	return items
}

// PolicyDocument represents an IAM policy document.
type PolicyDocument struct {
	Version   string `json:"Version,omitempty"`
	Statement []any  `json:"Statement"`
}

// NewPolicyDocument creates a PolicyDocument with the default version.
func NewPolicyDocument(statements ...any) PolicyDocument {
	return PolicyDocument{Version: "2012-10-17", Statement: statements}
}

// PolicyStatement represents an IAM policy statement.
//
// Example:
//
//	var AssumeRole = PolicyStatement{
//	    Effect:    "Allow",
//	    Principal: ServicePrincipal{"ec2.amazonaws.com"},
//	    Action:    "sts:AssumeRole",
//	}
type PolicyStatement struct {
	Sid       string `json:"Sid,omitempty"`
	Effect    string `json:"Effect"`
	Principal any    `json:"Principal,omitempty"`
	Action    any    `json:"Action,omitempty"`
	Resource  any    `json:"Resource,omitempty"`
	Condition Json   `json:"Condition,omitempty"`
}

// ServicePrincipal represents a service principal (e.g., ec2.amazonaws.com).
// Serializes to {"Service": ...} format.
type ServicePrincipal []any

// MarshalJSON serializes to {"Service": ...} format.
func (p ServicePrincipal) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(map[string]any{"Service": p[0]})
	}
	return json.Marshal(map[string]any{"Service": []any(p)})
}

// AWSPrincipal represents an AWS account/role/user principal.
// Serializes to {"AWS": ...} format.
//
// Examples:
//
//	AWSPrincipal{"arn:aws:iam::123456789:root"}
//	AWSPrincipal{Sub{String: "arn:${AWS::Partition}:iam::${AWS::AccountId}:root"}}
type AWSPrincipal []any

// MarshalJSON serializes to {"AWS": ...} format.
func (p AWSPrincipal) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(map[string]any{"AWS": p[0]})
	}
	return json.Marshal(map[string]any{"AWS": []any(p)})
}

// CompositePrincipal combines several principals into one trust policy
// principal block, e.g. the account root plus the EC2 service.
type CompositePrincipal struct {
	AWS     []any `json:"AWS,omitempty"`
	Service []any `json:"Service,omitempty"`
}

// MarshalJSON collapses single-element principal lists to scalars.
func (p CompositePrincipal) MarshalJSON() ([]byte, error) {
	out := make(map[string]any)
	if len(p.AWS) == 1 {
		out["AWS"] = p.AWS[0]
	} else if len(p.AWS) > 1 {
		out["AWS"] = p.AWS
	}
	if len(p.Service) == 1 {
		out["Service"] = p.Service[0]
	} else if len(p.Service) > 1 {
		out["Service"] = p.Service
	}
	return json.Marshal(out)
}

// AccountRootArn returns the root principal ARN for the current account.
func AccountRootArn() Sub {
	return Sub{String: "arn:${AWS::Partition}:iam::${AWS::AccountId}:root"}
}
