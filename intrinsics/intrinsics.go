// Package intrinsics provides CloudFormation intrinsic functions.
//
// Core intrinsic functions:
//
//	Ref{"MyVPC"} → {"Ref": "MyVPC"}
//	Sub{String: "${AWS::Region}-bucket"} → {"Fn::Sub": "${AWS::Region}-bucket"}
//	Join{Delimiter: ",", Values: []any{"a", "b"}} → {"Fn::Join": [",", ["a", "b"]]}
//
// Pseudo-parameters:
//
//	AWS_REGION, AWS_ACCOUNT_ID, AWS_STACK_NAME, etc.
package intrinsics

import (
	"encoding/json"
	"fmt"
)

// Ref represents a CloudFormation Ref intrinsic function.
type Ref struct {
	LogicalName string
}

// MarshalJSON serializes Ref to {"Ref": name}.
func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"Ref": r.LogicalName})
}

// GetAtt represents a CloudFormation Fn::GetAtt intrinsic function.
type GetAtt struct {
	LogicalName string
	Attribute   string
}

// MarshalJSON serializes GetAtt to {"Fn::GetAtt": [name, attr]}.
func (g GetAtt) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]string{
		"Fn::GetAtt": {g.LogicalName, g.Attribute},
	})
}

// Sub represents a CloudFormation Fn::Sub intrinsic function.
type Sub struct {
	String string
}

// MarshalJSON serializes Sub to {"Fn::Sub": string}.
func (s Sub) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"Fn::Sub": s.String})
}

// SubWithMap is Fn::Sub with a variable map.
type SubWithMap struct {
	String    string
	Variables map[string]any
}

// MarshalJSON serializes SubWithMap to {"Fn::Sub": [string, vars]}.
func (s SubWithMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]any{
		"Fn::Sub": {s.String, s.Variables},
	})
}

// Join represents a CloudFormation Fn::Join intrinsic function.
type Join struct {
	Delimiter string
	Values    []any
}

// MarshalJSON serializes Join to {"Fn::Join": [delim, values]}.
func (j Join) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]any{
		"Fn::Join": {j.Delimiter, j.Values},
	})
}

// Select represents a CloudFormation Fn::Select intrinsic function.
type Select struct {
	Index int
	List  any
}

// MarshalJSON serializes Select to {"Fn::Select": [index, list]}.
func (s Select) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]any{
		"Fn::Select": {fmt.Sprintf("%d", s.Index), s.List},
	})
}

// GetAZs represents a CloudFormation Fn::GetAZs intrinsic function.
// An empty Region resolves to the region of the current stack.
type GetAZs struct {
	Region string
}

// MarshalJSON serializes GetAZs to {"Fn::GetAZs": region}.
func (g GetAZs) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"Fn::GetAZs": g.Region})
}

// Base64 represents a CloudFormation Fn::Base64 intrinsic function.
type Base64 struct {
	Value any
}

// MarshalJSON serializes Base64 to {"Fn::Base64": value}.
func (b Base64) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"Fn::Base64": b.Value})
}

// ImportValue represents a CloudFormation Fn::ImportValue intrinsic function.
type ImportValue struct {
	Name any
}

// MarshalJSON serializes ImportValue to {"Fn::ImportValue": name}.
func (i ImportValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"Fn::ImportValue": i.Name})
}

// Tag represents a CloudFormation resource tag.
type Tag struct {
	Key   any `json:"Key"`
	Value any `json:"Value"`
}

// SecretsManager returns a dynamic reference resolved from AWS Secrets
// Manager at deployment time, e.g. {{resolve:secretsmanager:github-token}}.
func SecretsManager(secretID string) string {
	return fmt.Sprintf("{{resolve:secretsmanager:%s}}", secretID)
}

// Helper functions for creating pointers to primitive types.
// Used for optional resource fields where the zero value is meaningful.

// IntPtr returns a pointer to the given int value.
func IntPtr(i int) *int {
	return &i
}

// BoolPtr returns a pointer to the given bool value.
func BoolPtr(b bool) *bool {
	return &b
}
