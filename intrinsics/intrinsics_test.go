package intrinsics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef_MarshalJSON(t *testing.T) {
	ref := Ref{LogicalName: "MyVPC"}
	data, err := json.Marshal(ref)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Ref": "MyVPC"}`, string(data))
}

func TestGetAtt_MarshalJSON(t *testing.T) {
	getAtt := GetAtt{LogicalName: "MyRole", Attribute: "Arn"}
	data, err := json.Marshal(getAtt)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::GetAtt": ["MyRole", "Arn"]}`, string(data))
}

func TestSub_MarshalJSON(t *testing.T) {
	sub := Sub{String: "${AWS::StackName}-vpc"}
	data, err := json.Marshal(sub)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::Sub": "${AWS::StackName}-vpc"}`, string(data))
}

func TestJoin_MarshalJSON(t *testing.T) {
	join := Join{Delimiter: ",", Values: []any{"a", "b", "c"}}
	data, err := json.Marshal(join)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::Join": [",", ["a", "b", "c"]]}`, string(data))
}

func TestSelect_MarshalJSON(t *testing.T) {
	sel := Select{Index: 0, List: GetAZs{Region: ""}}
	data, err := json.Marshal(sel)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Fn::Select"`)
	assert.Contains(t, string(data), `"Fn::GetAZs"`)
}

func TestBase64_MarshalJSON(t *testing.T) {
	b64 := Base64{Value: Sub{String: "#!/bin/bash\necho ${AWS::Region}"}}
	data, err := json.Marshal(b64)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Fn::Base64"`)
	assert.Contains(t, string(data), `"Fn::Sub"`)
}

func TestImportValue_MarshalJSON(t *testing.T) {
	imp := ImportValue{Name: "Platform-Dev-Network-VpcId"}
	data, err := json.Marshal(imp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::ImportValue": "Platform-Dev-Network-VpcId"}`, string(data))
}

func TestPseudoParameters(t *testing.T) {
	data, err := json.Marshal(AWS_REGION)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Ref": "AWS::Region"}`, string(data))
}

func TestSecretsManager(t *testing.T) {
	assert.Equal(t, "{{resolve:secretsmanager:github-token}}", SecretsManager("github-token"))
}

func TestServicePrincipal_MarshalJSON(t *testing.T) {
	single, err := json.Marshal(ServicePrincipal{"eks.amazonaws.com"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Service": "eks.amazonaws.com"}`, string(single))

	multi, err := json.Marshal(ServicePrincipal{"ec2.amazonaws.com", "eks.amazonaws.com"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Service": ["ec2.amazonaws.com", "eks.amazonaws.com"]}`, string(multi))
}

func TestCompositePrincipal_MarshalJSON(t *testing.T) {
	p := CompositePrincipal{
		AWS:     []any{AccountRootArn()},
		Service: []any{"ec2.amazonaws.com"},
	}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"AWS"`)
	assert.Contains(t, string(data), `"Service":"ec2.amazonaws.com"`)
}

func TestPolicyStatement_MarshalJSON(t *testing.T) {
	stmt := PolicyStatement{
		Effect:   "Allow",
		Action:   []any{"eks:DescribeCluster"},
		Resource: "*",
	}
	data, err := json.Marshal(stmt)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Effect": "Allow", "Action": ["eks:DescribeCluster"], "Resource": "*"}`, string(data))
}

func TestNewPolicyDocument(t *testing.T) {
	doc := NewPolicyDocument(PolicyStatement{Effect: "Allow", Action: "sts:AssumeRole"})
	assert.Equal(t, "2012-10-17", doc.Version)
	require.Len(t, doc.Statement, 1)
}
