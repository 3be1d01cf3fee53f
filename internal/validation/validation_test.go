package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lex00/cfn-lint-go/pkg/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_TotalIssues(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		expected int
	}{
		{
			name:     "empty result",
			result:   Result{},
			expected: 0,
		},
		{
			name: "errors only",
			result: Result{
				Errors: []string{"error1", "error2"},
			},
			expected: 2,
		},
		{
			name: "mixed issues",
			result: Result{
				Errors:        []string{"error1"},
				Warnings:      []string{"warning1", "warning2"},
				Informational: []string{"info1"},
			},
			expected: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.TotalIssues())
		})
	}
}

func TestFormatMatch(t *testing.T) {
	tests := []struct {
		name     string
		match    lint.Match
		expected string
	}{
		{
			name: "simple match",
			match: lint.Match{
				Rule:    lint.MatchRule{ID: "E1234"},
				Message: "Something is wrong",
			},
			expected: "E1234: Something is wrong",
		},
		{
			name: "match with path",
			match: lint.Match{
				Rule:    lint.MatchRule{ID: "W5678"},
				Message: "Warning message",
				Location: lint.MatchLocation{
					Path: []any{"Resources", "Cluster", "Properties"},
				},
			},
			expected: "W5678: Warning message (at Resources/Cluster/Properties)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatMatch(tt.match))
		})
	}
}

func TestValidateFile_NotFound(t *testing.T) {
	result, err := ValidateFile("/nonexistent/template.json")
	require.NoError(t, err)
	assert.False(t, result.Passed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "template file not found")
}

func TestValidateFile_ValidTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Network.template.yaml")

	template := `AWSTemplateFormatVersion: '2010-09-09'
Description: Network stack
Resources:
  Vpc:
    Type: AWS::EC2::VPC
    Properties:
      CidrBlock: 10.0.0.0/16
`
	require.NoError(t, os.WriteFile(path, []byte(template), 0644))

	result, err := ValidateFile(path)
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestValidateDir_Empty(t *testing.T) {
	_, err := ValidateDir(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no templates found")
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	template := `AWSTemplateFormatVersion: '2010-09-09'
Resources:
  Vpc:
    Type: AWS::EC2::VPC
    Properties:
      CidrBlock: 10.0.0.0/16
`
	jsonTemplate := `{
  "AWSTemplateFormatVersion": "2010-09-09",
  "Resources": {
    "Vpc": {
      "Type": "AWS::EC2::VPC",
      "Properties": {"CidrBlock": "10.0.0.0/16"}
    }
  }
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "A.template.json"), []byte(jsonTemplate), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "B.template.yaml"), []byte(template), 0644))

	results, err := ValidateDir(dir)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Contains(t, results, "A.template.json")
	assert.Contains(t, results, "B.template.yaml")
}
