package policydoc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePolicy = `{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Action": ["elasticloadbalancing:CreateLoadBalancer"],
      "Resource": "*"
    }
  ]
}`

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePolicy))
	}))
	defer server.Close()

	doc, err := Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "2012-10-17", doc.Version)
	require.Len(t, doc.Statement, 1)
}

func TestFetch_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iam_policy.json")
	require.NoError(t, os.WriteFile(path, []byte(samplePolicy), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, doc.Statement, 1)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestParse_EmptyStatements(t *testing.T) {
	_, err := parse([]byte(`{"Version": "2012-10-17", "Statement": []}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no statements")
}
