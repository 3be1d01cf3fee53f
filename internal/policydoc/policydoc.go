// Package policydoc loads the load balancer controller's IAM permission
// policy, either from its published upstream location or from a pinned local
// copy.
package policydoc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/nordforge/eksblueprint/intrinsics"
)

// DefaultPolicyURL is the published policy for the controller version the
// platform installs.
const DefaultPolicyURL = "https://raw.githubusercontent.com/kubernetes-sigs/aws-load-balancer-controller/v2.2.0/docs/install/iam_policy.json"

const fetchTimeout = 30 * time.Second

// Fetch downloads a permission policy document from url.
func Fetch(ctx context.Context, url string) (intrinsics.PolicyDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return intrinsics.PolicyDocument{}, fmt.Errorf("building policy request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return intrinsics.PolicyDocument{}, fmt.Errorf("fetching policy from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return intrinsics.PolicyDocument{}, fmt.Errorf("fetching policy from %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return intrinsics.PolicyDocument{}, fmt.Errorf("reading policy body: %w", err)
	}

	return parse(data)
}

// Load reads a permission policy document from a local file, for builds
// that pin the policy instead of fetching it.
func Load(path string) (intrinsics.PolicyDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return intrinsics.PolicyDocument{}, fmt.Errorf("reading policy file: %w", err)
	}
	return parse(data)
}

// parse decodes a policy document and validates its basic shape.
func parse(data []byte) (intrinsics.PolicyDocument, error) {
	var doc intrinsics.PolicyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return intrinsics.PolicyDocument{}, fmt.Errorf("parsing policy document: %w", err)
	}
	if len(doc.Statement) == 0 {
		return intrinsics.PolicyDocument{}, fmt.Errorf("policy document has no statements")
	}
	return doc, nil
}
