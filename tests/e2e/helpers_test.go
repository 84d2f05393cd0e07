package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marofny/deckhand/internal/core/deploy"
)

// =============================================================================
// HTTP Helpers
// =============================================================================

// doRequest performs an authenticated JSON request against the test server.
func doRequest(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// decodeBody decodes a JSON response body into out and closes it.
func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// =============================================================================
// Plan Helpers
// =============================================================================

// getPlan requests a plan for the manifest and decodes it.
func getPlan(t *testing.T, config string, toBuild []string) []deploy.Deploy {
	t.Helper()

	resp := doRequest(t, http.MethodPost, "/api/v1/plans", map[string]any{
		"config":   config,
		"to_build": toBuild,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var deploys []deploy.Deploy
	decodeBody(t, resp, &deploys)
	return deploys
}

// applyPlan submits a plan for application.
func applyPlan(t *testing.T, deploys []deploy.Deploy) {
	t.Helper()

	resp := doRequest(t, http.MethodPost, "/api/v1/deploys", map[string]any{
		"deploys": deploys,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
