// Package client is the workstation-side HTTP client of the Deckhand control
// plane.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/marofny/deckhand/internal/core/deploy"
)

// =============================================================================
// Error Types
// =============================================================================

// ErrUnreachable is returned when the control plane cannot be reached at all.
var ErrUnreachable = errors.New("control plane unreachable")

// UpstreamError is a non-2xx response from the control plane, surfaced to the
// operator verbatim.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("remote returned %d: %s", e.Status, e.Message)
}

// =============================================================================
// Client
// =============================================================================

// Client talks to one control plane with one bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the given control plane URL.
func New(baseURL, token string) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid remote url %q", baseURL)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		// Uploads and applies are long-running; the client does not impose a
		// request timeout beyond the OS connection timeout.
		http: &http.Client{},
	}, nil
}

// =============================================================================
// Plans
// =============================================================================

// PlanRequest mirrors the control plane's plan request body. ToBuild is
// always sent: nil encodes as null (build every app), an empty slice as []
// (build none).
type PlanRequest struct {
	Config  string   `json:"config"`
	Filter  []string `json:"filter,omitempty"`
	ToBuild []string `json:"to_build"`
}

// GetPlan requests a deployment plan for the manifest.
func (c *Client) GetPlan(req PlanRequest) ([]deploy.Deploy, error) {
	var deploys []deploy.Deploy
	if err := c.postJSON("/api/v1/plans", req, &deploys); err != nil {
		return nil, err
	}
	return deploys, nil
}

// GetRollbackPlan requests the plan back to the previous snapshot.
func (c *Client) GetRollbackPlan(config string) ([]deploy.Deploy, error) {
	var deploys []deploy.Deploy
	body := map[string]string{"config": config}
	if err := c.postJSON("/api/v1/plans/rollback", body, &deploys); err != nil {
		return nil, err
	}
	return deploys, nil
}

// ApplyResult mirrors the control plane's apply response.
type ApplyResult struct {
	Created []string `json:"created,omitempty"`
	Updated []string `json:"updated,omitempty"`
	Deleted []string `json:"deleted,omitempty"`
	Failed  string   `json:"failed,omitempty"`
}

// Apply submits a plan for application.
func (c *Client) Apply(deploys []deploy.Deploy) (*ApplyResult, error) {
	var result ApplyResult
	body := map[string]any{"deploys": deploys}
	if err := c.postJSON("/api/v1/deploys", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// =============================================================================
// Image Upload
// =============================================================================

// UploadImage streams an image tarball to the control plane as a multipart
// upload. The tarball is piped through; it never sits in memory whole.
func (c *Client) UploadImage(image io.Reader) error {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		part, err := form.CreateFormFile("file", "image.tar")
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, image); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(form.Close())
	}()

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/images", pr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()
	return checkStatus(resp)
}

// =============================================================================
// Secrets
// =============================================================================

// SecretInfo is one listed secret; values are never listed.
type SecretInfo struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

// AddSecret stores a new secret on the control plane.
func (c *Client) AddSecret(key, value string) error {
	return c.postJSON("/api/v1/secrets", map[string]string{"key": key, "value": value}, nil)
}

// UpdateSecret replaces an existing secret's value.
func (c *Client) UpdateSecret(key, value string) error {
	return c.do(http.MethodPut, "/api/v1/secrets", map[string]string{"key": key, "value": value}, nil)
}

// DeleteSecret removes a secret.
func (c *Client) DeleteSecret(key string) error {
	return c.do(http.MethodDelete, "/api/v1/secrets/"+url.PathEscape(key), nil, nil)
}

// ShowSecret reveals one secret value.
func (c *Client) ShowSecret(key string) (string, error) {
	var body struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := c.do(http.MethodGet, "/api/v1/secrets/"+url.PathEscape(key), nil, &body); err != nil {
		return "", err
	}
	return body.Value, nil
}

// ListSecrets lists secret keys and creation times.
func (c *Client) ListSecrets() ([]SecretInfo, error) {
	var infos []SecretInfo
	if err := c.do(http.MethodGet, "/api/v1/secrets", nil, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// =============================================================================
// Identity
// =============================================================================

// UserInfo describes the authenticated user.
type UserInfo struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Me verifies the token and returns the authenticated user.
func (c *Client) Me() (*UserInfo, error) {
	var info UserInfo
	if err := c.do(http.MethodGet, "/api/v1/me", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// =============================================================================
// Transport Helpers
// =============================================================================

func (c *Client) postJSON(path string, body, out any) error {
	return c.do(http.MethodPost, path, body, out)
}

func (c *Client) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// checkStatus converts non-2xx responses into UpstreamErrors carrying the
// server's error message.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	message := resp.Status
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		message = body.Error
	} else if len(raw) > 0 {
		message = strings.TrimSpace(string(raw))
	}
	return &UpstreamError{Status: resp.StatusCode, Message: message}
}
