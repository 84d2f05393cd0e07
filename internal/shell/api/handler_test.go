package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marofny/deckhand/internal/core/deploy"
	"github.com/marofny/deckhand/internal/core/domain"
	"github.com/marofny/deckhand/internal/shell/docker"
	"github.com/marofny/deckhand/internal/shell/store"
)

// =============================================================================
// Fakes
// =============================================================================

// fakeStore is an in-memory Store.
type fakeStore struct {
	secrets   map[string]domain.Secret
	users     map[string]*domain.User // by token
	snapshots []domain.Snapshot
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		secrets: make(map[string]domain.Secret),
		users:   make(map[string]*domain.User),
	}
}

func (f *fakeStore) CreateSecret(_ context.Context, key, value string) error {
	if _, ok := f.secrets[key]; ok {
		return store.NewStoreError("CreateSecret", "secret", key, "exists", store.ErrDuplicateKey)
	}
	f.secrets[key] = domain.Secret{Key: key, Value: value, CreatedAt: time.Now()}
	return nil
}

func (f *fakeStore) UpdateSecret(_ context.Context, key, value string) error {
	if _, ok := f.secrets[key]; !ok {
		return store.NewStoreError("UpdateSecret", "secret", key, "missing", store.ErrNotFound)
	}
	f.secrets[key] = domain.Secret{Key: key, Value: value}
	return nil
}

func (f *fakeStore) DeleteSecret(_ context.Context, key string) error {
	if _, ok := f.secrets[key]; !ok {
		return store.NewStoreError("DeleteSecret", "secret", key, "missing", store.ErrNotFound)
	}
	delete(f.secrets, key)
	return nil
}

func (f *fakeStore) GetSecret(_ context.Context, key string) (*domain.Secret, error) {
	s, ok := f.secrets[key]
	if !ok {
		return nil, store.NewStoreError("GetSecret", "secret", key, "missing", store.ErrNotFound)
	}
	return &s, nil
}

func (f *fakeStore) ListSecrets(context.Context) ([]domain.Secret, error) {
	out := make([]domain.Secret, 0, len(f.secrets))
	for _, s := range f.secrets {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *fakeStore) CreateUser(_ context.Context, u *domain.User) error {
	f.users[u.Token] = u
	return nil
}

func (f *fakeStore) GetUserByName(_ context.Context, name string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Name == name {
			return u, nil
		}
	}
	return nil, store.NewStoreError("GetUserByName", "user", name, "missing", store.ErrNotFound)
}

func (f *fakeStore) GetUserByToken(_ context.Context, token string) (*domain.User, error) {
	u, ok := f.users[token]
	if !ok {
		return nil, store.NewStoreError("GetUserByToken", "user", "", "missing", store.ErrNotFound)
	}
	return u, nil
}

func (f *fakeStore) CountUsers(context.Context) (int, error) { return len(f.users), nil }

func (f *fakeStore) SaveSnapshot(_ context.Context, project string, payload []byte) error {
	f.snapshots = append([]domain.Snapshot{{ProjectName: project, Payload: payload}}, f.snapshots...)
	return nil
}

func (f *fakeStore) ListSnapshots(context.Context) ([]domain.Snapshot, error) {
	return append([]domain.Snapshot(nil), f.snapshots...), nil
}

func (f *fakeStore) Close() error { return nil }

// fakeEngine is an in-memory orchestrator.
type fakeEngine struct {
	services []string
	images   []string
	loaded   int
}

func (f *fakeEngine) Ping() error  { return nil }
func (f *fakeEngine) Close() error { return nil }

func (f *fakeEngine) ListServiceNames() ([]string, error) {
	return append([]string(nil), f.services...), nil
}

func (f *fakeEngine) CreateService(p docker.ServiceParam) error {
	f.services = append(f.services, p.Name)
	return nil
}
func (f *fakeEngine) UpdateService(docker.ServiceParam) error { return nil }
func (f *fakeEngine) RemoveService(string) error              { return nil }

func (f *fakeEngine) ListImageTags() ([]string, error) {
	return append([]string(nil), f.images...), nil
}
func (f *fakeEngine) BuildImage(docker.BuildSpec) (io.ReadCloser, error) { return nil, nil }
func (f *fakeEngine) SaveImage(string) (io.ReadCloser, error)            { return nil, nil }
func (f *fakeEngine) LoadImage(r io.Reader) error {
	_, _ = io.Copy(io.Discard, r)
	f.loaded++
	return nil
}
func (f *fakeEngine) EnsureNetwork(string) error { return nil }

// =============================================================================
// Test Setup
// =============================================================================

const (
	adminToken    = "admin-token"
	readOnlyToken = "ro-token"
)

func newTestHandler(t *testing.T) (*fakeStore, *fakeEngine, http.Handler) {
	t.Helper()
	st := newFakeStore()
	st.users[adminToken] = &domain.User{Name: "admin", Token: adminToken, Role: domain.RoleSuperUser}
	st.users[readOnlyToken] = &domain.User{Name: "viewer", Token: readOnlyToken, Role: domain.RoleReadOnly}

	engine := &fakeEngine{}
	h := NewHandler(st, engine, nil, "deckhand")
	return st, engine, h.Routes()
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// =============================================================================
// Auth Tests
// =============================================================================

func TestAPI_RequiresToken(t *testing.T) {
	_, _, handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/me", "wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_HealthIsPublic(t *testing.T) {
	_, _, handler := newTestHandler(t)
	rec := doJSON(t, handler, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_Me(t *testing.T) {
	_, _, handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/me", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var info UserInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "admin", info.Name)
	assert.Equal(t, "super-user", info.Role)
}

// =============================================================================
// Plan Endpoint Tests
// =============================================================================

func TestAPI_PlanHappyPath(t *testing.T) {
	st, engine, handler := newTestHandler(t)
	engine.images = []string{"acme-web-image:100"}
	st.secrets["stripe"] = domain.Secret{Key: "stripe", Value: "sk_test"}

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/plans", adminToken, PlanRequest{
		Config: `
project: acme
app:
  web:
    envs:
      TOKEN: secret:stripe
`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var deploys []deploy.Deploy
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deploys))
	require.Len(t, deploys, 1)
	assert.Equal(t, deploy.ActionCreate, deploys[0].Action)
	assert.Equal(t, "sk_test", deploys[0].Deployable.Envs["TOKEN"])
}

func TestAPI_PlanInvalidManifestIs400(t *testing.T) {
	_, _, handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/plans", adminToken, PlanRequest{
		Config: "project: acme\ndb:\n  x:\n    from: mongo\n",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_PlanNoImageIs400(t *testing.T) {
	_, _, handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/plans", adminToken, PlanRequest{
		Config: "project: acme\napp:\n  web: {}\n",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_RollbackNeedsDeployRole(t *testing.T) {
	_, _, handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/plans/rollback", readOnlyToken, RollbackRequest{
		Config: "project: acme\napp:\n  web: {}\n",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAPI_RollbackWithoutSnapshotsIs400(t *testing.T) {
	_, _, handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/plans/rollback", adminToken, RollbackRequest{
		Config: "project: acme\napp:\n  web: {}\n",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// Apply Endpoint Tests
// =============================================================================

func TestAPI_ApplyPersistsSnapshot(t *testing.T) {
	st, engine, handler := newTestHandler(t)

	plan := []deploy.Deploy{{
		Action: deploy.ActionCreate,
		Deployable: deploy.Deployable{
			ProjectName: "acme",
			ShortName:   "web",
			ServiceName: "acme-web-service",
			DockerImage: "acme-web-image:1",
		},
	}}

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/deploys", adminToken, ApplyRequest{Deploys: plan})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Contains(t, engine.services, "acme-web-service")
	require.Len(t, st.snapshots, 1)
	assert.Equal(t, "acme", st.snapshots[0].ProjectName)
}

func TestAPI_ApplyForbiddenForReadOnly(t *testing.T) {
	_, _, handler := newTestHandler(t)
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/deploys", readOnlyToken, ApplyRequest{})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// =============================================================================
// Secret Endpoint Tests
// =============================================================================

func TestAPI_SecretLifecycle(t *testing.T) {
	_, _, handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/secrets", adminToken, SecretRequest{Key: "k", Value: "v"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate create conflicts.
	rec = doJSON(t, handler, http.MethodPost, "/api/v1/secrets", adminToken, SecretRequest{Key: "k", Value: "v2"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/secrets/k", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var shown SecretRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &shown))
	assert.Equal(t, "v", shown.Value)

	rec = doJSON(t, handler, http.MethodPut, "/api/v1/secrets", adminToken, SecretRequest{Key: "k", Value: "v3"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/secrets/k", adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/secrets/k", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_SecretListHidesValues(t *testing.T) {
	st, _, handler := newTestHandler(t)
	st.secrets["k"] = domain.Secret{Key: "k", Value: "sensitive"}

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/secrets", readOnlyToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "sensitive")
}

func TestAPI_SecretManageForbiddenForReadOnly(t *testing.T) {
	_, _, handler := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/secrets", readOnlyToken, SecretRequest{Key: "k", Value: "v"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/secrets/k", readOnlyToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// =============================================================================
// Image Upload Tests
// =============================================================================

func TestAPI_UploadImage(t *testing.T) {
	_, engine, handler := newTestHandler(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "image.tar")
	require.NoError(t, err)
	_, err = part.Write([]byte("tarball-bytes"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images", &body)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, engine.loaded)
}

func TestAPI_UploadImageRejectsNonMultipart(t *testing.T) {
	_, _, handler := newTestHandler(t)
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/images", adminToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
