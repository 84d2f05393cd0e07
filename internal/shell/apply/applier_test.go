package apply

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marofny/deckhand/internal/core/deploy"
	"github.com/marofny/deckhand/internal/core/domain"
	"github.com/marofny/deckhand/internal/shell/docker"
)

// =============================================================================
// Fakes
// =============================================================================

// fakeEngine records orchestrator calls and can fail on a chosen service.
type fakeEngine struct {
	calls    []string
	failOn   string
	networks []string
}

func (f *fakeEngine) Ping() error  { return nil }
func (f *fakeEngine) Close() error { return nil }

func (f *fakeEngine) ListServiceNames() ([]string, error) { return nil, nil }

func (f *fakeEngine) CreateService(p docker.ServiceParam) error { return f.record("create", p.Name) }
func (f *fakeEngine) UpdateService(p docker.ServiceParam) error { return f.record("update", p.Name) }
func (f *fakeEngine) RemoveService(name string) error           { return f.record("remove", name) }

func (f *fakeEngine) record(op, name string) error {
	f.calls = append(f.calls, op+":"+name)
	if name == f.failOn {
		return errors.New("engine failure")
	}
	return nil
}

func (f *fakeEngine) ListImageTags() ([]string, error)                   { return nil, nil }
func (f *fakeEngine) BuildImage(docker.BuildSpec) (io.ReadCloser, error) { return nil, nil }
func (f *fakeEngine) SaveImage(string) (io.ReadCloser, error)            { return nil, nil }
func (f *fakeEngine) LoadImage(io.Reader) error                          { return nil }

func (f *fakeEngine) EnsureNetwork(name string) error {
	f.networks = append(f.networks, name)
	return nil
}

// fakeStore records saved snapshots.
type fakeStore struct {
	projects []string
	payloads [][]byte
}

func (f *fakeStore) CreateSecret(context.Context, string, string) error { return nil }
func (f *fakeStore) UpdateSecret(context.Context, string, string) error { return nil }
func (f *fakeStore) DeleteSecret(context.Context, string) error         { return nil }
func (f *fakeStore) GetSecret(context.Context, string) (*domain.Secret, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeStore) ListSecrets(context.Context) ([]domain.Secret, error) { return nil, nil }
func (f *fakeStore) CreateUser(context.Context, *domain.User) error       { return nil }
func (f *fakeStore) GetUserByName(context.Context, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeStore) GetUserByToken(context.Context, string) (*domain.User, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeStore) CountUsers(context.Context) (int, error) { return 0, nil }

func (f *fakeStore) SaveSnapshot(_ context.Context, project string, payload []byte) error {
	f.projects = append(f.projects, project)
	f.payloads = append(f.payloads, payload)
	return nil
}
func (f *fakeStore) ListSnapshots(context.Context) ([]domain.Snapshot, error) { return nil, nil }
func (f *fakeStore) Close() error                                             { return nil }

// =============================================================================
// Apply Tests
// =============================================================================

func planFixture() []deploy.Deploy {
	return []deploy.Deploy{
		{Action: deploy.ActionCreate, Deployable: deploy.Deployable{ProjectName: "acme", ShortName: "web", ServiceName: "acme-web-service"}},
		{Action: deploy.ActionUpdate, Deployable: deploy.Deployable{ProjectName: "acme", ShortName: "api", ServiceName: "acme-api-service"}},
		{Action: deploy.ActionNoop, Deployable: deploy.Deployable{ProjectName: "acme", ShortName: "cache", ServiceName: "acme-cache-service"}},
		{Action: deploy.ActionDelete, Deployable: deploy.Deployable{ProjectName: "acme", ShortName: "old", ServiceName: "acme-old-service"}},
	}
}

func TestApply_RunsSequentiallyAndPersists(t *testing.T) {
	engine := &fakeEngine{}
	st := &fakeStore{}
	applier := NewApplier(engine, st, nil, "deckhand")

	result, err := applier.Apply(context.Background(), planFixture())
	require.NoError(t, err)

	assert.Equal(t, []string{"deckhand"}, engine.networks)
	assert.Equal(t, []string{
		"create:acme-web-service",
		"update:acme-api-service",
		"remove:acme-old-service",
	}, engine.calls)

	assert.Equal(t, []string{"acme-web-service"}, result.Created)
	assert.Equal(t, []string{"acme-api-service"}, result.Updated)
	assert.Equal(t, []string{"acme-old-service"}, result.Deleted)
	assert.Empty(t, result.Failed)

	// The snapshot keeps Create/Update/Noop records, drops Deletes.
	require.Equal(t, []string{"acme"}, st.projects)
	var state []deploy.Deploy
	require.NoError(t, json.Unmarshal(st.payloads[0], &state))
	require.Len(t, state, 3)
	for _, d := range state {
		assert.NotEqual(t, deploy.ActionDelete, d.Action)
	}
}

func TestApply_FailureAbortsAndSkipsSnapshot(t *testing.T) {
	engine := &fakeEngine{failOn: "acme-api-service"}
	st := &fakeStore{}
	applier := NewApplier(engine, st, nil, "deckhand")

	result, err := applier.Apply(context.Background(), planFixture())
	require.Error(t, err)

	// web succeeded, api failed, old was never attempted.
	assert.Equal(t, []string{"acme-web-service"}, result.Created)
	assert.Equal(t, "acme-api-service", result.Failed)
	assert.NotContains(t, engine.calls, "remove:acme-old-service")
	assert.Empty(t, st.projects)
}

func TestApply_EmptyPlan(t *testing.T) {
	engine := &fakeEngine{}
	st := &fakeStore{}
	applier := NewApplier(engine, st, nil, "deckhand")

	result, err := applier.Apply(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Created)
	assert.Empty(t, engine.networks)
	assert.Empty(t, st.projects)
}

// =============================================================================
// Conversion Tests
// =============================================================================

func TestServiceParamFromDeployable_WithProxy(t *testing.T) {
	d := deploy.Deployable{
		ShortName:   "web",
		ProjectName: "acme",
		ServiceName: "acme-web-service",
		DockerImage: "acme-web-image:100",
		Proxies:     []deploy.ProxyParams{{Port: 8080, PathPrefix: "/", Domain: "acme.io"}},
		Envs:        map[string]string{"A": "1"},
		Volumes:     map[string]string{"acme-web-volume": "/data"},
		Mounts:      map[string]string{"/host": "/container"},
		Args:        []string{"--serve"},
		Replicas:    2,
	}

	param := ServiceParamFromDeployable(d, "deckhand")

	assert.Equal(t, "acme-web-service", param.Name)
	assert.Equal(t, "acme-web-image:100", param.Image)
	assert.Equal(t, "deckhand", param.NetworkName)
	assert.Equal(t, uint64(2), param.Replicas)
	assert.Equal(t, d.Envs, param.Envs)
	assert.Equal(t, d.Volumes, param.VolumeMounts)
	assert.Equal(t, d.Mounts, param.BindMounts)
	assert.Equal(t, "true", param.Labels["traefik.enable"])
	assert.Equal(t, "8080", param.Labels["traefik.http.services.acme-web-service.loadbalancer.server.port"])
}

func TestServiceParamFromDeployable_NoProxyNoLabels(t *testing.T) {
	d := deploy.Deployable{ServiceName: "acme-pg-service", Proxies: []deploy.ProxyParams{}}
	param := ServiceParamFromDeployable(d, "deckhand")
	assert.Empty(t, param.Labels)
}
