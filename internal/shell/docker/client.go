package docker

import (
	"context"
	"fmt"
	"sort"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/swarm"
	"github.com/docker/docker/client"
)

// =============================================================================
// Docker Client Implementation
// =============================================================================

// DockerClient implements the Client interface using the Docker SDK.
type DockerClient struct {
	cli *client.Client
}

// NewDockerClient creates a new Docker client.
// If host is empty, it uses the default Docker host from environment.
func NewDockerClient(host string) (*DockerClient, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, NewDockerError("NewDockerClient", "", "", "failed to create client", ErrConnectionFailed)
	}
	return &DockerClient{cli: cli}, nil
}

// Ping checks if the Docker daemon is reachable.
func (d *DockerClient) Ping() error {
	if _, err := d.cli.Ping(context.Background()); err != nil {
		return NewDockerError("Ping", "", "", fmt.Sprintf("failed to ping docker: %v", err), ErrConnectionFailed)
	}
	return nil
}

// Close closes the Docker client connection.
func (d *DockerClient) Close() error {
	return d.cli.Close()
}

// =============================================================================
// Swarm Service Operations
// =============================================================================

// ListServiceNames returns the names of all services currently running on
// the cluster, sorted for stable output.
func (d *DockerClient) ListServiceNames() ([]string, error) {
	services, err := d.cli.ServiceList(context.Background(), types.ServiceListOptions{})
	if err != nil {
		return nil, NewDockerError("ListServiceNames", "service", "", err.Error(), err)
	}
	names := make([]string, 0, len(services))
	for _, svc := range services {
		names = append(names, svc.Spec.Name)
	}
	sort.Strings(names)
	return names, nil
}

// CreateService creates a Swarm service from the given param.
func (d *DockerClient) CreateService(param ServiceParam) error {
	spec := serviceSpec(param)
	_, err := d.cli.ServiceCreate(context.Background(), spec, types.ServiceCreateOptions{})
	if err != nil {
		return NewDockerError("CreateService", "service", param.Name, err.Error(), err)
	}
	return nil
}

// UpdateService updates an existing Swarm service in place. The current
// service version is required by the API to fence concurrent updates.
func (d *DockerClient) UpdateService(param ServiceParam) error {
	ctx := context.Background()
	current, _, err := d.cli.ServiceInspectWithRaw(ctx, param.Name, types.ServiceInspectOptions{})
	if err != nil {
		if client.IsErrNotFound(err) {
			return NewDockerError("UpdateService", "service", param.Name, "service not found", ErrServiceNotFound)
		}
		return NewDockerError("UpdateService", "service", param.Name, err.Error(), err)
	}

	spec := serviceSpec(param)
	_, err = d.cli.ServiceUpdate(ctx, current.ID, current.Version, spec, types.ServiceUpdateOptions{})
	if err != nil {
		return NewDockerError("UpdateService", "service", param.Name, err.Error(), err)
	}
	return nil
}

// RemoveService removes a Swarm service by name.
func (d *DockerClient) RemoveService(name string) error {
	if err := d.cli.ServiceRemove(context.Background(), name); err != nil {
		if client.IsErrNotFound(err) {
			return NewDockerError("RemoveService", "service", name, "service not found", ErrServiceNotFound)
		}
		return NewDockerError("RemoveService", "service", name, err.Error(), err)
	}
	return nil
}

// serviceSpec converts a ServiceParam to the Swarm API shape.
func serviceSpec(param ServiceParam) swarm.ServiceSpec {
	envs := make([]string, 0, len(param.Envs))
	for k, v := range param.Envs {
		envs = append(envs, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(envs)

	mounts := make([]mount.Mount, 0, len(param.VolumeMounts)+len(param.BindMounts))
	for source, target := range param.VolumeMounts {
		mounts = append(mounts, mount.Mount{Type: mount.TypeVolume, Source: source, Target: target})
	}
	for source, target := range param.BindMounts {
		mounts = append(mounts, mount.Mount{Type: mount.TypeBind, Source: source, Target: target})
	}
	sort.Slice(mounts, func(i, j int) bool { return mounts[i].Source < mounts[j].Source })

	cpu := param.CPULimit
	if cpu == 0 {
		cpu = DefaultCPULimit
	}
	memoryMB := param.MemoryLimitMB
	if memoryMB == 0 {
		memoryMB = DefaultMemoryLimitMB
	}

	replicas := param.Replicas

	return swarm.ServiceSpec{
		Annotations: swarm.Annotations{
			Name:   param.Name,
			Labels: param.Labels,
		},
		TaskTemplate: swarm.TaskSpec{
			ContainerSpec: &swarm.ContainerSpec{
				Image:  param.Image,
				Env:    envs,
				Args:   param.Args,
				Mounts: mounts,
			},
			Resources: &swarm.ResourceRequirements{
				Limits: &swarm.Limit{
					NanoCPUs:    int64(cpu * 1e9),
					MemoryBytes: memoryMB * 1024 * 1024,
				},
			},
			Networks: []swarm.NetworkAttachmentConfig{
				{Target: param.NetworkName},
			},
		},
		Mode: swarm.ServiceMode{
			Replicated: &swarm.ReplicatedService{Replicas: &replicas},
		},
	}
}

// =============================================================================
// Network Operations
// =============================================================================

// EnsureNetwork creates the attachable overlay network the project's
// services join, if it does not exist yet.
func (d *DockerClient) EnsureNetwork(name string) error {
	ctx := context.Background()
	_, err := d.cli.NetworkInspect(ctx, name, network.InspectOptions{})
	if err == nil {
		return nil
	}
	if !client.IsErrNotFound(err) {
		return NewDockerError("EnsureNetwork", "network", name, err.Error(), err)
	}

	_, err = d.cli.NetworkCreate(ctx, name, network.CreateOptions{
		Driver:     "overlay",
		Attachable: true,
	})
	if err != nil {
		return NewDockerError("EnsureNetwork", "network", name, err.Error(), ErrNetworkCreateFailed)
	}
	return nil
}
