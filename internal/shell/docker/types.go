// Package docker provides a Docker client for Swarm service and image
// lifecycle management.
package docker

import "io"

// =============================================================================
// Service Types
// =============================================================================

// ServiceParam is the wire shape of one resolved unit against the Swarm
// service API.
type ServiceParam struct {
	Name        string
	Image       string
	NetworkName string
	Labels      map[string]string
	Envs        map[string]string

	// VolumeMounts maps named volume -> container path.
	VolumeMounts map[string]string

	// BindMounts maps host path -> container path.
	BindMounts map[string]string

	Args     []string
	Replicas uint64

	// CPULimit is in cores; MemoryLimitMB in megabytes. Zero means the
	// defaults below.
	CPULimit      float64
	MemoryLimitMB int64
}

// Default resource limits applied when a ServiceParam leaves them zero.
const (
	DefaultCPULimit      = 1.0
	DefaultMemoryLimitMB = 1024
)

// =============================================================================
// Build Types
// =============================================================================

// BuildSpec describes one image build on the workstation daemon.
type BuildSpec struct {
	// Dockerfile is the file name relative to the context directory.
	Dockerfile string

	// ContextDir is the absolute build context directory.
	ContextDir string

	// Tag is the full image tag to produce.
	Tag string

	// Platform is the target platform (e.g., "linux/amd64").
	Platform string
}

// =============================================================================
// Client Interface
// =============================================================================

// Client is the container-engine surface the rest of the system consumes.
// The adapter outlives any single stream it produces; callers own returned
// readers and must close them.
type Client interface {
	// Daemon lifecycle
	Ping() error
	Close() error

	// Swarm services
	ListServiceNames() ([]string, error)
	CreateService(param ServiceParam) error
	UpdateService(param ServiceParam) error
	RemoveService(name string) error

	// Images
	ListImageTags() ([]string, error)
	BuildImage(spec BuildSpec) (io.ReadCloser, error)
	SaveImage(tag string) (io.ReadCloser, error)
	LoadImage(input io.Reader) error

	// Networks
	EnsureNetwork(name string) error
}
