package deploy

import (
	"maps"
	"slices"
)

// =============================================================================
// Resolved Unit Types
// =============================================================================

// ConfigKind tags which manifest section a deployable came from.
type ConfigKind string

const (
	KindApp     ConfigKind = "app"
	KindService ConfigKind = "service"
	KindDb      ConfigKind = "db"
)

// Default replica counts per unit kind.
const (
	DefaultAppReplicas     = 2
	DefaultServiceReplicas = 1
	DefaultDbReplicas      = 1
)

// DefaultPlatform is used for build tasks when no platform is requested.
const DefaultPlatform = "linux/amd64"

// SecretValue is one stored secret, keys unique.
type SecretValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ProxyParams is the routing tuple used to synthesize reverse-proxy labels.
type ProxyParams struct {
	Port       uint16 `json:"port"`
	PathPrefix string `json:"path_prefix"`
	Domain     string `json:"domain"`
}

// Connectable holds a unit's externally visible addresses. Connection is a
// URL usable from other units (dbs only); InternalLink is the in-cluster
// "{service_name}:{port}" address (apps and services with a proxy). An empty
// string means the address does not exist for the unit.
type Connectable struct {
	ShortName    string `json:"short_name"`
	ProjectName  string `json:"project_name"`
	Connection   string `json:"connection,omitempty"`
	InternalLink string `json:"internal_link,omitempty"`
}

// Deployable is a fully-resolved unit ready to hand to the orchestrator.
// Envs carry no unresolved expressions; DockerImage is a concrete tag.
type Deployable struct {
	ShortName   string     `json:"short_name"`
	ProjectName string     `json:"project_name"`
	ConfigType  ConfigKind `json:"config_type"`

	// ServiceName is the unit's cluster-wide identity, unique per project.
	ServiceName string `json:"service_name"`
	DockerImage string `json:"docker_image"`

	Proxies []ProxyParams `json:"proxies"`

	Envs    map[string]string `json:"envs"`
	Volumes map[string]string `json:"volumes"`
	Mounts  map[string]string `json:"mounts"`
	Args    []string          `json:"args"`

	DependsOn []string `json:"depends_on,omitempty"`
	Replicas  uint32   `json:"replicas"`
}

// Equal reports structural equality of two deployables. Nil and empty maps
// and slices compare equal, so deployables round-tripped through JSON still
// compare equal to freshly built ones.
func (d Deployable) Equal(other Deployable) bool {
	return d.ShortName == other.ShortName &&
		d.ProjectName == other.ProjectName &&
		d.ConfigType == other.ConfigType &&
		d.ServiceName == other.ServiceName &&
		d.DockerImage == other.DockerImage &&
		slices.Equal(d.Proxies, other.Proxies) &&
		maps.Equal(d.Envs, other.Envs) &&
		maps.Equal(d.Volumes, other.Volumes) &&
		maps.Equal(d.Mounts, other.Mounts) &&
		slices.Equal(d.Args, other.Args) &&
		slices.Equal(d.DependsOn, other.DependsOn) &&
		d.Replicas == other.Replicas
}

// =============================================================================
// Plan Types
// =============================================================================

// Action is what the apply step must do for one unit.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionNoop   Action = "noop"
)

// TaskKind discriminates client task variants.
type TaskKind string

// TaskBuild is currently the only client task kind.
const TaskBuild TaskKind = "build"

// BuildTask is work the operator workstation must do before apply: build an
// app image and upload it to the control plane.
type BuildTask struct {
	ShortName  string `json:"short_name"`
	Dockerfile string `json:"dockerfile"`
	Context    string `json:"context"`
	Tag        string `json:"tag"`
	Platform   string `json:"platform"`
}

// ClientTask is one unit of workstation-side work attached to a deploy record.
type ClientTask struct {
	Kind  TaskKind   `json:"kind"`
	Build *BuildTask `json:"build,omitempty"`
}

// Deploy is one planned action on one deployable, plus the client tasks that
// must complete before the action can be applied.
type Deploy struct {
	Deployable  Deployable   `json:"deployable"`
	Action      Action       `json:"action"`
	ClientTasks []ClientTask `json:"client_tasks,omitempty"`
}

// ProjectDeploys is one persisted snapshot: the plan committed for a project.
// Snapshots handed to the planner are ordered newest first.
type ProjectDeploys struct {
	ProjectName string   `json:"project_name"`
	Deploys     []Deploy `json:"deploys"`
}

// =============================================================================
// Planner Inputs
// =============================================================================

// PlanParams are the inputs of one planning run.
type PlanParams struct {
	// Config is the raw manifest text.
	Config string

	// LastDeploys are the stored snapshots, newest first, possibly spanning
	// several projects. The planner reads only this project's entries.
	LastDeploys []ProjectDeploys

	// LiveServices are the service names the orchestrator currently runs.
	LiveServices []string

	// Images are all known built image tags.
	Images []string

	// Secrets are the stored secret values.
	Secrets []SecretValue

	// Filter, when non-empty, restricts the desired set to the named units.
	Filter []string

	// ToBuild selects which apps get build tasks. nil means all apps with a
	// Create or Update action; an empty non-nil slice means none.
	ToBuild []string

	// Platform for build tasks; DefaultPlatform when empty.
	Platform string

	// Now is the current unix time in seconds, passed in so planning stays
	// deterministic. It stamps the image tags of build tasks.
	Now int64
}

// RollbackParams are the inputs of one rollback planning run. Only the
// project name is read from Config.
type RollbackParams struct {
	Config      string
	LastDeploys []ProjectDeploys
}
