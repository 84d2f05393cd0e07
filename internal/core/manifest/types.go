package manifest

// =============================================================================
// Manifest Types
// =============================================================================

// Defaults applied when the corresponding field is not set.
const (
	DefaultDockerfile = "Dockerfile"
	DefaultContext    = "./"
	DefaultPathPrefix = "/"
)

// MainConfig is a fully parsed project manifest.
//
// The maps hold the unit configurations; AppNames, ServiceNames and DbNames
// return the unit names in manifest declaration order.
type MainConfig struct {
	Project  string
	Apps     map[string]AppConfig
	Services map[string]ServiceConfig
	Dbs      map[string]DbConfig

	appOrder     []string
	serviceOrder []string
	dbOrder      []string
}

// AppConfig declares an application built from workstation sources.
//
// Port 0 and an empty Domain mean "not set"; a unit is routable only when
// both are present.
type AppConfig struct {
	Dockerfile string            `yaml:"dockerfile"`
	Context    string            `yaml:"context"`
	Port       uint16            `yaml:"port"`
	Domain     string            `yaml:"domain"`
	PathPrefix string            `yaml:"path_prefix"`
	Envs       map[string]string `yaml:"envs"`
	Volumes    map[string]string `yaml:"volumes"`
	Mounts     map[string]string `yaml:"mounts"`
	Args       []string          `yaml:"args"`
}

// DockerfileName returns the dockerfile name, defaulted.
func (c AppConfig) DockerfileName() string {
	if c.Dockerfile == "" {
		return DefaultDockerfile
	}
	return c.Dockerfile
}

// ContextDir returns the build context directory, defaulted.
func (c AppConfig) ContextDir() string {
	if c.Context == "" {
		return DefaultContext
	}
	return c.Context
}

// ServiceConfig declares a unit running an already-published registry image.
type ServiceConfig struct {
	Image      string            `yaml:"image"`
	Port       uint16            `yaml:"port"`
	Domain     string            `yaml:"domain"`
	PathPrefix string            `yaml:"path_prefix"`
	Envs       map[string]string `yaml:"envs"`
	Volumes    map[string]string `yaml:"volumes"`
	Mounts     map[string]string `yaml:"mounts"`
	Args       []string          `yaml:"args"`
}

// Database engine identifiers accepted in DbConfig.From.
const (
	EnginePostgres = "postgres"
	EngineMysql    = "mysql"
)

// DbConfig declares a stateful database unit. A db never has a proxy.
type DbConfig struct {
	From    string            `yaml:"from"`
	Envs    map[string]string `yaml:"envs"`
	Volumes map[string]string `yaml:"volumes"`
	Mounts  map[string]string `yaml:"mounts"`
	Args    []string          `yaml:"args"`
}

// =============================================================================
// Ordered Accessors
// =============================================================================

// AppNames returns app names in declaration order.
func (c *MainConfig) AppNames() []string {
	return append([]string(nil), c.appOrder...)
}

// ServiceNames returns service names in declaration order.
func (c *MainConfig) ServiceNames() []string {
	return append([]string(nil), c.serviceOrder...)
}

// DbNames returns db names in declaration order.
func (c *MainConfig) DbNames() []string {
	return append([]string(nil), c.dbOrder...)
}

// UnitCount returns the number of declared units of any kind.
func (c *MainConfig) UnitCount() int {
	return len(c.appOrder) + len(c.serviceOrder) + len(c.dbOrder)
}
