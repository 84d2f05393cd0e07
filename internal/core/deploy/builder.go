package deploy

import (
	"maps"

	"github.com/marofny/deckhand/internal/core/manifest"
)

// =============================================================================
// Deployable Builders
// =============================================================================

// Container data directories per database engine.
const (
	postgresDataDir = "/var/lib/postgresql/data"
	mysqlDataDir    = "/var/lib/mysql"
)

// AppDeployable materializes an app unit. The image is the newest tag for
// "{project}-{name}-image" in the catalog; no tag at all is ErrNoImage.
func AppDeployable(name string, cfg manifest.AppConfig, project string, imageTags []string, secrets []SecretValue, conns []Connectable) (Deployable, error) {
	image, ok := LatestTag(tagsForImage(imageTags, ImageName(project, name)))
	if !ok {
		return Deployable{}, NewUnitError(name, ErrNoImage)
	}

	return Deployable{
		ShortName:   name,
		ProjectName: project,
		ConfigType:  KindApp,
		ServiceName: ServiceName(project, name),
		DockerImage: image,
		Proxies:     proxies(cfg.Port, cfg.Domain, cfg.PathPrefix),
		Envs:        resolveEnvs(cfg.Envs, conns, secrets),
		Volumes:     copied(cfg.Volumes),
		Mounts:      copied(cfg.Mounts),
		Args:        copiedSlice(cfg.Args),
		Replicas:    DefaultAppReplicas,
	}, nil
}

// ServiceDeployable materializes a service unit. The image is taken verbatim
// from the config.
func ServiceDeployable(name string, cfg manifest.ServiceConfig, project string, secrets []SecretValue, conns []Connectable) (Deployable, error) {
	return Deployable{
		ShortName:   name,
		ProjectName: project,
		ConfigType:  KindService,
		ServiceName: ServiceName(project, name),
		DockerImage: cfg.Image,
		Proxies:     proxies(cfg.Port, cfg.Domain, cfg.PathPrefix),
		Envs:        resolveEnvs(cfg.Envs, conns, secrets),
		Volumes:     copied(cfg.Volumes),
		Mounts:      copied(cfg.Mounts),
		Args:        copiedSlice(cfg.Args),
		Replicas:    DefaultServiceReplicas,
	}, nil
}

// DbDeployable materializes a db unit. Engine defaults seed the envs before
// resolved user envs overlay them, a named data volume is always mounted, and
// dbs never carry a proxy.
func DbDeployable(name string, cfg manifest.DbConfig, project string, secrets []SecretValue, conns []Connectable) (Deployable, error) {
	var dataDir string
	switch cfg.From {
	case manifest.EnginePostgres:
		dataDir = postgresDataDir
	case manifest.EngineMysql:
		dataDir = mysqlDataDir
	default:
		return Deployable{}, NewUnitError(name, ErrInvalidDatabaseType)
	}

	envs := defaultEngineEnvs(cfg.From)
	maps.Copy(envs, resolveEnvs(cfg.Envs, conns, secrets))

	volumes := copied(cfg.Volumes)
	volumes[VolumeName(project, name)] = dataDir

	return Deployable{
		ShortName:   name,
		ProjectName: project,
		ConfigType:  KindDb,
		ServiceName: ServiceName(project, name),
		DockerImage: cfg.From,
		Proxies:     []ProxyParams{},
		Envs:        envs,
		Volumes:     volumes,
		Mounts:      copied(cfg.Mounts),
		Args:        copiedSlice(cfg.Args),
		Replicas:    DefaultDbReplicas,
	}, nil
}

// proxies returns the routing singleton iff port and domain are both set.
func proxies(port uint16, domain, pathPrefix string) []ProxyParams {
	if port == 0 || domain == "" {
		return []ProxyParams{}
	}
	if pathPrefix == "" {
		pathPrefix = manifest.DefaultPathPrefix
	}
	return []ProxyParams{{Port: port, PathPrefix: pathPrefix, Domain: domain}}
}

// copied returns a non-nil copy of a config map so deployables never alias
// manifest data.
func copied(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	maps.Copy(out, m)
	return out
}

// copiedSlice returns a non-nil copy of a config slice.
func copiedSlice(s []string) []string {
	out := make([]string, 0, len(s))
	return append(out, s...)
}
