package deploy

import (
	"fmt"

	"github.com/marofny/deckhand/internal/core/manifest"
)

// =============================================================================
// Connectable Construction
// =============================================================================

// Database ports the engines listen on inside the cluster.
const (
	postgresPort = 5432
	mysqlPort    = 3306
)

// defaultEngineEnvs returns the env defaults seeded for a database engine
// before user envs overlay them. Returns nil for unknown engines.
func defaultEngineEnvs(engine string) map[string]string {
	switch engine {
	case manifest.EnginePostgres:
		return map[string]string{
			"POSTGRES_DB":       "mydb",
			"POSTGRES_USER":     "mypguser",
			"POSTGRES_PASSWORD": "mypassword",
		}
	case manifest.EngineMysql:
		return map[string]string{
			"MYSQL_DATABASE":      "mydb",
			"MYSQL_USER":          "myuser",
			"MYSQL_PASSWORD":      "mypassword",
			"MYSQL_ROOT_PASSWORD": "myrootpassword",
		}
	default:
		return nil
	}
}

// AppConnectable computes the addresses of an app unit. Apps expose an
// internal link only, and only when both port and domain are set.
func AppConnectable(name string, cfg manifest.AppConfig, project string) Connectable {
	c := Connectable{ShortName: name, ProjectName: project}
	if cfg.Port != 0 && cfg.Domain != "" {
		c.InternalLink = fmt.Sprintf("%s:%d", ServiceName(project, name), cfg.Port)
	}
	return c
}

// ServiceConnectable computes the addresses of a service unit. Same rule as
// apps: internal link iff port and domain are both set.
func ServiceConnectable(name string, cfg manifest.ServiceConfig, project string) Connectable {
	c := Connectable{ShortName: name, ProjectName: project}
	if cfg.Port != 0 && cfg.Domain != "" {
		c.InternalLink = fmt.Sprintf("%s:%d", ServiceName(project, name), cfg.Port)
	}
	return c
}

// DbConnectable computes the connection URL of a db unit. Credentials come
// from user envs when set, engine defaults otherwise. Dbs have no internal
// link.
func DbConnectable(name string, cfg manifest.DbConfig, project string) (Connectable, error) {
	c := Connectable{ShortName: name, ProjectName: project}

	defaults := defaultEngineEnvs(cfg.From)
	if defaults == nil {
		return Connectable{}, NewUnitError(name, ErrInvalidDatabaseType)
	}
	pick := func(key string) string {
		if v, ok := cfg.Envs[key]; ok {
			return v
		}
		return defaults[key]
	}

	switch cfg.From {
	case manifest.EnginePostgres:
		c.Connection = fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
			pick("POSTGRES_USER"), pick("POSTGRES_PASSWORD"),
			ServiceName(project, name), postgresPort, pick("POSTGRES_DB"))
	case manifest.EngineMysql:
		c.Connection = fmt.Sprintf("mysql://%s:%s@%s:%d/%s",
			pick("MYSQL_USER"), pick("MYSQL_PASSWORD"),
			ServiceName(project, name), mysqlPort, pick("MYSQL_DATABASE"))
	}
	return c, nil
}

// Connectables materializes the addresses of every unit in the manifest, in
// declaration order. The full list is handed to every unit's env resolver, so
// this runs as a first pass before any deployable is built.
func Connectables(cfg *manifest.MainConfig) ([]Connectable, error) {
	conns := make([]Connectable, 0, cfg.UnitCount())
	for _, name := range cfg.AppNames() {
		conns = append(conns, AppConnectable(name, cfg.Apps[name], cfg.Project))
	}
	for _, name := range cfg.ServiceNames() {
		conns = append(conns, ServiceConnectable(name, cfg.Services[name], cfg.Project))
	}
	for _, name := range cfg.DbNames() {
		c, err := DbConnectable(name, cfg.Dbs[name], cfg.Project)
		if err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, nil
}

// findConnectable looks a unit up by short name.
func findConnectable(conns []Connectable, shortName string) (Connectable, bool) {
	for _, c := range conns {
		if c.ShortName == shortName {
			return c, true
		}
	}
	return Connectable{}, false
}
