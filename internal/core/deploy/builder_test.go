package deploy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marofny/deckhand/internal/core/manifest"
)

// =============================================================================
// App Builder Tests
// =============================================================================

func TestAppDeployable_Basics(t *testing.T) {
	d, err := AppDeployable("web", manifest.AppConfig{
		Port:   8080,
		Domain: "acme.io",
		Envs:   map[string]string{"LOG_LEVEL": "info"},
		Args:   []string{"--serve"},
	}, "acme", []string{"acme-web-image:100"}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "web", d.ShortName)
	assert.Equal(t, "acme", d.ProjectName)
	assert.Equal(t, KindApp, d.ConfigType)
	assert.Equal(t, "acme-web-service", d.ServiceName)
	assert.Equal(t, "acme-web-image:100", d.DockerImage)
	assert.Equal(t, map[string]string{"LOG_LEVEL": "info"}, d.Envs)
	assert.Equal(t, []string{"--serve"}, d.Args)
	assert.Equal(t, uint32(DefaultAppReplicas), d.Replicas)

	require.Len(t, d.Proxies, 1)
	assert.Equal(t, ProxyParams{Port: 8080, PathPrefix: "/", Domain: "acme.io"}, d.Proxies[0])
}

func TestAppDeployable_NoImage(t *testing.T) {
	_, err := AppDeployable("web", manifest.AppConfig{}, "acme",
		[]string{"acme-api-image:50"}, nil, nil)
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestAppDeployable_ProxyRequiresPortAndDomain(t *testing.T) {
	images := []string{"acme-web-image:100"}

	d, err := AppDeployable("web", manifest.AppConfig{Port: 8080}, "acme", images, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, d.Proxies)

	d, err = AppDeployable("web", manifest.AppConfig{Domain: "acme.io"}, "acme", images, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, d.Proxies)
}

func TestAppDeployable_PathPrefixKept(t *testing.T) {
	d, err := AppDeployable("web", manifest.AppConfig{
		Port:       8080,
		Domain:     "acme.io",
		PathPrefix: "/api",
	}, "acme", []string{"acme-web-image:1"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "/api", d.Proxies[0].PathPrefix)
}

// =============================================================================
// Service Builder Tests
// =============================================================================

func TestServiceDeployable_VerbatimImage(t *testing.T) {
	d, err := ServiceDeployable("cache", manifest.ServiceConfig{
		Image: "redis:7.2-alpine",
	}, "acme", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, KindService, d.ConfigType)
	assert.Equal(t, "redis:7.2-alpine", d.DockerImage)
	assert.Equal(t, uint32(DefaultServiceReplicas), d.Replicas)
	assert.Empty(t, d.Proxies)
}

// =============================================================================
// Db Builder Tests
// =============================================================================

func TestDbDeployable_Postgres(t *testing.T) {
	d, err := DbDeployable("pg", manifest.DbConfig{From: "postgres"}, "acme", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, KindDb, d.ConfigType)
	assert.Equal(t, "postgres", d.DockerImage)
	assert.Equal(t, uint32(DefaultDbReplicas), d.Replicas)
	assert.Empty(t, d.Proxies)

	assert.Equal(t, "mydb", d.Envs["POSTGRES_DB"])
	assert.Equal(t, "mypguser", d.Envs["POSTGRES_USER"])
	assert.Equal(t, "mypassword", d.Envs["POSTGRES_PASSWORD"])

	assert.Equal(t, "/var/lib/postgresql/data", d.Volumes["acme-pg-volume"])
}

func TestDbDeployable_MysqlVolumeAndEnvs(t *testing.T) {
	d, err := DbDeployable("db", manifest.DbConfig{From: "mysql"}, "acme", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "mysql", d.DockerImage)
	assert.Equal(t, "/var/lib/mysql", d.Volumes["acme-db-volume"])
	assert.Equal(t, "myrootpassword", d.Envs["MYSQL_ROOT_PASSWORD"])
}

func TestDbDeployable_UserEnvsOverrideDefaults(t *testing.T) {
	d, err := DbDeployable("pg", manifest.DbConfig{
		From: "postgres",
		Envs: map[string]string{"POSTGRES_DB": "orders", "PGTZ": "UTC"},
	}, "acme", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "orders", d.Envs["POSTGRES_DB"])
	assert.Equal(t, "mypguser", d.Envs["POSTGRES_USER"])
	assert.Equal(t, "UTC", d.Envs["PGTZ"])
}

func TestDbDeployable_InvalidEngine(t *testing.T) {
	_, err := DbDeployable("x", manifest.DbConfig{From: "mongo"}, "acme", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidDatabaseType)
}

// =============================================================================
// Env Resolution Tests
// =============================================================================

func TestResolveEnvs_AllVariants(t *testing.T) {
	conns := []Connectable{
		{ShortName: "pg", ProjectName: "acme", Connection: "postgres://u:p@acme-pg-service:5432/mydb"},
		{ShortName: "web", ProjectName: "acme", InternalLink: "acme-web-service:8080"},
	}
	secrets := []SecretValue{{Key: "stripe", Value: "sk_test"}}

	envs := resolveEnvs(map[string]string{
		"PLAIN":          "debug",
		"TOKEN":          "secret:stripe",
		"MISSING_SECRET": "secret:nope",
		"DB":             "this:pg:connection",
		"DB_SHORT":       "this:pg:conn",
		"WEB":            "this:web:url",
		"WEB_LINK":       "this:web:internal",
		"PG_LINK":        "this:pg:url",
		"NO_REFERENT":    "this:ghost:connection",
		"BAD_METHOD":     "this:web:address",
	}, conns, secrets)

	assert.Equal(t, "debug", envs["PLAIN"])
	assert.Equal(t, "sk_test", envs["TOKEN"])
	assert.Equal(t, "", envs["MISSING_SECRET"])
	assert.Equal(t, "postgres://u:p@acme-pg-service:5432/mydb", envs["DB"])
	assert.Equal(t, envs["DB"], envs["DB_SHORT"])
	assert.Equal(t, "acme-web-service:8080", envs["WEB"])
	assert.Equal(t, envs["WEB"], envs["WEB_LINK"])
	// pg is a db: it has a connection but no internal link.
	assert.Equal(t, "", envs["PG_LINK"])
	assert.Equal(t, "", envs["NO_REFERENT"])
	assert.Equal(t, "", envs["BAD_METHOD"])
}

func TestResolveEnvs_NoUnresolvedExpressions(t *testing.T) {
	envs := resolveEnvs(map[string]string{
		"A": "secret:missing",
		"B": "this:ghost:url",
		"C": "plain",
	}, nil, nil)

	for key, value := range envs {
		assert.False(t, strings.HasPrefix(value, "secret:"), "key %s", key)
		assert.False(t, strings.HasPrefix(value, "this:"), "key %s", key)
	}
}

// =============================================================================
// Equality Tests
// =============================================================================

func TestDeployableEqual_NilAndEmptyCollectionsMatch(t *testing.T) {
	a := Deployable{ShortName: "web", Envs: map[string]string{}, Args: []string{}, Proxies: []ProxyParams{}}
	b := Deployable{ShortName: "web"}
	assert.True(t, a.Equal(b))
}

func TestDeployableEqual_DetectsEnvChange(t *testing.T) {
	a := Deployable{ShortName: "web", Envs: map[string]string{"LOG_LEVEL": "info"}}
	b := Deployable{ShortName: "web", Envs: map[string]string{"LOG_LEVEL": "debug"}}
	assert.False(t, a.Equal(b))
}
