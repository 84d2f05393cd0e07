package deploy

import (
	"github.com/marofny/deckhand/internal/core/envexpr"
)

// =============================================================================
// Env Resolution
// =============================================================================

// resolveEnvs substitutes every env value expression against the project's
// secrets and connectables. A missing secret, a missing referent or an
// unknown method resolves to "" rather than failing; after this runs no value
// carries a secret: or this: expression. The result is never nil.
func resolveEnvs(envs map[string]string, conns []Connectable, secrets []SecretValue) map[string]string {
	resolved := make(map[string]string, len(envs))
	for key, raw := range envs {
		resolved[key] = resolveEnv(raw, conns, secrets)
	}
	return resolved
}

// resolveEnv resolves a single value.
func resolveEnv(raw string, conns []Connectable, secrets []SecretValue) string {
	switch v := envexpr.Parse(raw).(type) {
	case envexpr.Text:
		return v.Raw
	case envexpr.Secret:
		for _, s := range secrets {
			if s.Key == v.Key {
				return s.Value
			}
		}
		return ""
	case envexpr.This:
		c, ok := findConnectable(conns, v.Service)
		if !ok {
			return ""
		}
		switch {
		case envexpr.IsConnectionMethod(v.Method):
			return c.Connection
		case envexpr.IsLinkMethod(v.Method):
			return c.InternalLink
		default:
			return ""
		}
	default:
		return ""
	}
}
