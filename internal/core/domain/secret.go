package domain

import "time"

// =============================================================================
// Secret
// =============================================================================

// Secret is one stored secret value, unique by key. Secrets substitute into
// unit envs at plan time via the secret:<key> expression.
type Secret struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	CreatedAt time.Time `db:"created_at"`
}
