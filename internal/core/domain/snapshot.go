package domain

import "time"

// =============================================================================
// Deploy Snapshot
// =============================================================================

// Snapshot is one committed deploy for a project: the plan that was applied,
// stored as its JSON encoding. Snapshots form a history per project, newest
// first; the latest is the diff base for the next plan and the one before it
// is the rollback target.
type Snapshot struct {
	ID          int       `db:"id"`
	ProjectName string    `db:"project_name"`
	Payload     []byte    `db:"payload"`
	CreatedAt   time.Time `db:"created_at"`
}
