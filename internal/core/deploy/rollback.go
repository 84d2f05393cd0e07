package deploy

import (
	"github.com/marofny/deckhand/internal/core/manifest"
)

// =============================================================================
// Rollback Planner
// =============================================================================

// Rollback produces the plan whose target state is the snapshot before the
// latest one. Only the project name is read from the manifest; the plan is a
// pure diff between the two stored snapshots. No build tasks are emitted -
// rollback reuses previously pushed images.
//
// Creates are units present in the prior snapshot but absent from the latest;
// Updates are present in both but differing; units present only in the latest
// are Deleted. Output order matches the planner: Creates, Updates, Noops,
// Deletes.
func Rollback(p RollbackParams) ([]Deploy, error) {
	cfg, err := manifest.Parse(p.Config)
	if err != nil {
		return nil, err
	}

	current, prior, ok := lastTwoSnapshots(p.LastDeploys, cfg.Project)
	if !ok {
		return nil, ErrNoRollbackTarget
	}

	currentBy := make(map[string]Deployable, len(current))
	for _, d := range current {
		currentBy[d.Deployable.ServiceName] = d.Deployable
	}

	var creates, updates, noops, deletes []Deploy
	targetNames := make(map[string]bool, len(prior))

	for _, entry := range prior {
		target := entry.Deployable
		targetNames[target.ServiceName] = true
		running, exists := currentBy[target.ServiceName]
		switch {
		case !exists:
			creates = append(creates, Deploy{Deployable: target, Action: ActionCreate})
		case !running.Equal(target):
			updates = append(updates, Deploy{Deployable: target, Action: ActionUpdate})
		default:
			noops = append(noops, Deploy{Deployable: target, Action: ActionNoop})
		}
	}

	for _, entry := range current {
		if !targetNames[entry.Deployable.ServiceName] {
			deletes = append(deletes, Deploy{Deployable: entry.Deployable, Action: ActionDelete})
		}
	}

	out := make([]Deploy, 0, len(creates)+len(updates)+len(noops)+len(deletes))
	out = append(out, creates...)
	out = append(out, updates...)
	out = append(out, noops...)
	out = append(out, deletes...)
	return out, nil
}

// lastTwoSnapshots returns the latest and prior committed states for the
// project, Delete records stripped. ok is false when fewer than two
// snapshots exist.
func lastTwoSnapshots(lastDeploys []ProjectDeploys, project string) (current, prior []Deploy, ok bool) {
	var found int
	for _, pd := range lastDeploys {
		if pd.ProjectName != project {
			continue
		}
		var state []Deploy
		for _, d := range pd.Deploys {
			if d.Action != ActionDelete {
				state = append(state, d)
			}
		}
		switch found {
		case 0:
			current = state
		case 1:
			prior = state
		}
		found++
		if found == 2 {
			return current, prior, true
		}
	}
	return nil, nil, false
}
