// Package deploy provides pure functions for deployment planning.
//
// This package contains the functional core logic for transforming a project
// manifest, the stored secrets, the known image catalog and the last committed
// deploy snapshots into an ordered list of deploy actions on fully-resolved
// Deployable units. All functions are pure (no I/O, no clocks, no side
// effects); given equal inputs a plan is byte-for-byte reproducible.
//
// # Functions
//
//   - Naming: derive cluster resource names (ServiceName, ImageName, VolumeName)
//   - Connectables: compute per-unit addresses (connection URL, internal link)
//   - Builders: materialize Deployables from unit configs (AppDeployable, ...)
//   - LatestTag: select the newest built image tag for an app
//   - Plan: diff desired state against the last snapshot and live services
//   - Rollback: plan whose target state is the previous snapshot
//
// # Usage
//
// The imperative shell (internal/shell/api) gathers secrets, snapshots and
// image tags, then calls the pure planner:
//
//	deploys, err := deploy.Plan(deploy.PlanParams{
//	    Config:      manifestText,
//	    LastDeploys: snapshots,
//	    LiveServices: names,
//	    Images:      tags,
//	    Secrets:     secrets,
//	    Now:         time.Now().Unix(),
//	})
package deploy
