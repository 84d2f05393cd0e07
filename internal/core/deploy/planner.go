package deploy

import (
	"slices"

	"github.com/marofny/deckhand/internal/core/manifest"
)

// =============================================================================
// Planner
// =============================================================================

// Plan diffs the manifest's desired state against the project's last
// committed snapshot and the live service list, producing one Deploy record
// per desired unit plus one Delete per unit that must go away.
//
// Output order is stable: Creates, then Updates, then Noops, then Deletes.
// Within the first three buckets records follow manifest declaration order
// (apps, services, dbs); Deletes follow the previous snapshot's order.
func Plan(p PlanParams) ([]Deploy, error) {
	cfg, err := manifest.Parse(p.Config)
	if err != nil {
		return nil, err
	}

	// First pass: every unit's addresses, visible to every env resolver.
	conns, err := Connectables(cfg)
	if err != nil {
		return nil, err
	}

	desired, err := desiredSet(cfg, conns, p)
	if err != nil {
		return nil, err
	}

	prev := previousSnapshot(p.LastDeploys, cfg.Project)
	live := make(map[string]bool, len(p.LiveServices))
	for _, name := range p.LiveServices {
		live[name] = true
	}

	var creates, updates, noops, deletes []Deploy
	desiredNames := make(map[string]bool, len(desired))

	for _, d := range desired {
		desiredNames[d.ServiceName] = true
		switch {
		case !live[d.ServiceName]:
			creates = append(creates, Deploy{Deployable: d, Action: ActionCreate})
		case hasEqual(prev, d):
			noops = append(noops, Deploy{Deployable: d, Action: ActionNoop})
		default:
			updates = append(updates, Deploy{Deployable: d, Action: ActionUpdate})
		}
	}

	// Units committed before but no longer desired are torn down. The Delete
	// record carries the previous deployable so the apply step knows the
	// service identity even if the unit left the manifest entirely.
	for _, entry := range prev {
		if !desiredNames[entry.Deployable.ServiceName] {
			deletes = append(deletes, Deploy{Deployable: entry.Deployable, Action: ActionDelete})
		}
	}

	out := make([]Deploy, 0, len(creates)+len(updates)+len(noops)+len(deletes))
	out = append(out, creates...)
	out = append(out, updates...)
	out = append(out, noops...)
	out = append(out, deletes...)

	attachBuildTasks(out, cfg, p)
	return out, nil
}

// desiredSet builds the filtered, fully-resolved deployable set in manifest
// declaration order. The filter is applied before building so an excluded app
// without a built image does not fail the run.
func desiredSet(cfg *manifest.MainConfig, conns []Connectable, p PlanParams) ([]Deployable, error) {
	wanted := func(name string) bool {
		return len(p.Filter) == 0 || slices.Contains(p.Filter, name)
	}

	var desired []Deployable
	for _, name := range cfg.AppNames() {
		if !wanted(name) {
			continue
		}
		d, err := AppDeployable(name, cfg.Apps[name], cfg.Project, p.Images, p.Secrets, conns)
		if err != nil {
			return nil, err
		}
		desired = append(desired, d)
	}
	for _, name := range cfg.ServiceNames() {
		if !wanted(name) {
			continue
		}
		d, err := ServiceDeployable(name, cfg.Services[name], cfg.Project, p.Secrets, conns)
		if err != nil {
			return nil, err
		}
		desired = append(desired, d)
	}
	for _, name := range cfg.DbNames() {
		if !wanted(name) {
			continue
		}
		d, err := DbDeployable(name, cfg.Dbs[name], cfg.Project, p.Secrets, conns)
		if err != nil {
			return nil, err
		}
		desired = append(desired, d)
	}
	return desired, nil
}

// previousSnapshot returns the newest committed snapshot for the project,
// without its Delete records: a snapshot's state is what was left running.
func previousSnapshot(lastDeploys []ProjectDeploys, project string) []Deploy {
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
		return state
	}
	return nil
}

// hasEqual reports whether the snapshot holds a structurally equal entry for
// the deployable's service name.
func hasEqual(prev []Deploy, d Deployable) bool {
	for _, entry := range prev {
		if entry.Deployable.ServiceName == d.ServiceName {
			return entry.Deployable.Equal(d)
		}
	}
	return false
}

// attachBuildTasks appends a Build client task to every Create/Update app
// record selected by ToBuild. A nil ToBuild rebuilds every such app; an empty
// non-nil ToBuild rebuilds none.
func attachBuildTasks(deploys []Deploy, cfg *manifest.MainConfig, p PlanParams) {
	platform := p.Platform
	if platform == "" {
		platform = DefaultPlatform
	}

	for i := range deploys {
		d := &deploys[i]
		if d.Deployable.ConfigType != KindApp {
			continue
		}
		if d.Action != ActionCreate && d.Action != ActionUpdate {
			continue
		}
		if p.ToBuild != nil && !slices.Contains(p.ToBuild, d.Deployable.ShortName) {
			continue
		}
		app := cfg.Apps[d.Deployable.ShortName]
		d.ClientTasks = append(d.ClientTasks, ClientTask{
			Kind: TaskBuild,
			Build: &BuildTask{
				ShortName:  d.Deployable.ShortName,
				Dockerfile: app.DockerfileName(),
				Context:    app.ContextDir(),
				Tag:        ImageTag(cfg.Project, d.Deployable.ShortName, p.Now),
				Platform:   platform,
			},
		})
	}
}
