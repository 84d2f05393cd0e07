// Package apply drives a deployment plan against the cluster. This is part
// of the Imperative Shell - it owns the only side-effectful boundary of a
// deploy: the orchestrator's service API and the snapshot store.
package apply

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/marofny/deckhand/internal/core/deploy"
	"github.com/marofny/deckhand/internal/core/traefik"
	"github.com/marofny/deckhand/internal/shell/docker"
	"github.com/marofny/deckhand/internal/shell/store"
)

// =============================================================================
// Applier
// =============================================================================

// Applier applies plans sequentially: Creates, then Updates, then Deletes.
// A failing step aborts the remainder; the snapshot is persisted only after
// every step succeeded.
type Applier struct {
	docker  docker.Client
	store   store.Store
	logger  *slog.Logger
	network string
}

// NewApplier creates a new applier deploying onto the given overlay network.
func NewApplier(d docker.Client, s store.Store, logger *slog.Logger, network string) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{docker: d, store: s, logger: logger, network: network}
}

// Result reports how far an apply run got. Failed names the service whose
// step errored; it is empty on full success.
type Result struct {
	Created []string `json:"created,omitempty"`
	Updated []string `json:"updated,omitempty"`
	Deleted []string `json:"deleted,omitempty"`
	Failed  string   `json:"failed,omitempty"`
}

// Apply executes the plan. Noop records are skipped but still become part of
// the persisted snapshot: a snapshot records the full desired state that is
// now running, which is what the next plan diffs against.
func (a *Applier) Apply(ctx context.Context, deploys []deploy.Deploy) (Result, error) {
	var result Result
	if len(deploys) == 0 {
		return result, nil
	}
	project := deploys[0].Deployable.ProjectName

	if err := a.docker.EnsureNetwork(a.network); err != nil {
		return result, fmt.Errorf("ensure network %s: %w", a.network, err)
	}

	for _, d := range deploys {
		name := d.Deployable.ServiceName
		switch d.Action {
		case deploy.ActionCreate:
			a.logger.Info("creating service", "service", name)
			if err := a.docker.CreateService(ServiceParamFromDeployable(d.Deployable, a.network)); err != nil {
				result.Failed = name
				return result, err
			}
			result.Created = append(result.Created, name)
		case deploy.ActionUpdate:
			a.logger.Info("updating service", "service", name)
			if err := a.docker.UpdateService(ServiceParamFromDeployable(d.Deployable, a.network)); err != nil {
				result.Failed = name
				return result, err
			}
			result.Updated = append(result.Updated, name)
		case deploy.ActionDelete:
			a.logger.Info("removing service", "service", name)
			if err := a.docker.RemoveService(name); err != nil {
				result.Failed = name
				return result, err
			}
			result.Deleted = append(result.Deleted, name)
		case deploy.ActionNoop:
			// Already at the desired state.
		}
	}

	if err := a.saveSnapshot(ctx, project, deploys); err != nil {
		return result, err
	}
	return result, nil
}

// saveSnapshot persists the applied plan minus its Delete records as the new
// latest deploy for the project.
func (a *Applier) saveSnapshot(ctx context.Context, project string, deploys []deploy.Deploy) error {
	state := make([]deploy.Deploy, 0, len(deploys))
	for _, d := range deploys {
		if d.Action != deploy.ActionDelete {
			state = append(state, d)
		}
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode snapshot for %s: %w", project, err)
	}
	if err := a.store.SaveSnapshot(ctx, project, payload); err != nil {
		return fmt.Errorf("persist snapshot for %s: %w", project, err)
	}
	return nil
}

// =============================================================================
// Deployable Conversion
// =============================================================================

// ServiceParamFromDeployable materializes the Swarm wire shape of a resolved
// unit: routing labels from its proxy params, volume and bind mounts, and the
// project overlay network.
func ServiceParamFromDeployable(d deploy.Deployable, network string) docker.ServiceParam {
	labels := map[string]string{}
	if len(d.Proxies) > 0 {
		proxy := d.Proxies[0]
		labels = traefik.GenerateLabels(traefik.LabelParams{
			ServiceName: d.ServiceName,
			Domain:      proxy.Domain,
			PathPrefix:  proxy.PathPrefix,
			Port:        proxy.Port,
		})
	}

	return docker.ServiceParam{
		Name:         d.ServiceName,
		Image:        d.DockerImage,
		NetworkName:  network,
		Labels:       labels,
		Envs:         d.Envs,
		VolumeMounts: d.Volumes,
		BindMounts:   d.Mounts,
		Args:         d.Args,
		Replicas:     uint64(d.Replicas),
	}
}
