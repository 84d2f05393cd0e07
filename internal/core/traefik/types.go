package traefik

// =============================================================================
// Traefik Label Generation Types
// =============================================================================

// LabelParams contains parameters for generating Traefik labels.
type LabelParams struct {
	// ServiceName is the cluster service name; it doubles as the router and
	// loadbalancer-service identifier, which keeps labels unique per project.
	ServiceName string

	// Domain is the public hostname to route (e.g., "app.acme.io").
	Domain string

	// PathPrefix narrows routing to a path subtree; "/" routes the whole host.
	PathPrefix string

	// Port is the container port the loadbalancer forwards to.
	Port uint16
}
