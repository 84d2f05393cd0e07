package traefik

import "fmt"

// =============================================================================
// Traefik Label Generation Functions
// =============================================================================

// GenerateLabels generates Traefik reverse proxy labels for one routable unit.
//
// The generated labels configure Traefik to route HTTPS traffic to the
// service:
//   - Enables Traefik for the service
//   - Creates a router with a Host rule, narrowed by PathPrefix when the
//     prefix is not "/"
//   - Binds the router to a loadbalancer service on the given port
//   - Terminates TLS on the websecure entrypoint
//
// Example:
//
//	labels := GenerateLabels(LabelParams{
//	    ServiceName: "acme-web-service",
//	    Domain:      "acme.io",
//	    Port:        8080,
//	    PathPrefix:  "/",
//	})
//	// Returns:
//	// {
//	//   "traefik.enable": "true",
//	//   "traefik.http.routers.acme-web-service.rule": "Host(`acme.io`)",
//	//   "traefik.http.routers.acme-web-service.service": "acme-web-service",
//	//   "traefik.http.services.acme-web-service.loadbalancer.server.port": "8080",
//	//   "traefik.http.routers.acme-web-service.tls": "true",
//	//   "traefik.http.routers.acme-web-service.entrypoints": "websecure",
//	// }
func GenerateLabels(params LabelParams) map[string]string {
	name := params.ServiceName

	rule := fmt.Sprintf("Host(`%s`)", params.Domain)
	if params.PathPrefix != "" && params.PathPrefix != "/" {
		rule += fmt.Sprintf(" && PathPrefix(`%s`)", params.PathPrefix)
	}

	return map[string]string{
		"traefik.enable": "true",

		fmt.Sprintf("traefik.http.routers.%s.rule", name):        rule,
		fmt.Sprintf("traefik.http.routers.%s.service", name):     name,
		fmt.Sprintf("traefik.http.routers.%s.tls", name):         "true",
		fmt.Sprintf("traefik.http.routers.%s.entrypoints", name): "websecure",

		fmt.Sprintf("traefik.http.services.%s.loadbalancer.server.port", name): fmt.Sprintf("%d", params.Port),
	}
}
