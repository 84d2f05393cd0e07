// Package traefik provides pure functions for generating Traefik reverse
// proxy labels.
//
// This package contains the functional core logic for generating the service
// labels that configure Traefik routing on the cluster. All functions are
// pure (no I/O, no side effects).
//
// # Functions
//
//   - GenerateLabels: Generate Traefik labels for one routable unit
//
// # Usage
//
// The apply step attaches the labels when materializing service params:
//
//	labels := traefik.GenerateLabels(traefik.LabelParams{
//	    ServiceName: d.ServiceName,
//	    Domain:      proxy.Domain,
//	    PathPrefix:  proxy.PathPrefix,
//	    Port:        proxy.Port,
//	})
package traefik
