// Package manifest contains pure functions for parsing Deckhand project
// manifests. This is part of the Functional Core - all functions are pure
// with no I/O.
//
// A manifest declares one project and three kinds of units:
//
//	project: acme
//	app:
//	  web:
//	    port: 8080
//	    domain: acme.io
//	service:
//	  cache:
//	    image: redis:7
//	db:
//	  pg:
//	    from: postgres
//
// Parsing preserves the declaration order of unit names so that downstream
// planning output is stable across runs of the same manifest text.
package manifest
