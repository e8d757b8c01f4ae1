package server

import "errors"

var (
	// errNoLauncher is returned by Pool.Open when no UI launcher has
	// been configured for the deployment.
	errNoLauncher = errors.New("no client launcher configured")
)
