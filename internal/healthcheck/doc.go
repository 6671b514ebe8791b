// Package healthcheck implements periodic health probing for backend servers.
// Each cycle opens a fresh TCP connection per backend, issues a minimal HTTP
// health request, and updates the registry from whatever response prefix
// arrives within the probe timeout.
package healthcheck
