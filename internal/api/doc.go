// Package api defines the shared contract types for mcpdock: server kinds
// and provenance tags, the commit payload shape, the backend service
// interfaces (preview, import, capability listing, catalog listing), the
// lenient response envelopes those operations return, and the error
// taxonomy used across all packages.
//
// The backend's wire shapes are owned by the backend and vary by code path;
// the types here decode them leniently rather than assuming uniformity. In
// particular ImportResponse.Succeeded implements the three-rule success
// fallback chain and PreviewItem probes loosely-typed records by
// kind-specific key priority.
//
// Packages must depend on api rather than on each other's internals; api
// itself depends on nothing but the standard library.
package api
