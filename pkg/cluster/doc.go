// Package cluster fans a fixed command sequence out to every server in a
// cluster. Its single operation, Shutdown, saves and stops each target so
// that as many servers as possible persist their world before going down.
//
// Targets are fully independent: each gets its own session, failures are
// recorded per target, and one unreachable server never aborts the rest.
package cluster
