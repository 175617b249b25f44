// Package ports defines the contracts the interactive console depends on,
// so the session and broadcaster can be doubled in tests.
package ports
