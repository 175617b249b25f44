// Package log provides the logging abstraction used by the rcon and
// cluster packages.
//
// The Logger interface keeps the protocol libraries free of a hard
// dependency on any particular logging library. The rconctl CLI wires in
// the zerolog adapter; embedders can pass their own implementation or rely
// on the no-op default:
//
//	logger := log.NewZerologAdapter()
//	sess, err := rcon.Dial(host, port, rcon.WithLogger(logger))
package log
