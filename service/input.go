package service

import "github.com/wkalt/typewatch/ingest"

// buildInput wires the configured input sources into a single Input
// Emitter, fanning file and discovery sources together when both are
// present. readOptions guarantees at least one source is configured.
func buildInput(o Options) ingest.Emitter {
	var sources []ingest.Emitter
	if len(o.InputPaths) > 0 {
		sources = append(sources, ingest.NewFileEmitter(o.InputPaths))
	}
	if o.NatsConn != nil {
		sources = append(sources, ingest.NewDiscoveryEmitter(o.NatsConn, o.Domain))
	}
	if len(sources) == 1 {
		return sources[0]
	}
	return ingest.NewMultiEmitter(sources...)
}
