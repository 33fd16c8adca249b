package ingest

import "github.com/nats-io/nats.go"

// DeliverDiscoveryMessageForTest exercises DiscoveryEmitter's message
// handler without a live NATS subscription.
func DeliverDiscoveryMessageForTest(d *DiscoveryEmitter, msg *nats.Msg) {
	d.onMessage(msg)
}

// SetDiscoveryUpForTest sets the up flag a real Open()/Close() would
// otherwise flip.
func SetDiscoveryUpForTest(d *DiscoveryEmitter, up bool) {
	d.mu.Lock()
	d.up = up
	d.mu.Unlock()
}
