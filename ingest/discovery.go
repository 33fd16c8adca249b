package ingest

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// discoveryAnnouncement is the small JSON record a DDS-to-NATS discovery
// bridge is assumed to republish on the well-known discovery subjects.
type discoveryAnnouncement struct {
	Topic    string `json:"topic"`
	TypeName string `json:"type_name"`
}

// DiscoveryEmitter attaches to a domain's discovery subjects over NATS and
// emits one record per announced publication/subscription endpoint. It
// remains active for as long as its underlying subscriptions are up.
type DiscoveryEmitter struct {
	Conn   *nats.Conn
	Domain string

	mu    sync.Mutex
	cond  *sync.Cond
	queue []Record
	subs  []*nats.Subscription
	up    bool
}

// NewDiscoveryEmitter builds a DiscoveryEmitter for domain over conn.
func NewDiscoveryEmitter(conn *nats.Conn, domain string) *DiscoveryEmitter {
	d := &DiscoveryEmitter{Conn: conn, Domain: domain}
	d.cond = sync.NewCond(&d.mu)
	return d
}

func (d *DiscoveryEmitter) subjects() (publication, subscription string) {
	return d.Domain + ".discovery.publication", d.Domain + ".discovery.subscription"
}

// Open subscribes to both discovery subjects.
func (d *DiscoveryEmitter) Open() error {
	pubSubject, subSubject := d.subjects()
	pubSub, err := d.Conn.Subscribe(pubSubject, d.onMessage)
	if err != nil {
		return err
	}
	subSub, err := d.Conn.Subscribe(subSubject, d.onMessage)
	if err != nil {
		_ = pubSub.Unsubscribe()
		return err
	}

	d.mu.Lock()
	d.subs = []*nats.Subscription{pubSub, subSub}
	d.up = true
	d.mu.Unlock()
	return nil
}

// onMessage runs on the NATS client's own dispatch goroutine; the
// discovery reader is callback-driven rather than polling.
func (d *DiscoveryEmitter) onMessage(msg *nats.Msg) {
	var ann discoveryAnnouncement
	if err := json.Unmarshal(msg.Data, &ann); err != nil {
		return
	}
	d.mu.Lock()
	d.queue = append(d.queue, Record{Topic: ann.Topic, TypeName: ann.TypeName})
	d.cond.Signal()
	d.mu.Unlock()
}

// Close unsubscribes from both discovery subjects and wakes any blocked
// Next call.
func (d *DiscoveryEmitter) Close() error {
	d.mu.Lock()
	subs := d.subs
	d.up = false
	d.cond.Broadcast()
	d.mu.Unlock()

	var firstErr error
	for _, s := range subs {
		if err := s.Unsubscribe(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// IsActive reports whether the underlying domain subscriptions are up.
func (d *DiscoveryEmitter) IsActive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.up || len(d.queue) > 0
}

// Next blocks (if block is true, up to timeout) for the next discovered
// endpoint. It returns *NoInputError once the subscriptions are closed and
// the queue is drained, or *TimeoutError if the poll window elapsed while
// the subscriptions are still up.
func (d *DiscoveryEmitter) Next(timeout time.Duration, block bool) (Record, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.queue) == 0 && block {
		d.waitForRecordOrTimeout(timeout)
	}
	if len(d.queue) > 0 {
		rec := d.queue[0]
		d.queue = d.queue[1:]
		return rec, nil
	}
	if !d.up {
		return Record{}, &NoInputError{Reason: "discovery subscriptions closed"}
	}
	return Record{}, &TimeoutError{}
}

func (d *DiscoveryEmitter) waitForRecordOrTimeout(timeout time.Duration) {
	timedOut := false
	timer := time.AfterFunc(timeout, func() {
		d.mu.Lock()
		timedOut = true
		d.cond.Broadcast()
		d.mu.Unlock()
	})
	defer timer.Stop()

	for len(d.queue) == 0 && d.up && !timedOut {
		d.cond.Wait()
	}
}
