package ingest

import (
	"errors"
	"sync"
	"time"
)

// MultiEmitter fans in records from several Emitters into one stream. Each
// producer's own emission order is preserved at the consumer (a
// FIFO-per-producer guarantee); records from distinct producers may
// interleave in delivery order relative to one another.
type MultiEmitter struct {
	sources []Emitter

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []Record
	pending int // number of sources not yet reported done
}

// NewMultiEmitter builds a MultiEmitter over sources. Each source must
// already be constructed but not yet Open.
func NewMultiEmitter(sources ...Emitter) *MultiEmitter {
	m := &MultiEmitter{sources: sources, pending: len(sources)}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Open opens every source and starts one pump goroutine per source that
// forwards its records into the shared queue.
func (m *MultiEmitter) Open() error {
	for _, s := range m.sources {
		if err := s.Open(); err != nil {
			return err
		}
	}
	for _, s := range m.sources {
		go m.pump(s)
	}
	return nil
}

func (m *MultiEmitter) pump(s Emitter) {
	for {
		rec, err := s.Next(100*time.Millisecond, true)
		if err != nil {
			var noInput *NoInputError
			if errors.As(err, &noInput) || !s.IsActive() {
				break
			}
			continue
		}
		m.mu.Lock()
		m.queue = append(m.queue, rec)
		m.cond.Signal()
		m.mu.Unlock()
	}
	m.mu.Lock()
	m.pending--
	m.cond.Broadcast()
	m.mu.Unlock()
}

// Close closes every source.
func (m *MultiEmitter) Close() error {
	var firstErr error
	for _, s := range m.sources {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// IsActive reports whether any source is still active or has queued
// records awaiting delivery.
func (m *MultiEmitter) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending > 0 || len(m.queue) > 0
}

// Next blocks (if block is true, up to timeout) for the next fanned-in
// record. It returns *NoInputError once every source has reported
// exhaustion and the queue is drained, or *TimeoutError if the poll window
// elapsed while at least one source is still active.
func (m *MultiEmitter) Next(timeout time.Duration, block bool) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) == 0 && block {
		m.waitForRecordOrTimeout(timeout)
	}
	if len(m.queue) > 0 {
		rec := m.queue[0]
		m.queue = m.queue[1:]
		return rec, nil
	}
	if m.pending == 0 {
		return Record{}, &NoInputError{Reason: "all sources exhausted"}
	}
	return Record{}, &TimeoutError{}
}

func (m *MultiEmitter) waitForRecordOrTimeout(timeout time.Duration) {
	timedOut := false
	timer := time.AfterFunc(timeout, func() {
		m.mu.Lock()
		timedOut = true
		m.cond.Broadcast()
		m.mu.Unlock()
	})
	defer timer.Stop()

	for len(m.queue) == 0 && m.pending > 0 && !timedOut {
		m.cond.Wait()
	}
}
