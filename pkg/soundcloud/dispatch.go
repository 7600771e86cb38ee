package soundcloud

import "sync"

// Dispatcher runs completion callbacks.
//
// Every completion produced by a Client is handed to its Dispatcher, so
// callers observe results from a single context no matter which goroutine
// performed the network I/O.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(fn func())

// Dispatch calls f(fn).
func (f DispatcherFunc) Dispatch(fn func()) {
	f(fn)
}

// SerialQueue is a Dispatcher that runs callbacks one at a time, in
// submission order, on a single goroutine.
//
// Dispatch never blocks. Callbacks submitted after Close are dropped.
type SerialQueue struct {
	mu      sync.Mutex
	pending []func()
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

// NewSerialQueue starts a queue. Call Close to stop its goroutine.
func NewSerialQueue() *SerialQueue {
	q := &SerialQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.loop()
	return q
}

// Dispatch enqueues fn.
func (q *SerialQueue) Dispatch(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Close stops accepting callbacks, waits for the queued ones to run and
// stops the goroutine. It must not be called from a callback.
func (q *SerialQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	<-q.done
}

func (q *SerialQueue) loop() {
	defer close(q.done)
	for range q.wake {
		for {
			q.mu.Lock()
			if len(q.pending) == 0 {
				closed := q.closed
				q.mu.Unlock()
				if closed {
					return
				}
				break
			}
			fn := q.pending[0]
			q.pending[0] = nil
			q.pending = q.pending[1:]
			q.mu.Unlock()

			fn()
		}
	}
}
