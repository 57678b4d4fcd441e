package live

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Snapshot is one evaluation of a watched query. A failed evaluation carries
// Err and a zero Value; observers should keep whatever they showed before.
type Snapshot[T any] struct {
	Value T
	Err   error
}

// Subscription delivers the latest snapshot of a query. It must be released
// by its owner; the channel returned by C is closed once it is.
type Subscription[T any] struct {
	ID uuid.UUID

	out     chan Snapshot[T]
	stop    chan struct{}
	done    chan struct{}
	cancel  context.CancelFunc
	release sync.Once
}

// Watch evaluates query now and again after every publish on topics, until
// the subscription is released or ctx is done.
func Watch[T any](ctx context.Context, hub *Hub, query func(context.Context) (T, error), topics ...Topic) *Subscription[T] {
	runCtx, cancel := context.WithCancel(ctx)
	l := hub.listen(topics)
	s := &Subscription[T]{
		ID:     l.id,
		out:    make(chan Snapshot[T], 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		cancel: cancel,
	}

	go func() {
		defer close(s.done)
		defer close(s.out)
		defer hub.unlisten(l)

		for {
			value, err := query(runCtx)
			if runCtx.Err() != nil {
				return
			}
			s.deliver(Snapshot[T]{Value: value, Err: err})

			select {
			case <-l.notify:
			case <-s.stop:
				return
			case <-runCtx.Done():
				return
			}
		}
	}()

	return s
}

// C returns the snapshot channel. Only the newest undelivered snapshot is kept.
func (s *Subscription[T]) C() <-chan Snapshot[T] {
	return s.out
}

// Release stops re-evaluation and waits for the watcher to exit. It is safe
// to call more than once.
func (s *Subscription[T]) Release() {
	s.release.Do(func() {
		close(s.stop)
		s.cancel()
	})
	<-s.done
}

// Done is closed after the subscription has fully stopped.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription[T]) deliver(snap Snapshot[T]) {
	for {
		select {
		case s.out <- snap:
			return
		default:
		}
		// drop the stale snapshot nobody has read yet
		select {
		case <-s.out:
		default:
		}
	}
}
