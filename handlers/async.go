package handlers

import (
	"sync"

	"github.com/sirupsen/logrus"

	"sniper-dashboard/logging"
	"sniper-dashboard/models"
)

// AsyncHandler moves a slow handler off the publishing goroutine. Events are
// delivered in order by a single worker; when the queue is full new events
// are dropped.
type AsyncHandler struct {
	inner StateHandler
	queue chan models.StateEvent
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
	log   *logrus.Entry
}

// NewAsyncHandler wraps inner with a queue of the given size.
func NewAsyncHandler(inner StateHandler, size int) *AsyncHandler {
	if size <= 0 {
		size = 64
	}
	return &AsyncHandler{
		inner: inner,
		queue: make(chan models.StateEvent, size),
		done:  make(chan struct{}),
		log:   logging.WithComponent("handlers").WithField("handler", inner.Name()),
	}
}

// Name returns the wrapped handler's name.
func (a *AsyncHandler) Name() string { return a.inner.Name() }

// Start launches the worker.
func (a *AsyncHandler) Start() {
	a.wg.Add(1)
	go a.loop()
}

// Stop drains what is already queued and waits for the worker to exit.
func (a *AsyncHandler) Stop() {
	a.once.Do(func() { close(a.done) })
	a.wg.Wait()
}

// Handle enqueues ev without blocking.
func (a *AsyncHandler) Handle(ev models.StateEvent) error {
	select {
	case <-a.done:
		return nil
	default:
	}

	select {
	case a.queue <- ev:
	default:
		a.log.WithField("event", ev.Type).Warn("⚠️  Handler queue full, event dropped")
	}
	return nil
}

func (a *AsyncHandler) loop() {
	defer a.wg.Done()
	for {
		select {
		case ev := <-a.queue:
			a.deliver(ev)
		case <-a.done:
			for {
				select {
				case ev := <-a.queue:
					a.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

func (a *AsyncHandler) deliver(ev models.StateEvent) {
	if err := a.inner.Handle(ev); err != nil {
		a.log.WithError(err).WithField("event", ev.Type).Warn("⚠️  Async handler failed")
	}
}
