package handlers

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sniper-dashboard/models"
)

type sink struct {
	mu   sync.Mutex
	name string
	got  []string
	err  error
}

func (s *sink) Name() string { return s.name }

func (s *sink) Handle(ev models.StateEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, ev.Type)
	return s.err
}

func (s *sink) events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.got...)
}

func TestPublishReachesEveryHandlerInOrder(t *testing.T) {
	hm := NewHandlerManager()
	var calls []string
	var mu sync.Mutex
	record := func(name string) StateHandler {
		return HandlerFunc{HandlerName: name, Fn: func(models.StateEvent) error {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, name)
			return nil
		}}
	}
	hm.RegisterHandler("first", record("first"))
	hm.RegisterHandler("second", record("second"))

	hm.Publish(models.StateEvent{Type: models.EventScanApplied})

	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, []string{"first", "second"}, hm.ListHandlers())
}

func TestPublishContinuesAfterHandlerError(t *testing.T) {
	hm := NewHandlerManager()
	failing := &sink{name: "failing", err: errors.New("boom")}
	ok := &sink{name: "ok"}
	hm.RegisterHandler("failing", failing)
	hm.RegisterHandler("ok", ok)

	hm.Publish(models.StateEvent{Type: models.EventModeChanged})

	assert.Equal(t, []string{models.EventModeChanged}, ok.events())
}

func TestUnregisterAndHandleEvent(t *testing.T) {
	hm := NewHandlerManager()
	s := &sink{name: "s"}
	hm.RegisterHandler("s", s)

	require.NoError(t, hm.HandleEvent("s", models.StateEvent{Type: "x"}))
	hm.UnregisterHandler("s")

	assert.Error(t, hm.HandleEvent("s", models.StateEvent{Type: "x"}))
	assert.Empty(t, hm.ListHandlers())
}

func TestOnlyEvents(t *testing.T) {
	s := &sink{name: "s"}
	h := OnlyEvents(s, models.EventScanApplied)

	_ = h.Handle(models.StateEvent{Type: models.EventLoadingChanged})
	_ = h.Handle(models.StateEvent{Type: models.EventScanApplied})

	assert.Equal(t, []string{models.EventScanApplied}, s.events())
	assert.Equal(t, "s", h.Name())
}

func TestAsyncHandlerDeliversInOrderAndDrainsOnStop(t *testing.T) {
	s := &sink{name: "slow"}
	a := NewAsyncHandler(s, 8)
	a.Start()

	for _, typ := range []string{"a", "b", "c"} {
		require.NoError(t, a.Handle(models.StateEvent{Type: typ}))
	}
	a.Stop()

	assert.Equal(t, []string{"a", "b", "c"}, s.events())
	assert.NoError(t, a.Handle(models.StateEvent{Type: "late"}))
	assert.Equal(t, []string{"a", "b", "c"}, s.events())
}

func TestAsyncHandlerDoesNotBlockWhenFull(t *testing.T) {
	block := make(chan struct{})
	h := HandlerFunc{HandlerName: "blocked", Fn: func(models.StateEvent) error {
		<-block
		return nil
	}}
	a := NewAsyncHandler(h, 1)
	a.Start()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			_ = a.Handle(models.StateEvent{Type: "x"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Handle blocked on a full queue")
	}
	close(block)
	a.Stop()
}
