package transfer

import (
	"context"
	"sync"
)

// Transfer is one running upload.
type Transfer struct {
	ID       string
	FileName string

	events chan Event
	done   chan struct{}
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// Events yields progress ticks and then at most one outcome. The channel is
// closed when the transfer ends; a cancelled transfer closes it without an
// outcome.
func (t *Transfer) Events() <-chan Event {
	return t.events
}

// Done is closed once the worker has exited.
func (t *Transfer) Done() <-chan struct{} {
	return t.done
}

// Cancel aborts the transfer. No event is delivered after Cancel returns:
// events still buffered in the channel are discarded.
func (t *Transfer) Cancel() {
	t.cancel()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	for {
		select {
		case _, ok := <-t.events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// Wait drains the events, calling onProgress for each tick, and returns the
// outcome. ok is false when the transfer ended without one.
func (t *Transfer) Wait(onProgress func(pct int)) (out Outcome, ok bool) {
	for ev := range t.events {
		switch ev.Type {
		case EventProgress:
			if onProgress != nil {
				onProgress(ev.Percent)
			}
		case EventOutcome:
			out, ok = *ev.Outcome, true
		}
	}
	return out, ok
}

func (t *Transfer) emitProgress(ctx context.Context, pct int) {
	t.emit(ctx, Event{Type: EventProgress, Percent: pct})
}

func (t *Transfer) emitOutcome(ctx context.Context, o Outcome) {
	if ctx.Err() != nil {
		return
	}
	t.emit(ctx, Event{Type: EventOutcome, Outcome: &o})
}

// emit holds mu across the send so that Cancel, which takes mu after
// cancelling ctx, cannot return while a send is pending.
func (t *Transfer) emit(ctx context.Context, ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	select {
	case t.events <- ev:
	case <-ctx.Done():
		return
	}
	if ev.Type == EventOutcome {
		t.closed = true
	}
}

func (t *Transfer) finish() {
	t.mu.Lock()
	t.closed = true
	close(t.events)
	t.mu.Unlock()
	close(t.done)
}
