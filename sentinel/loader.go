// Package sentinel implements the view-triggered loader: a visibility
// observer on the list's end-of-content anchor that asks the pagination
// controller for the next page when the anchor scrolls into the leading
// margin. It is driven purely by visibility-change notifications; it never
// polls.
package sentinel

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Pager is the slice of the session controller the loader needs.
type Pager interface {
	LoadNextPage(ctx context.Context) error
	HasMore() bool
	Loading() bool
}

// Loader fires LoadNextPage at most once per visibility transition of the
// anchor. After firing it stays disarmed until the load settles or the
// anchor exits and re-enters visibility; after Close it never fires again.
type Loader struct {
	mu       sync.Mutex
	pager    Pager
	log      zerolog.Logger
	visible  bool
	inFlight bool
	closed   bool
	wg       sync.WaitGroup
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Loader) {
		l.log = log
	}
}

// New creates a loader over the given pager.
func New(pager Pager, opts ...Option) *Loader {
	l := &Loader{
		pager: pager,
		log:   zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Notify delivers one visibility-change notification for the anchor. Only
// the invisible-to-visible edge can trigger a load, and only when no load is
// in flight and the controller still reports more pages.
func (l *Loader) Notify(ctx context.Context, visible bool) {
	l.mu.Lock()

	if l.closed {
		l.mu.Unlock()
		return
	}

	wasVisible := l.visible
	l.visible = visible

	fire := visible && !wasVisible && !l.inFlight &&
		l.pager.HasMore() && !l.pager.Loading()
	if fire {
		l.inFlight = true
		l.wg.Add(1)
	}
	l.mu.Unlock()

	if !fire {
		return
	}

	go func() {
		defer l.wg.Done()

		err := l.pager.LoadNextPage(ctx)
		if err != nil {
			l.log.Debug().Err(err).Msg("sentinel-triggered load failed")
		}

		l.mu.Lock()
		l.inFlight = false
		// A failed load is not auto-retried; retry waits for the anchor to
		// exit and re-enter, or for an explicit user action.
		rearmed := err == nil && l.visible && !l.closed
		l.mu.Unlock()

		// The anchor can still be inside the margin after the new page
		// renders (short pages, tall viewports). Re-deliver the visible edge
		// so the next page loads without requiring a scroll wiggle.
		if rearmed {
			l.Notify(ctx, false)
			l.Notify(ctx, true)
		}
	}()
}

// Run consumes visibility notifications from ch until it closes or ctx is
// done, then deregisters the loader. It is the channel-driven form of
// Notify for callers that bridge a real visibility observer.
func (l *Loader) Run(ctx context.Context, ch <-chan bool) {
	defer l.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case visible, ok := <-ch:
			if !ok {
				return
			}
			l.Notify(ctx, visible)
		}
	}
}

// Close deregisters the loader: pending notifications are dropped and no
// further load is triggered. It waits for an in-flight load goroutine to
// settle so no callback runs against a torn-down view.
func (l *Loader) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	l.wg.Wait()
}
