package bot

import (
	"context"
	"sync"
	"time"
)

// watcher is one chat's periodic scan task.
type watcher struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// WatcherRegistry owns the per-chat watch tasks. Each chat has at most one
// running watcher; starting a new one cancels and replaces the old task
// before the replacement ticks.
type WatcherRegistry struct {
	mu       sync.Mutex
	watchers map[int64]*watcher
}

// NewWatcherRegistry creates an empty registry.
func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{watchers: make(map[int64]*watcher)}
}

// Start launches a periodic tick for chatID, replacing any existing watcher.
// The tick runs once immediately, then on every interval, until the watcher
// is stopped or ctx is cancelled.
func (r *WatcherRegistry) Start(ctx context.Context, chatID int64, interval time.Duration, tick func(context.Context)) {
	r.Stop(chatID)

	watchCtx, cancel := context.WithCancel(ctx)
	w := &watcher{cancel: cancel, done: make(chan struct{})}

	r.mu.Lock()
	r.watchers[chatID] = w
	r.mu.Unlock()

	go func() {
		defer close(w.done)

		tick(watchCtx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-watchCtx.Done():
				return
			case <-ticker.C:
				tick(watchCtx)
			}
		}
	}()
}

// Stop cancels the watcher for chatID and waits for its task to finish.
// Returns false when no watcher was running.
func (r *WatcherRegistry) Stop(chatID int64) bool {
	r.mu.Lock()
	w, ok := r.watchers[chatID]
	if ok {
		delete(r.watchers, chatID)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	w.cancel()
	<-w.done
	return true
}

// StopAll cancels every running watcher. Used on shutdown.
func (r *WatcherRegistry) StopAll() {
	r.mu.Lock()
	watchers := make([]*watcher, 0, len(r.watchers))
	for id, w := range r.watchers {
		watchers = append(watchers, w)
		delete(r.watchers, id)
	}
	r.mu.Unlock()

	for _, w := range watchers {
		w.cancel()
		<-w.done
	}
}

// Active reports whether a watcher is running for chatID.
func (r *WatcherRegistry) Active(chatID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.watchers[chatID]
	return ok
}
