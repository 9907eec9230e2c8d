package guard

import (
	"sync"

	"github.com/dmitrijs2005/meetscribe/internal/client/session"
)

// maxRedirects bounds redirect chains followed by a single navigation.
const maxRedirects = 8

// Source is the session as seen by the guard.
type Source interface {
	State() session.State
	Subscribe(fn func(session.State)) (unsubscribe func())
}

// Watcher keeps the current view in step with the session: every state
// change re-evaluates the current path, and a resulting redirect is followed
// and reported.
type Watcher struct {
	table    *Table
	src      Source
	onChange func(path string, d Decision)

	mu    sync.Mutex
	path  string
	last  Decision
	unsub func()
}

// NewWatcher subscribes to src. onChange (may be nil) is called when a
// session change alters the verdict for the current view; path is the view
// that is now current.
func NewWatcher(t *Table, src Source, onChange func(path string, d Decision)) *Watcher {
	w := &Watcher{table: t, src: src, onChange: onChange, path: "/"}
	w.unsub = src.Subscribe(w.onState)
	return w
}

// Navigate makes path the current view, following redirects, and returns the
// final path with its decision.
func (w *Watcher) Navigate(path string) (string, Decision) {
	st := w.src.State()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.path, w.last = w.resolve(st, path)
	return w.path, w.last
}

// Current returns the current view and its latest decision.
func (w *Watcher) Current() (string, Decision) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path, w.last
}

// Close stops watching the session.
func (w *Watcher) Close() {
	w.unsub()
}

func (w *Watcher) resolve(st session.State, path string) (string, Decision) {
	d := w.table.Decide(st, path)
	for i := 0; d.Kind == Redirect && i < maxRedirects; i++ {
		path = d.Target
		d = w.table.Decide(st, path)
	}
	return path, d
}

func (w *Watcher) onState(st session.State) {
	w.mu.Lock()
	prevPath, prev := w.path, w.last
	w.path, w.last = w.resolve(st, w.path)
	path, d := w.path, w.last
	w.mu.Unlock()

	if w.onChange != nil && (path != prevPath || d.Kind != prev.Kind) {
		w.onChange(path, d)
	}
}
