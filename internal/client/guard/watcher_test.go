package guard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/meetscribe/internal/client/models"
	"github.com/dmitrijs2005/meetscribe/internal/client/session"
)

// fakeSource is a settable session with synchronous notification.
type fakeSource struct {
	mu   sync.Mutex
	st   session.State
	subs map[int]func(session.State)
	next int
}

func newFakeSource(st session.State) *fakeSource {
	return &fakeSource{st: st, subs: map[int]func(session.State){}}
}

func (f *fakeSource) State() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.st
}

func (f *fakeSource) Subscribe(fn func(session.State)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

func (f *fakeSource) set(st session.State) {
	f.mu.Lock()
	f.st = st
	fns := make([]func(session.State), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}

type change struct {
	path string
	kind Kind
}

func TestWatcher_NavigateFollowsRedirects(t *testing.T) {
	src := newFakeSource(session.State{User: user(models.RoleAdmin)})
	w := NewWatcher(Routes(), src, nil)
	defer w.Close()

	path, d := w.Navigate("/dashboard")
	assert.Equal(t, "/admin/dashboard", path)
	assert.Equal(t, Render, d.Kind)

	cur, _ := w.Current()
	assert.Equal(t, "/admin/dashboard", cur)
}

func TestWatcher_LoadingThenResolved(t *testing.T) {
	src := newFakeSource(session.State{Loading: true})
	var changes []change
	w := NewWatcher(Routes(), src, func(p string, d Decision) { changes = append(changes, change{p, d.Kind}) })
	defer w.Close()

	path, d := w.Navigate("/profile")
	assert.Equal(t, "/profile", path)
	assert.Equal(t, Loading, d.Kind)

	src.set(session.State{User: user(models.RoleUser)})

	require.Len(t, changes, 1)
	assert.Equal(t, change{"/profile", Render}, changes[0])
}

func TestWatcher_LogoutWhileOnProtectedViewRedirects(t *testing.T) {
	src := newFakeSource(session.State{User: user(models.RoleUser)})
	var changes []change
	w := NewWatcher(Routes(), src, func(p string, d Decision) { changes = append(changes, change{p, d.Kind}) })
	defer w.Close()

	_, d := w.Navigate("/transcriptions")
	require.Equal(t, Render, d.Kind)

	src.set(session.State{Loading: true, User: user(models.RoleUser)})
	src.set(session.State{})

	require.Len(t, changes, 2)
	assert.Equal(t, change{"/transcriptions", Loading}, changes[0])
	assert.Equal(t, change{"/login", Render}, changes[1])

	cur, _ := w.Current()
	assert.Equal(t, "/login", cur)
}

func TestWatcher_NoCallbackWhenVerdictUnchanged(t *testing.T) {
	src := newFakeSource(session.State{User: user(models.RoleUser)})
	calls := 0
	w := NewWatcher(Routes(), src, func(string, Decision) { calls++ })
	defer w.Close()

	w.Navigate("/profile")
	src.set(session.State{User: &models.User{ID: "u1", Role: models.RoleUser, Token: "tok", IsVerified: true}})

	assert.Equal(t, 0, calls)
}

func TestWatcher_CloseStopsUpdates(t *testing.T) {
	src := newFakeSource(session.State{User: user(models.RoleUser)})
	calls := 0
	w := NewWatcher(Routes(), src, func(string, Decision) { calls++ })

	w.Navigate("/dashboard")
	w.Close()
	src.set(session.State{})

	assert.Equal(t, 0, calls)
	cur, _ := w.Current()
	assert.Equal(t, "/dashboard", cur)
}
