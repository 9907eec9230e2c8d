// Package session holds the process-wide session state of the client: the
// current user (or none) and a loading flag, the operations that change
// them, and a subscription hook for consumers that react to changes.
//
// The container is the boundary where failures stop: its operations return
// booleans or nothing and log what went wrong.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/meetscribe/internal/client/models"
	"github.com/dmitrijs2005/meetscribe/internal/client/services"
	"github.com/dmitrijs2005/meetscribe/internal/logging"
)

// errSessionChanged reports that the session was replaced or ended while an
// operation was in flight; its result is discarded.
var errSessionChanged = errors.New("session changed during the operation")

// DefaultRequestTimeout bounds every network call made by an operation when
// no timeout is configured.
const DefaultRequestTimeout = 15 * time.Second

// State is a snapshot of the session. Authenticated iff User is non-nil.
type State struct {
	User    *models.User
	Loading bool
}

func (s State) Authenticated() bool {
	return s.User != nil
}

// Container owns the in-memory session. It is safe for concurrent use.
type Container struct {
	auth    services.AuthService
	log     logging.Logger
	timeout time.Duration

	mu       sync.RWMutex
	user     *models.User
	inflight int
	booting  bool

	// commitMu orders store writes with the in-memory update; gen counts
	// committed changes so a result computed against an older session is
	// dropped.
	commitMu sync.Mutex
	gen      uint64

	bootOnce sync.Once
	group    singleflight.Group

	subsMu sync.Mutex
	subs   map[int]func(State)
	nextID int
}

// New returns a container in the loading state; it stays loading until
// Bootstrap has run. timeout <= 0 selects DefaultRequestTimeout.
func New(auth services.AuthService, log logging.Logger, timeout time.Duration) *Container {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Container{
		auth:    auth,
		log:     log.With("component", "session"),
		timeout: timeout,
		booting: true,
		subs:    make(map[int]func(State)),
	}
}

// Bootstrap restores the persisted session. Only the first call does any
// work; later calls return immediately.
func (c *Container) Bootstrap(ctx context.Context) {
	c.bootOnce.Do(func() {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		c.commitMu.Lock()
		user, err := c.auth.Restore(ctx)
		if err != nil {
			c.log.Warn(ctx, "session restore failed, starting anonymous", "error", err)
			user = nil
		}
		c.publish(user)
		c.mu.Lock()
		c.booting = false
		c.mu.Unlock()
		c.commitMu.Unlock()

		if user != nil {
			c.log.Debug(ctx, "session restored", "user_id", user.ID, "role", user.Role)
		}
		c.notify()
	})
}

func (c *Container) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{User: c.user.Clone(), Loading: c.booting || c.inflight > 0}
}

// User returns a copy of the current user, nil when anonymous.
func (c *Container) User() *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user.Clone()
}

func (c *Container) Loading() bool {
	return c.State().Loading
}

// Token returns the bearer token of the current session, "" when anonymous.
func (c *Container) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return ""
	}
	return c.user.Token
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn is called outside the container lock and must not block for long. The
// returned function removes the subscription.
func (c *Container) Subscribe(fn func(State)) (unsubscribe func()) {
	c.subsMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subsMu.Lock()
			delete(c.subs, id)
			c.subsMu.Unlock()
		})
	}
}

func (c *Container) notify() {
	st := c.State()

	c.subsMu.Lock()
	fns := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subsMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

// begin raises the loading flag; the returned func lowers it. Loading is a
// counter so overlapping operations keep it raised until the last one ends.
func (c *Container) begin() (end func()) {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()
	c.notify()

	return func() {
		c.mu.Lock()
		c.inflight--
		c.mu.Unlock()
		c.notify()
	}
}

// snapshot returns the session generation together with the current user.
func (c *Container) snapshot() (uint64, *models.User) {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()
	return c.gen, c.User()
}

// commit writes u through to the store (nil clears it) and then publishes
// it, provided no other change was committed since gen. Observers are
// notified after the commit lock is released.
func (c *Container) commit(ctx context.Context, gen uint64, u *models.User) error {
	c.commitMu.Lock()
	if c.gen != gen {
		c.commitMu.Unlock()
		return errSessionChanged
	}
	var err error
	if u == nil {
		err = c.auth.Logout(ctx)
	} else {
		err = c.auth.Save(ctx, u)
	}
	// A failed clear still ends the in-memory session.
	published := err == nil || u == nil
	if published {
		c.publish(u)
	}
	c.commitMu.Unlock()

	if published {
		c.notify()
	}
	return err
}

// publish replaces the in-memory user. Callers hold commitMu.
func (c *Container) publish(u *models.User) {
	c.gen++
	c.mu.Lock()
	c.user = sanitize(u)
	c.mu.Unlock()
}

// sanitize enforces that an authenticated user always carries an id and a
// token.
func sanitize(u *models.User) *models.User {
	if !u.HasIdentity() || u.Token == "" {
		return nil
	}
	return u.Clone()
}

