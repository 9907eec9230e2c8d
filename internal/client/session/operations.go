package session

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/dmitrijs2005/meetscribe/internal/client/client"
	"github.com/dmitrijs2005/meetscribe/internal/common"
)

// flightKey identifies an invocation for single-flight coalescing. The
// arguments are hashed, so the key never holds a raw password.
func flightKey(op string, args ...string) string {
	h := sha256.New()
	for _, a := range args {
		h.Write([]byte(a))
		h.Write([]byte{0})
	}
	return op + ":" + hex.EncodeToString(h.Sum(nil))
}

// do runs fn once per concurrent key, with loading raised until it ends.
// The shared call runs under the operation deadline only, so one caller
// giving up does not fail the others; a caller whose ctx ends gets ctx.Err()
// while the shared call completes for whoever is still waiting.
func (c *Container) do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	end := c.begin()

	ch := c.group.DoChan(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return nil, fn(ctx)
	})

	select {
	case res := <-ch:
		end()
		return res.Err
	case <-ctx.Done():
		go func() {
			<-ch
			end()
		}()
		return ctx.Err()
	}
}

// reset ends the session after a failed operation, unless another change
// was committed in the meantime.
func (c *Container) reset(ctx context.Context, gen uint64, cause error) error {
	if err := c.commit(ctx, gen, nil); err != nil && !errors.Is(err, errSessionChanged) {
		return errors.Join(cause, err)
	}
	return cause
}

// Login authenticates and, on success, writes user and token through to the
// store before publishing them. A malformed success response resets the
// session to anonymous.
func (c *Container) Login(ctx context.Context, email string, password []byte) bool {
	pw := bytes.Clone(password)
	err := c.do(ctx, flightKey("login", email, string(password)), func(ctx context.Context) error {
		defer common.WipeByteArray(pw)

		gen, _ := c.snapshot()
		user, err := c.auth.Login(ctx, email, pw)
		if err != nil {
			if errors.Is(err, client.ErrMalformedResponse) {
				return c.reset(ctx, gen, err)
			}
			return err
		}
		return c.commit(ctx, gen, user)
	})
	if ctx.Err() == nil {
		common.WipeByteArray(pw)
	}
	if err != nil {
		c.log.Warn(ctx, "login failed", "email", email, "error", err)
		return false
	}
	c.log.Info(ctx, "logged in", "email", email)
	return true
}

// Register creates an account. The session is not touched; the caller logs
// in separately.
func (c *Container) Register(ctx context.Context, name, email string, password []byte) bool {
	pw := bytes.Clone(password)
	err := c.do(ctx, flightKey("register", name, email, string(password)), func(ctx context.Context) error {
		defer common.WipeByteArray(pw)
		return c.auth.Register(ctx, name, email, pw)
	})
	if ctx.Err() == nil {
		common.WipeByteArray(pw)
	}
	if err != nil {
		c.log.Warn(ctx, "registration failed", "email", email, "error", err)
		return false
	}
	c.log.Info(ctx, "registered", "email", email)
	return true
}

// VerifyEmail confirms an email token. With an active session the user is
// marked verified in memory and storage; without one nothing changes
// locally and the call still succeeds. A logout or another login while the
// request is in flight wins over the patch.
func (c *Container) VerifyEmail(ctx context.Context, token string) bool {
	err := c.do(ctx, flightKey("verify", token), func(ctx context.Context) error {
		gen, current := c.snapshot()
		if err := c.auth.VerifyEmail(ctx, token); err != nil {
			return err
		}
		if current == nil {
			return nil
		}

		patched := current.Clone()
		patched.IsVerified = true
		if err := c.commit(ctx, gen, patched); err != nil && !errors.Is(err, errSessionChanged) {
			return err
		}
		return nil
	})
	if err != nil {
		c.log.Warn(ctx, "email verification failed", "error", err)
		return false
	}
	return true
}

// ResendVerificationEmail has no API counterpart; it only records the
// request.
func (c *Container) ResendVerificationEmail(ctx context.Context) bool {
	end := c.begin()
	defer end()

	var email string
	if u := c.User(); u != nil {
		email = u.Email
	}
	c.log.Info(ctx, "verification email resend requested", "email", email)
	return true
}

// GoogleLoginURL is where the federated login starts; the provider returns
// to the callback route with ?token=.
func (c *Container) GoogleLoginURL() string {
	return c.auth.GoogleLoginURL()
}

// CompleteGoogleLogin finishes the federated login with the token delivered
// to the callback route. It reports whether the session is authenticated
// afterwards.
func (c *Container) CompleteGoogleLogin(ctx context.Context, token string) bool {
	token = strings.TrimSpace(token)
	err := c.do(ctx, flightKey("google", token), func(ctx context.Context) error {
		gen, _ := c.snapshot()
		user, err := c.auth.CompleteFederatedLogin(ctx, token)
		if err != nil {
			return c.reset(ctx, gen, err)
		}
		return c.commit(ctx, gen, user)
	})
	if err != nil {
		c.log.Warn(ctx, "federated login failed", "error", err)
		return false
	}
	return c.State().Authenticated()
}

// FetchUserProfile refreshes the session from the API using the stored
// token. Any failure, including a missing token, ends the session unless it
// was replaced meanwhile.
func (c *Container) FetchUserProfile(ctx context.Context) {
	err := c.do(ctx, "profile", func(ctx context.Context) error {
		gen, _ := c.snapshot()
		user, err := c.auth.RefreshProfile(ctx)
		if err != nil {
			return c.reset(ctx, gen, err)
		}
		return c.commit(ctx, gen, user)
	})
	if err != nil {
		c.log.Warn(ctx, "profile refresh failed", "error", err)
	}
}

// Logout ends the session. It is safe to call when already anonymous; a
// storage failure is logged and memory is cleared regardless. Results of
// operations still in flight are discarded.
func (c *Container) Logout(ctx context.Context) {
	err := c.do(ctx, "logout", func(ctx context.Context) error {
		c.commitMu.Lock()
		err := c.auth.Logout(ctx)
		c.publish(nil)
		c.commitMu.Unlock()

		c.notify()
		return err
	})
	if err != nil {
		c.log.Error(ctx, "failed to clear stored credentials", "error", err)
	}
}
