package rest

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/meetscribe/internal/common"
)

func TestIPLimiter_PerClient(t *testing.T) {
	l := newIPLimiter(1)
	now := time.Now()

	assert.True(t, l.allow("10.0.0.1", now))
	assert.False(t, l.allow("10.0.0.1", now))
	assert.True(t, l.allow("10.0.0.2", now), "other clients have their own bucket")
	assert.True(t, l.allow("10.0.0.1", now.Add(time.Minute)), "bucket refills")
}

func TestIPLimiter_Disabled(t *testing.T) {
	l := newIPLimiter(0)
	now := time.Now()

	for i := 0; i < 100; i++ {
		assert.True(t, l.allow("10.0.0.1", now))
	}
}

func TestIPLimiter_Sweep(t *testing.T) {
	l := newIPLimiter(5)
	now := time.Now()

	l.allow("old", now)
	l.allow("fresh", now.Add(l.ttl))
	l.sweep(now.Add(l.ttl + time.Second))

	assert.NotContains(t, l.clients, "old")
	assert.Contains(t, l.clients, "fresh")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("%w: bad", common.ErrorValidation), want: http.StatusBadRequest},
		{err: common.ErrorAlreadyExists, want: http.StatusConflict},
		{err: common.ErrorUnauthorized, want: http.StatusUnauthorized},
		{err: common.ErrInvalidToken, want: http.StatusUnauthorized},
		{err: common.ErrTokenExpired, want: http.StatusUnauthorized},
		{err: common.ErrorForbidden, want: http.StatusForbidden},
		{err: fmt.Errorf("x: %w", common.ErrorNotFound), want: http.StatusNotFound},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
