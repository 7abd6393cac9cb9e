package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderLockTimesOutWhileHeld(t *testing.T) {
	l := newRenderLock()
	unlock, err := l.hold(context.Background())
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.hold(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRenderLockProceedsAfterUnlock(t *testing.T) {
	l := newRenderLock()
	unlock, err := l.hold(context.Background())
	require.NoError(t, err)

	got := make(chan error, 1)
	go func() {
		next, err := l.hold(context.Background())
		if err == nil {
			next()
		}
		got <- err
	}()

	select {
	case <-got:
		t.Fatal("second hold returned while the lock was held")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	select {
	case err := <-got:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("second hold did not proceed after unlock")
	}
}

func TestRenderLockDoubleUnlockFreesOnce(t *testing.T) {
	l := newRenderLock()
	unlock, err := l.hold(context.Background())
	require.NoError(t, err)
	unlock()
	unlock()

	second, err := l.hold(context.Background())
	require.NoError(t, err)
	defer second()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.hold(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestChromedpHostAcquireHonoursDeadlineWhileHeld(t *testing.T) {
	host := NewChromedpHost(HostOptions{TempDir: t.TempDir()}, nil)
	unlock, err := host.lock.hold(context.Background())
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	surface, err := host.Acquire(ctx)
	assert.Nil(t, surface)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, host.Attached())
}
