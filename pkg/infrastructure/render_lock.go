package infrastructure

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// renderLock lets one surface exist at a time on a shared browser.
type renderLock struct {
	sem *semaphore.Weighted
}

func newRenderLock() *renderLock {
	return &renderLock{sem: semaphore.NewWeighted(1)}
}

// hold blocks until the lock is free or ctx is done. The returned unlock
// frees the lock once no matter how often it is called.
func (l *renderLock) hold(ctx context.Context) (unlock func(), err error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	var once sync.Once
	return func() { once.Do(func() { l.sem.Release(1) }) }, nil
}
