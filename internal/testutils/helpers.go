// Package testutils holds helpers for tests that depend on garbage collection.
package testutils

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// RequireCollected forces collections until cond holds. Cleanups run on a
// runtime goroutine, so cond is polled rather than checked once.
// It fails the test after two seconds.
func RequireCollected(t *testing.T, cond func() bool, msgAndArgs ...any) {
	t.Helper()
	require.Eventually(t, func() bool {
		runtime.GC()
		return cond()
	}, 2*time.Second, 10*time.Millisecond, msgAndArgs...)
}

// SettleGC runs a few collections with pauses in between, giving pending
// cleanups a chance to run. Use it before asserting that something did NOT
// happen.
func SettleGC() {
	for i := 0; i < 3; i++ {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
}
