package util

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSleepWaitsAtLeastDuration(t *testing.T) {
	SetLogger(zaptest.NewLogger(t).Sugar())

	start := time.Now()
	Sleep(50)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestSleepNonPositiveReturnsImmediately(t *testing.T) {
	start := time.Now()
	Sleep(0)
	Sleep(-10)
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}

func TestSleepDoesNotBlockOtherGoroutines(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		Sleep(300)
	}()

	done := make(chan struct{})
	go func() {
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("unrelated goroutine was blocked by Sleep")
	}
	wg.Wait()
}

func TestNewSugaredLogger(t *testing.T) {
	l, err := NewSugaredLogger(true)
	require.NoError(t, err)
	require.NotNil(t, l)

	l, err = NewSugaredLogger(false)
	require.NoError(t, err)
	require.NotNil(t, l)
}
