package service_test

import (
	"testing"
	"time"

	"github.com/dom/civ-draft/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestManualClock_RunsDueCallbacksInOrder(t *testing.T) {
	clock := service.NewManualClock(epoch)

	var fired []string
	clock.AfterFunc(30*time.Second, func() { fired = append(fired, "b") })
	clock.AfterFunc(10*time.Second, func() {
		fired = append(fired, "a")
		assert.Equal(t, epoch.Add(10*time.Second), clock.Now())
		clock.AfterFunc(10*time.Second, func() { fired = append(fired, "chained") })
	})
	clock.AfterFunc(time.Minute, func() { fired = append(fired, "late") })

	clock.Advance(30 * time.Second)

	assert.Equal(t, []string{"a", "chained", "b"}, fired)
	assert.Equal(t, 1, clock.Pending())
	assert.Equal(t, epoch.Add(30*time.Second), clock.Now())
}

func TestTimerScheduler_StopDropsPendingCallbacks(t *testing.T) {
	scheduler := service.NewTimerScheduler()

	ran := make(chan struct{}, 2)
	scheduler.AfterFunc(time.Millisecond, func() { ran <- struct{}{} })
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("callback did not run")
	}

	scheduler.Stop()
	scheduler.AfterFunc(time.Millisecond, func() { ran <- struct{}{} })
	select {
	case <-ran:
		t.Fatal("callback ran after Stop")
	case <-time.After(50 * time.Millisecond):
	}
}
