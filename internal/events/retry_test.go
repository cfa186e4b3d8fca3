package events

import (
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

func TestBackoff_GrowsAndStaysBounded(t *testing.T) {
	prevCap := time.Duration(0)
	for attempt := 0; attempt < 8; attempt++ {
		d := Backoff(attempt)
		if d < time.Second {
			t.Errorf("attempt %d: backoff %v below one second", attempt, d)
		}
		// Base doubles per attempt but is capped at 30s; jitter adds at
		// most half the base on top.
		if d > 45*time.Second {
			t.Errorf("attempt %d: backoff %v exceeds cap plus jitter", attempt, d)
		}
		if attempt > 0 && d+15*time.Second < prevCap {
			t.Errorf("attempt %d: backoff %v shrank far below previous %v", attempt, d, prevCap)
		}
		prevCap = d
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(amqp091.ErrClosed) {
		t.Error("closed connection should be transient")
	}
	if IsTransient(errors.New("bad payload")) {
		t.Error("generic error should not be transient")
	}
	if IsTransient(nil) {
		t.Error("nil error should not be transient")
	}
}
