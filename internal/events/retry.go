package events

import (
	"errors"
	"math/rand"
	"net"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// MaxAttempts bounds publish retries.
const MaxAttempts = 3

// IsTransient reports whether a publish error is worth retrying.
func IsTransient(err error) bool {
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var amqpErr *amqp091.Error
	if errors.As(err, &amqpErr) {
		return amqpErr.Recover
	}
	return false
}

// Backoff returns the wait before retry attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int63n(int64(base) / 2))
	return base + jitter
}
