package utils

import (
	"math"
	"math/rand"
	"time"
)

// RetryDelay paces retry attempts for a named task.
type RetryDelay interface {
	Wait(taskName string, attempt int)
}

// ConstantDelay waits a fixed number of seconds between attempts.
type ConstantDelay struct {
	Period int
}

func (d ConstantDelay) Wait(taskName string, attempt int) {
	period := d.Period
	if period <= 0 {
		period = 1
	}
	time.Sleep(time.Duration(period) * time.Second)
}

// ExponentialBackoff waits 2*2^attempt seconds capped at 10, plus up to one
// second of jitter to avoid retry stampedes.
type ExponentialBackoff struct{}

func (d ExponentialBackoff) Wait(taskName string, attempt int) {
	backoff := math.Min(2*math.Pow(2, float64(attempt)), 10)
	jitter := time.Duration(rand.Int63n(int64(time.Second)))
	time.Sleep(time.Duration(backoff)*time.Second + jitter)
}
