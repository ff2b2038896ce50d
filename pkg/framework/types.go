package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// RunnableFunc is the func form of Runnable.
type RunnableFunc func(context.Context) error

// Run implements Runnable.
func (f RunnableFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// TimeSource provides the current time.
type TimeSource interface {
	Time() time.Time
}

// SystemClock is the TimeSource backed by time.Now.
var SystemClock TimeSource = systemClock{}

type systemClock struct{}

func (systemClock) Time() time.Time {
	return time.Now()
}
