// Package telemetry records product metrics (habit checks, progress
// computations) and exports them over OTLP.
package telemetry

import (
	"context"
	"time"
)

// Recorder receives product measurements. Implementations must be safe for
// concurrent use.
type Recorder interface {
	CheckToggled(ctx context.Context, completed bool)
	ProgressComputed(ctx context.Context, view string, took time.Duration)
	HabitsChanged(ctx context.Context, op string)
	Shutdown(ctx context.Context) error
}

// Noop discards measurements.
type Noop struct{}

// NewNoop returns a Recorder that records nothing.
func NewNoop() Recorder { return Noop{} }

func (Noop) CheckToggled(context.Context, bool)                      {}
func (Noop) ProgressComputed(context.Context, string, time.Duration) {}
func (Noop) HabitsChanged(context.Context, string)                   {}
func (Noop) Shutdown(context.Context) error                          { return nil }
