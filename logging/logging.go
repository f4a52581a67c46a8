// Package logging wraps go.uber.org/zap for this engine's two progress-reporting call
// sites: package eval's per-evaluation-step callback (package kernel.Progress) and
// package classify's per-phase milestones. The teacher carries no runtime logging of its
// own (it only emits go/analysis diagnostics), so this package is grounded on the rest of
// the example pack's use of zap for exactly this kind of structured, leveled progress
// narration.
package logging

import "go.uber.org/zap"

// Logger wraps a *zap.Logger, defaulting to a no-op logger so callers that never
// configure one pay nothing.
type Logger struct {
	z *zap.Logger
}

// New wraps z. A nil z is replaced with zap.NewNop().
func New(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{z: z}
}

// Nop is the default Logger, used wherever a caller does not configure one.
var Nop = New(nil)

// Progress returns a kernel.Progress callback that logs event at debug level, tagged
// with the given phase.
func (l *Logger) Progress(phase string) func(event string) {
	return func(event string) {
		l.z.Debug("evaluation step", zap.String("phase", phase), zap.String("event", event))
	}
}

// Milestone logs a classification-run milestone at info level.
func (l *Logger) Milestone(stage string, fields ...zap.Field) {
	l.z.Info(stage, fields...)
}

// Warn logs a recoverable anomaly (e.g. an assertion set with no surviving colour) at
// warn level.
func (l *Logger) Warn(message string, fields ...zap.Field) {
	l.z.Warn(message, fields...)
}
