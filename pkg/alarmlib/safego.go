package alarmlib

import (
	"runtime/debug"

	"github.com/wakesync/wakesync/pkg/logger"
)

// safeCall runs fn with panic recovery. Recovered panics are logged
// with stack traces under the given context tag. Used to isolate
// per-record recovery work and the periodic loop from each other.
func safeCall(l logger.Logger, context string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if l != nil {
				l.Error("PANIC [%s]: %v\n%s", context, r, debug.Stack())
			}
		}
	}()
	fn()
}
