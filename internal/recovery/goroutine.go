// Package recovery keeps a panicking background goroutine from taking the
// whole process down with it.
package recovery

import (
	"runtime/debug"

	"github.com/novahuman/compass/internal/logger"
)

// SafeGo runs fn in a goroutine and turns a panic into a logged error.
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Logger.Error().
					Str("goroutine", name).
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("recovered goroutine panic")
			}
		}()
		fn()
	}()
}
