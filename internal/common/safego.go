package common

import (
	"go.uber.org/zap"
)

// SafeGo runs fn in a goroutine and logs a panic instead of crashing the process.
func SafeGo(log *zap.Logger, name string, fn func()) {
	go func() {
		defer RecoverAndLog(log, name)
		fn()
	}()
}

func RecoverAndLog(log *zap.Logger, name string) {
	if r := recover(); r != nil {
		log.Error("goroutine panicked",
			zap.String("goroutine", name),
			zap.Any("panic", r),
			zap.Stack("stack"),
		)
	}
}
