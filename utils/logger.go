package utils

import (
	"sync"

	"go.uber.org/zap"
)

var (
	loggerInstance *zap.SugaredLogger
	loggerOnce     sync.Once
)

// Logger returns the process-wide sugared logger, building it on first use.
func Logger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		l, err := zap.NewProduction()
		if err != nil {
			l = zap.NewNop()
		}
		loggerInstance = l.Sugar()
	})
	return loggerInstance
}
