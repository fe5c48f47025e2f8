package util

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

var logger = zap.NewNop().Sugar()

// SetLogger replaces the logger used by package level helpers.
func SetLogger(l *zap.SugaredLogger) {
	if l != nil {
		logger = l
	}
}

// Sleep pauses the calling goroutine for at least ms milliseconds. Other
// goroutines keep running.
func Sleep(ms int64) {
	if ms <= 0 {
		return
	}
	logger.Debugw("sleep", "ms", ms)
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// NewSugaredLogger creates a development logger when verbose is set and a
// production logger otherwise.
func NewSugaredLogger(verbose bool) (*zap.SugaredLogger, error) {
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("failed to create development logger: %w", err)
		}
		return l.Sugar(), nil
	}

	l, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to create production logger: %w", err)
	}
	return l.Sugar(), nil
}
