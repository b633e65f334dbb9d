package utils

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/drivecore/logging"
)

// SelectContextOrWaitClock waits for d on clk, returning false early if ctx is done first.
func SelectContextOrWaitClock(ctx context.Context, clk clock.Clock, d time.Duration) bool {
	timer := clk.Timer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// SlowLogger starts a goroutine that logs every few seconds as long as the context has not timed out or was not cancelled.
func SlowLogger(ctx context.Context, clk clock.Clock, msg, fieldName, fieldVal string, logger logging.Logger) func() {
	slowTicker := clk.Ticker(2 * time.Second)
	firstTick := true

	ctxWithCancel, cancel := context.WithCancel(ctx)
	startTime := clk.Now()
	go func() {
		for {
			select {
			case <-slowTicker.C:
				elapsed := clk.Since(startTime).Round(time.Second).String()
				logger.CWarnw(ctx, msg, fieldName, fieldVal, "time_elapsed", elapsed)
				if firstTick {
					slowTicker.Reset(3 * time.Second)
					firstTick = false
				} else {
					slowTicker.Reset(5 * time.Second)
				}
			case <-ctxWithCancel.Done():
				return
			}
		}
	}()
	return func() { slowTicker.Stop(); cancel() }
}
