package operation

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/drivecore/utils"
)

// SingleOperationManager lets one operation at a time own a mechanism. Starting an operation
// preempts whichever one is running, except that an operation started from inside the running
// one joins it instead.
type SingleOperationManager struct {
	// Clock times waits; nil means the wall clock.
	Clock clock.Clock

	mu      sync.Mutex
	running *exclusiveOp
}

type exclusiveOp struct {
	cancel context.CancelFunc
}

// NewSingleOperationManager returns a manager timing its waits on clk.
func NewSingleOperationManager(clk clock.Clock) *SingleOperationManager {
	return &SingleOperationManager{Clock: clk}
}

func (sm *SingleOperationManager) clock() clock.Clock {
	if sm.Clock == nil {
		return clock.New()
	}
	return sm.Clock
}

// owner is the operation of this manager that ctx was created by, if any. Contexts are keyed by
// the manager itself so that two managers never mistake each other's operations for nesting.
func (sm *SingleOperationManager) owner(ctx context.Context) *exclusiveOp {
	op, _ := ctx.Value(sm).(*exclusiveOp)
	return op
}

// New starts an operation and returns its context along with the function that ends it.
func (sm *SingleOperationManager) New(ctx context.Context) (context.Context, func()) {
	if sm.owner(ctx) != nil {
		return ctx, func() {}
	}

	op := &exclusiveOp{}
	ctx, op.cancel = context.WithCancel(ctx)
	ctx = context.WithValue(ctx, sm, op)

	sm.mu.Lock()
	sm.preemptLocked(nil)
	sm.running = op
	sm.mu.Unlock()

	return ctx, func() {
		op.cancel()
		sm.mu.Lock()
		if sm.running == op {
			sm.running = nil
		}
		sm.mu.Unlock()
	}
}

// CancelRunning cancels the running operation unless ctx belongs to it.
func (sm *SingleOperationManager) CancelRunning(ctx context.Context) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.preemptLocked(sm.owner(ctx))
}

// OpRunning reports whether an operation currently owns the mechanism.
func (sm *SingleOperationManager) OpRunning() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.running != nil
}

func (sm *SingleOperationManager) preemptLocked(keep *exclusiveOp) {
	if sm.running == nil || sm.running == keep {
		return
	}
	sm.running.cancel()
	sm.running = nil
}

// NewTimedWaitOp waits for dur as its own operation. It returns false if the wait was cancelled
// or preempted.
func (sm *SingleOperationManager) NewTimedWaitOp(ctx context.Context, dur time.Duration) bool {
	ctx, done := sm.New(ctx)
	defer done()
	return utils.SelectContextOrWaitClock(ctx, sm.clock(), dur)
}

// WaitForSuccess polls check every pollTime, as its own operation, until it reports true or
// fails.
func (sm *SingleOperationManager) WaitForSuccess(
	ctx context.Context,
	pollTime time.Duration,
	check func(ctx context.Context) (bool, error),
) error {
	ctx, done := sm.New(ctx)
	defer done()

	for {
		ok, err := check(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !utils.SelectContextOrWaitClock(ctx, sm.clock(), pollTime) {
			return ctx.Err()
		}
	}
}
