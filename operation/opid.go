// Package operation tracks the motions a robot is running and makes sure only one of them drives
// a mechanism at a time.
package operation

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"go.viam.com/drivecore/logging"
)

type operationKey struct{}

// Operation is one running motion, such as a turn or a straight drive.
type Operation struct {
	ID     uuid.UUID
	Method string
	// Target is whatever the motion was asked to reach: degrees for a turn, distance for a drive.
	Target  interface{}
	Started time.Time
	// Parent is the operation this one was started inside of, or uuid.Nil.
	Parent uuid.UUID

	cancel context.CancelFunc
}

// Cancel stops the operation by cancelling its context.
func (o *Operation) Cancel() {
	o.cancel()
}

// Manager is the registry of running operations.
type Manager struct {
	clock  clock.Clock
	logger logging.Logger

	mu  sync.Mutex
	ops map[uuid.UUID]*Operation
}

// NewManager returns an empty registry stamping operations with the wall clock.
func NewManager(logger logging.Logger) *Manager {
	return NewManagerWithClock(clock.New(), logger)
}

// NewManagerWithClock returns an empty registry stamping operations with clk.
func NewManagerWithClock(clk clock.Clock, logger logging.Logger) *Manager {
	return &Manager{clock: clk, logger: logger, ops: map[uuid.UUID]*Operation{}}
}

// Create registers a new operation and attaches it to the returned context. The returned function
// must be called once the operation is over.
func (m *Manager) Create(ctx context.Context, method string, target interface{}) (context.Context, func()) {
	op := &Operation{
		ID:      uuid.New(),
		Method:  method,
		Target:  target,
		Started: m.clock.Now(),
	}
	if parent := Get(ctx); parent != nil {
		op.Parent = parent.ID
	}
	ctx, op.cancel = context.WithCancel(context.WithValue(ctx, operationKey{}, op))

	m.mu.Lock()
	m.ops[op.ID] = op
	m.mu.Unlock()
	m.logger.CDebugw(ctx, "operation started", "op", op.ID.String(), "method", method)

	return ctx, func() {
		m.mu.Lock()
		delete(m.ops, op.ID)
		m.mu.Unlock()
		op.cancel()
	}
}

// All returns the running operations.
func (m *Manager) All() []*Operation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.Values(m.ops)
}

// Find returns the running operation with the given id, or nil.
func (m *Manager) Find(id uuid.UUID) *Operation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ops[id]
}

// CancelAll cancels every running operation.
func (m *Manager) CancelAll() {
	for _, op := range m.All() {
		op.Cancel()
	}
}

// Get returns the operation ctx belongs to, or nil.
func Get(ctx context.Context) *Operation {
	op, _ := ctx.Value(operationKey{}).(*Operation)
	return op
}
