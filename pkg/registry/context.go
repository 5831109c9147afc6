package registry

import (
	"rowexec/pkg/function"
	"rowexec/pkg/logging"
	"rowexec/pkg/memory"
)

// ExecContext holds the shared components every operator of one statement
// needs. It provides a single source of truth and avoids threading several
// dependencies through each constructor.
type ExecContext struct {
	functions *function.Registry
	pool      *memory.Pool
	connID    string
	logger    *logging.Logger
}

// NewExecContext creates a context for one connection. A nil registry gets
// the builtin set; a nil manager uses the process-wide default.
func NewExecContext(functions *function.Registry, mgr *memory.Manager, connID string) *ExecContext {
	if functions == nil {
		functions = function.NewRegistry()
	}
	if mgr == nil {
		mgr = memory.Default()
	}
	if connID == "" {
		connID = memory.NewConnectionID()
	}
	return &ExecContext{
		functions: functions,
		pool:      memory.NewPool(mgr, connID),
		connID:    connID,
		logger:    logging.WithConnection(connID),
	}
}

// Background returns a context with fresh builtins, the default memory
// manager and a new connection id. Tests and one-off plans use it.
func Background() *ExecContext {
	return NewExecContext(nil, nil, "")
}

func (ctx *ExecContext) Functions() *function.Registry {
	return ctx.functions
}

func (ctx *ExecContext) ConnectionID() string {
	return ctx.connID
}

func (ctx *ExecContext) Memory() *memory.Pool {
	return ctx.pool
}

// Account returns the memory account named after an operator instance.
func (ctx *ExecContext) Account(name string) *memory.Account {
	return ctx.pool.Account(name)
}

func (ctx *ExecContext) Logger() *logging.Logger {
	return ctx.logger
}

// OperatorLogger tags the connection logger with an operator name.
func (ctx *ExecContext) OperatorLogger(op string) *logging.Logger {
	return ctx.logger.With("operator", op)
}

// Close returns every byte charged through this context.
func (ctx *ExecContext) Close() {
	ctx.pool.Close()
}
