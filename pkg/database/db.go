// Package database is the statement boundary of the engine. A Database owns
// the table store, the function registry and the memory manager; each
// Connection gets its own ExecContext and turns physical plans into
// RecordIterators that report the outcome of the statement.
package database

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"rowexec/pkg/config"
	dberr "rowexec/pkg/error"
	"rowexec/pkg/function"
	"rowexec/pkg/iterator"
	"rowexec/pkg/logging"
	"rowexec/pkg/memory"
	"rowexec/pkg/registry"
	"rowexec/pkg/storage"
	"rowexec/pkg/types"
)

const component = "database"

// Database coordinates the shared components used by every connection.
type Database struct {
	store     *storage.Store
	functions *function.Registry
	memory    *memory.Manager
	log       *logging.Logger

	mu    sync.Mutex
	conns map[string]*Connection

	stats DatabaseStats
}

// DatabaseStats tracks statement outcomes across all connections.
type DatabaseStats struct {
	QueriesExecuted atomic.Int64
	ErrorCount      atomic.Int64
	RowsReturned    atomic.Int64
}

// DatabaseInfo is a snapshot of the database state.
type DatabaseInfo struct {
	Tables          []string
	TableCount      int
	Connections     int
	MemoryUsed      uint64
	QueriesExecuted int64
	ErrorCount      int64
	RowsReturned    int64
}

// Open builds a database from cfg. A nil cfg uses config.Default.
//
// Table storage is charged to its own connection on the memory manager, so
// fixtures count against the process ceiling but not against any client
// connection.
func Open(cfg *config.Config) *Database {
	if cfg == nil {
		cfg = config.Default()
	}
	mgr := memory.NewManager(cfg.Memory.Limit, cfg.Memory.Reserve)
	db := &Database{
		functions: function.NewRegistry(),
		memory:    mgr,
		log:       logging.WithComponent(component),
		conns:     make(map[string]*Connection),
	}
	db.store = storage.NewStore(mgr.NewAccount(memory.NewConnectionID(), "tables"))
	db.store.SetTypeDefaults(types.TypeDefaults{
		VarcharLength:    cfg.Engine.DefaultVarcharLength,
		DecimalPrecision: cfg.Engine.DecimalPrecision,
		DecimalScale:     cfg.Engine.DecimalScale,
	})
	return db
}

// Store exposes the table store for loading data and building scans.
func (db *Database) Store() *storage.Store { return db.store }

func (db *Database) Functions() *function.Registry { return db.functions }

func (db *Database) Memory() *memory.Manager { return db.memory }

// Connect opens a new connection with a fresh connection id.
func (db *Database) Connect() *Connection {
	ctx := registry.NewExecContext(db.functions, db.memory, memory.NewConnectionID())
	conn := &Connection{
		db:  db,
		ctx: ctx,
		log: ctx.Logger().Named(component),
	}
	db.mu.Lock()
	db.conns[ctx.ConnectionID()] = conn
	db.mu.Unlock()
	conn.log.Debug("connection opened")
	return conn
}

func (db *Database) forget(conn *Connection) {
	db.mu.Lock()
	delete(db.conns, conn.ID())
	db.mu.Unlock()
}

// QueryAll runs every builder on its own connection concurrently and
// returns the materialised results in builder order. The first failure
// cancels the remaining statements.
func (db *Database) QueryAll(ctx context.Context, builders ...PlanBuilder) ([]QueryResult, error) {
	results := make([]QueryResult, len(builders))
	g, gctx := errgroup.WithContext(ctx)
	for i, build := range builders {
		i, build := i, build
		g.Go(func() error {
			conn := db.Connect()
			defer conn.Close()
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := Materialize(conn.Run(build))
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Info returns current counters and table names.
func (db *Database) Info() DatabaseInfo {
	db.mu.Lock()
	conns := len(db.conns)
	db.mu.Unlock()
	tables := db.store.TableNames()
	return DatabaseInfo{
		Tables:          tables,
		TableCount:      len(tables),
		Connections:     conns,
		MemoryUsed:      db.memory.Used(),
		QueriesExecuted: db.stats.QueriesExecuted.Load(),
		ErrorCount:      db.stats.ErrorCount.Load(),
		RowsReturned:    db.stats.RowsReturned.Load(),
	}
}

// Close closes every open connection.
func (db *Database) Close() {
	db.mu.Lock()
	conns := make([]*Connection, 0, len(db.conns))
	for _, c := range db.conns {
		conns = append(conns, c)
	}
	db.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
}

// PlanBuilder assembles a physical plan against a connection's context.
type PlanBuilder func(ctx *registry.ExecContext, store *storage.Store) (iterator.PhysicalPlan, error)

// Connection is one client session. It is not safe for concurrent use; open
// one connection per goroutine.
type Connection struct {
	db     *Database
	ctx    *registry.ExecContext
	log    *logging.Logger
	closed atomic.Bool
}

func (c *Connection) ID() string { return c.ctx.ConnectionID() }

// Context is the ExecContext operators of this connection are built with.
func (c *Connection) Context() *registry.ExecContext { return c.ctx }

// MemoryUsed reports bytes currently charged to this connection.
func (c *Connection) MemoryUsed() uint64 { return c.ctx.Memory().Used() }

// Query wraps a plan built with this connection's context in a
// RecordIterator. Nothing runs until the first Next call.
func (c *Connection) Query(plan iterator.PhysicalPlan) *RecordIterator {
	if plan == nil {
		return c.failed(dberr.New(dberr.KindFatal, "plan cannot be nil").
			WithOperation("Connection.Query", component))
	}
	c.db.stats.QueriesExecuted.Add(1)
	return newRecordIterator(c, plan)
}

// Run builds a plan with build and queries it. Build failures are reported
// through the returned iterator like execution failures.
func (c *Connection) Run(build PlanBuilder) *RecordIterator {
	plan, err := build(c.ctx, c.db.store)
	if err != nil {
		c.db.stats.QueriesExecuted.Add(1)
		return c.failed(dberr.Wrap(err, dberr.KindPlanner.String(), "Connection.Run", component))
	}
	return c.Query(plan)
}

func (c *Connection) failed(err error) *RecordIterator {
	it := newRecordIterator(c, nil)
	it.fail(err)
	return it
}

// Close releases every byte still charged to the connection. Closing twice
// is a no-op.
func (c *Connection) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.ctx.Close()
	c.db.forget(c)
	c.log.Debug("connection closed")
}
