// Package memory tracks the bytes materializing operators hold, per
// connection and process-wide, and refuses requests past the configured
// ceiling.
package memory

import (
	"math"
	"sync"

	"github.com/google/uuid"

	dberr "rowexec/pkg/error"
	"rowexec/pkg/logging"
)

// Unlimited is the default per-connection ceiling.
const Unlimited uint64 = math.MaxInt64

// DefaultReserve is the headroom the process-wide ceiling keeps above one
// connection's limit, so a single connection cannot starve the others.
const DefaultReserve uint64 = 100 << 20

// Manager is the process-wide budget. A connection may hold at most limit
// bytes and all connections together at most limit+reserve. One mutex
// guards both counters.
type Manager struct {
	mu      sync.Mutex
	limit   uint64
	reserve uint64
	used    uint64
	perConn map[string]uint64
}

// NewManager creates a budget with the given per-connection limit. A zero
// limit means Unlimited.
func NewManager(limit, reserve uint64) *Manager {
	if limit == 0 {
		limit = Unlimited
	}
	return &Manager{
		limit:   limit,
		reserve: reserve,
		perConn: make(map[string]uint64),
	}
}

var (
	defaultManager *Manager
	defaultOnce    sync.Once
)

// Default returns the shared process-wide manager, unlimited unless
// SetDefault replaced it first.
func Default() *Manager {
	defaultOnce.Do(func() {
		if defaultManager == nil {
			defaultManager = NewManager(Unlimited, DefaultReserve)
		}
	})
	return defaultManager
}

// SetDefault installs m as the process-wide manager. It only has an effect
// before the first call to Default.
func SetDefault(m *Manager) {
	defaultOnce.Do(func() { defaultManager = m })
}

// NewConnectionID returns a fresh connection identifier.
func NewConnectionID() string {
	return uuid.NewString()
}

// Apply charges n bytes to connID. It fails with a MEMORY_LIMIT error,
// matching ErrMemoryLimitExceeded, when either the connection or the
// process would exceed its ceiling; nothing is charged in that case.
func (m *Manager) Apply(connID string, n uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	global := m.limit + m.reserve
	if m.limit > math.MaxUint64-m.reserve {
		global = math.MaxUint64
	}
	if m.used+n > global || m.used+n < m.used {
		logging.Warn("process memory limit reached", "connection", connID, "requested", n, "used", m.used)
		return dberr.MemoryLimit(n, global)
	}
	conn := m.perConn[connID]
	if conn+n > m.limit {
		logging.Warn("connection memory limit reached", "connection", connID, "requested", n, "used", conn)
		return dberr.MemoryLimit(n, m.limit)
	}
	m.perConn[connID] = conn + n
	m.used += n
	return nil
}

// Release returns n bytes previously charged to connID.
func (m *Manager) Release(connID string, n uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn := m.perConn[connID]
	n = min(n, conn)
	m.perConn[connID] = conn - n
	m.used -= n
}

// CloseConnection drops whatever connID still holds.
func (m *Manager) CloseConnection(connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.used -= m.perConn[connID]
	delete(m.perConn, connID)
}

// Used returns the process-wide total.
func (m *Manager) Used() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used
}

// ConnectionUsed returns what connID currently holds.
func (m *Manager) ConnectionUsed(connID string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.perConn[connID]
}

// Limit returns the per-connection ceiling.
func (m *Manager) Limit() uint64 { return m.limit }
