package memory

import "sync"

// Account is one operator's share of a connection's budget. Operators grow
// it as they buffer rows and clear it on ResetNext. An Account is used by a
// single plan and is not meant for concurrent use; the Manager behind it is.
type Account struct {
	mgr    *Manager
	connID string
	name   string
	used   uint64
}

// NewAccount opens an account named name charging connID.
func (m *Manager) NewAccount(connID, name string) *Account {
	return &Account{mgr: m, connID: connID, name: name}
}

// Grow charges n more bytes.
func (a *Account) Grow(n int) error {
	if n <= 0 {
		return nil
	}
	if err := a.mgr.Apply(a.connID, uint64(n)); err != nil {
		return err
	}
	a.used += uint64(n)
	return nil
}

// Shrink returns n bytes, never more than the account holds.
func (a *Account) Shrink(n int) {
	if n <= 0 {
		return
	}
	n64 := min(uint64(n), a.used)
	a.mgr.Release(a.connID, n64)
	a.used -= n64
}

// Clear returns everything the account holds.
func (a *Account) Clear() {
	if a.used == 0 {
		return
	}
	a.mgr.Release(a.connID, a.used)
	a.used = 0
}

func (a *Account) Used() uint64         { return a.used }
func (a *Account) Name() string         { return a.name }
func (a *Account) ConnectionID() string { return a.connID }

// Pool hands out accounts for one connection and clears them together at
// the statement boundary.
type Pool struct {
	mu       sync.Mutex
	mgr      *Manager
	connID   string
	accounts []*Account
}

// NewPool creates a pool charging connID on m.
func NewPool(m *Manager, connID string) *Pool {
	return &Pool{mgr: m, connID: connID}
}

// Account opens a new account in the pool.
func (p *Pool) Account(name string) *Account {
	p.mu.Lock()
	defer p.mu.Unlock()
	acc := p.mgr.NewAccount(p.connID, name)
	p.accounts = append(p.accounts, acc)
	return acc
}

// Used sums the pool's accounts.
func (p *Pool) Used() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	var total uint64
	for _, a := range p.accounts {
		total += a.Used()
	}
	return total
}

// Close clears and forgets every account.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, a := range p.accounts {
		a.Clear()
	}
	p.accounts = nil
}

func (p *Pool) ConnectionID() string { return p.connID }
func (p *Pool) Manager() *Manager    { return p.mgr }
