package inventory

import (
	"sync"

	"github.com/agentic-research/gale/api"
	"github.com/cespare/xxhash/v2"
)

// Memo caches parsed inventories for the lifetime of the process, keyed
// by the request identity plus the index location it was parsed from.
// The filesystem write-through covers persistence; this only
// avoids re-parsing within one run.
type Memo struct {
	mu     sync.RWMutex
	tables map[uint64][]api.Row
}

func NewMemo() *Memo {
	return &Memo{tables: make(map[uint64][]api.Row)}
}

func memoKey(req *api.Request, idxLocation string) uint64 {
	return xxhash.Sum64String(req.Identity() + "|" + idxLocation)
}

// Get returns the memoized table for the key, if any.
func (m *Memo) Get(req *api.Request, idxLocation string) ([]api.Row, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.tables[memoKey(req, idxLocation)]
	return rows, ok
}

// Put memoizes a parsed table.
func (m *Memo) Put(req *api.Request, idxLocation string, rows []api.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[memoKey(req, idxLocation)] = rows
}
