package repository

import (
	"context"
	"sync"

	"github.com/Domenick1991/flightledger/internal/command"
	"github.com/Domenick1991/flightledger/internal/ledger"
)

// MemoryStore keeps the last stored dataset in process memory. It backs the
// "memory" storage driver and tests.
type MemoryStore struct {
	mu   sync.Mutex
	data Dataset
	fail error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (*ledger.Registry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	d := s.data
	s.mu.Unlock()
	return d.Registry()
}

func (s *MemoryStore) Store(ctx context.Context, reg *ledger.Registry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.data = NewDataset(reg)
	return nil
}

// FailWith makes every following Store call return err. A nil err clears it.
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

var (
	_ command.Store = (*MemoryStore)(nil)
	_ command.Store = (*BoltStore)(nil)
	_ command.Store = (*PGStore)(nil)
)
