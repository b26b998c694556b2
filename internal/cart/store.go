package cart

import (
	"sync"

	"storefront/internal/domain"
)

// Reducer derives the next state from the current one
type Reducer func(State) State

// Store holds the current snapshot of one session's cart
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: Initial()}
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Dispatch applies r atomically and returns the resulting state
func (s *Store) Dispatch(r Reducer) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = r(s.state)
	return s.state.clone()
}

func (s *Store) AddItem(p domain.Product) State {
	return s.Dispatch(func(st State) State { return AddItem(st, p) })
}

func (s *Store) RemoveItem(id int64) State {
	return s.Dispatch(func(st State) State { return RemoveItem(st, id) })
}

func (s *Store) UpdateQuantity(id int64, quantity int) State {
	return s.Dispatch(func(st State) State { return UpdateQuantity(st, id, quantity) })
}

func (s *Store) SetNote(id int64, note string) State {
	return s.Dispatch(func(st State) State { return SetNote(st, id, note) })
}

func (s *Store) SetAddress(p domain.AddressPatch) State {
	return s.Dispatch(func(st State) State { return SetAddress(st, p) })
}

func (s *Store) SetPaymentDetails(p domain.PaymentPatch) State {
	return s.Dispatch(func(st State) State { return SetPaymentDetails(st, p) })
}

func (s *Store) SetPaymentMethod(m domain.PaymentMethod) State {
	return s.Dispatch(func(st State) State { return SetPaymentMethod(st, m) })
}

func (s *Store) SetStep(step Step) State {
	return s.Dispatch(func(st State) State { return SetStep(st, step) })
}

func (s *Store) Reset() State {
	return s.Dispatch(Reset)
}
