// Package membership answers "how many membership tokens does this address hold".
package membership

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"okinoko_vote/sdk"
)

// ErrNoOwner is returned by OwnerOf for tokens that were never minted.
var ErrNoOwner = errors.New("membership: token has no owner")

// Static is an in-memory token registry. Balances are derived from token ownership plus
// any explicit balance overrides, so it can model both a real NFT set and plain counts.
type Static struct {
	mu       sync.RWMutex
	owners   map[uint64]sdk.Address
	balances map[sdk.Address]uint64
}

func NewStatic() *Static {
	return &Static{owners: map[uint64]sdk.Address{}, balances: map[sdk.Address]uint64{}}
}

// SetBalance overrides the balance reported for addr.
func (s *Static) SetBalance(addr sdk.Address, n uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[addr] = n
}

// Mint assigns tokenID to owner and bumps the owner's balance.
func (s *Static) Mint(tokenID uint64, owner sdk.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.owners[tokenID]; ok {
		return fmt.Errorf("membership: token %d already owned by %s", tokenID, prev)
	}
	s.owners[tokenID] = owner
	s.balances[owner]++
	return nil
}

// Transfer moves tokenID to a new owner.
func (s *Static) Transfer(tokenID uint64, to sdk.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, ok := s.owners[tokenID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoOwner, tokenID)
	}
	s.owners[tokenID] = to
	if s.balances[from] > 0 {
		s.balances[from]--
	}
	s.balances[to]++
	return nil
}

func (s *Static) BalanceOf(_ context.Context, addr sdk.Address) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[addr], nil
}

func (s *Static) OwnerOf(_ context.Context, tokenID uint64) (sdk.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.owners[tokenID]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrNoOwner, tokenID)
	}
	return owner, nil
}
