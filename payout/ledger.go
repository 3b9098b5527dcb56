// Package payout delivers treasury transfers once a proposal executes.
package payout

import (
	"context"
	"errors"
	"sync"

	"okinoko_vote/sdk"
)

// ErrRejected is returned by Ledger for recipients marked with Reject.
var ErrRejected = errors.New("payout: recipient rejected")

// Transfer is one delivered payout.
type Transfer struct {
	To     sdk.Address
	Amount uint64
	Ref    string
}

// Ledger records transfers instead of moving real value. Useful for tests, dry runs and
// deployments where an off-chain process settles the recorded transfers.
type Ledger struct {
	mu        sync.Mutex
	transfers []Transfer
	rejected  map[sdk.Address]struct{}
	seen      map[string]struct{}
}

func NewLedger() *Ledger {
	return &Ledger{rejected: map[sdk.Address]struct{}{}, seen: map[string]struct{}{}}
}

// Reject makes every future transfer to addr fail.
func (l *Ledger) Reject(addr sdk.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rejected[addr] = struct{}{}
}

// Accept undoes Reject.
func (l *Ledger) Accept(addr sdk.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.rejected, addr)
}

// Pay records the transfer. A repeated ref is ignored so a retried delivery never doubles.
func (l *Ledger) Pay(_ context.Context, to sdk.Address, amount uint64, ref string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.rejected[to]; ok {
		return ErrRejected
	}
	if _, ok := l.seen[ref]; ok {
		return nil
	}
	l.seen[ref] = struct{}{}
	l.transfers = append(l.transfers, Transfer{To: to, Amount: amount, Ref: ref})
	return nil
}

// Transfers returns a copy of everything paid so far.
func (l *Ledger) Transfers() []Transfer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Transfer(nil), l.transfers...)
}

// Total sums the amounts paid to addr.
func (l *Ledger) Total(addr sdk.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n uint64
	for _, t := range l.transfers {
		if t.To == addr {
			n += t.Amount
		}
	}
	return n
}
