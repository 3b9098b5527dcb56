package contract

import (
	"context"

	"okinoko_vote/store"
)

// txState is the write overlay a single call runs against. Reads fall through to the
// backend unless the key was touched in this call; nothing reaches the backend until commit.
type txState struct {
	ctx    context.Context
	base   store.State
	writes map[string]*string
	order  []string
}

func newTxState(ctx context.Context, base store.State) *txState {
	return &txState{ctx: ctx, base: base, writes: map[string]*string{}}
}

func (t *txState) Get(key string) (*string, error) {
	if v, ok := t.writes[key]; ok {
		return v, nil
	}
	return t.base.Get(t.ctx, key)
}

func (t *txState) Set(key, value string) {
	t.touch(key)
	t.writes[key] = &value
}

func (t *txState) Delete(key string) {
	t.touch(key)
	t.writes[key] = nil
}

func (t *txState) touch(key string) {
	if _, ok := t.writes[key]; !ok {
		t.order = append(t.order, key)
	}
}

// setIfChanged avoids unnecessary writes so unchanged keys never hit the backend.
func (t *txState) setIfChanged(key, value string) error {
	existing, err := t.Get(key)
	if err != nil {
		return err
	}
	if existing != nil && *existing == value {
		return nil
	}
	t.Set(key, value)
	return nil
}

func (t *txState) dirty() bool {
	return len(t.order) > 0
}

// mutations lists the buffered writes in first-touch order.
func (t *txState) mutations() []store.Mutation {
	muts := make([]store.Mutation, 0, len(t.order))
	for _, k := range t.order {
		muts = append(muts, store.Mutation{Key: k, Value: t.writes[k]})
	}
	return muts
}

// commit pushes the overlay to the backend in one batch and resets it.
func (t *txState) commit() error {
	if !t.dirty() {
		return nil
	}
	if err := store.Apply(t.ctx, t.base, t.mutations()); err != nil {
		return err
	}
	t.writes = map[string]*string{}
	t.order = nil
	return nil
}
