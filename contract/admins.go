package contract

import (
	"context"

	"okinoko_vote/contract/dao"
	"okinoko_vote/sdk"
)

// addAdminEntries stores admin flags for the provided addresses and returns the newly added set.
func addAdminEntries(st *txState, addresses []sdk.Address) ([]sdk.Address, error) {
	added := make([]sdk.Address, 0, len(addresses))
	seen := map[sdk.Address]struct{}{}
	for _, addr := range addresses {
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		ok, err := setAdminEntry(st, addr)
		if err != nil {
			return nil, err
		}
		if ok {
			added = append(added, addr)
		}
	}
	return added, nil
}

// AddAdmin lets an existing admin grant admin rights. Adding an existing admin succeeds
// without an event.
// Example payload: AddAdmin(ctx, env, "hive:carol")
func (e *Engine) AddAdmin(ctx context.Context, env sdk.Env, addr sdk.Address) error {
	return e.run(ctx, env, "admin_add", func(c *call) error {
		if err := c.requireAdmin(); err != nil {
			return err
		}
		if addr == "" {
			return reject(ErrInvalidInput, "admin address required")
		}
		added, err := setAdminEntry(c.st, addr)
		if err != nil {
			return err
		}
		if added {
			c.emit(dao.EventAdminAdded{Admin: addr, By: c.sender()})
		}
		return nil
	})
}

// IsAdmin is a pure lookup.
func (e *Engine) IsAdmin(ctx context.Context, addr sdk.Address) (bool, error) {
	var out bool
	err := e.run(ctx, sdk.Env{}, "admin_check", func(c *call) error {
		ok, err := isAdminEntry(c.st, addr)
		out = ok
		return err
	})
	return out, err
}

// Admins lists the admin set in the order admins were added.
func (e *Engine) Admins(ctx context.Context) ([]sdk.Address, error) {
	var out []sdk.Address
	err := e.run(ctx, sdk.Env{}, "admin_list", func(c *call) error {
		list, err := listAdminEntries(c.st)
		out = list
		return err
	})
	return out, err
}
