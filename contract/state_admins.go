package contract

import "okinoko_vote/sdk"

// setAdminEntry stores the admin flag and indexes the address. Returns false if it was already set.
func setAdminEntry(st *txState, addr sdk.Address) (bool, error) {
	ok, err := isAdminEntry(st, addr)
	if err != nil || ok {
		return false, err
	}
	st.Set(adminKey(addr), "1")
	if err := addToIndex(st, adminIndexBase(), addr.String()); err != nil {
		return false, err
	}
	return true, nil
}

// isAdminEntry reports whether an address holds the admin flag.
func isAdminEntry(st *txState, addr sdk.Address) (bool, error) {
	existing, err := st.Get(adminKey(addr))
	if err != nil {
		return false, err
	}
	return existing != nil && *existing != "", nil
}

func listAdminEntries(st *txState) ([]sdk.Address, error) {
	raw, err := listIndex(st, adminIndexBase())
	if err != nil {
		return nil, err
	}
	out := make([]sdk.Address, 0, len(raw))
	for _, s := range raw {
		out = append(out, sdk.Address(s))
	}
	return out, nil
}
