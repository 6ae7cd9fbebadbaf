package allocation

import "github.com/theirongolddev/paysplit/internal/model"

// Apply credits an event to the accounts and returns the updated set.
// Fixed, Flexible and Charity receive their main amounts; the four savings
// accounts receive their sub amounts. A zero-net event changes nothing.
func Apply(ev Event, accounts model.Accounts) model.Accounts {
	if ev.Net.IsZero() {
		return accounts
	}

	for _, c := range model.Categories {
		k, ok := c.Account()
		if !ok {
			continue
		}
		accounts[k].Balance = accounts[k].Balance.Add(ev.Main[c])
	}
	for _, s := range model.SavingsCategories {
		k := s.Account()
		accounts[k].Balance = accounts[k].Balance.Add(ev.Savings[s])
	}
	return accounts
}
