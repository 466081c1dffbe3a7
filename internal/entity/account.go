package entity

// Account is the per-user paper-trading state. It lives in memory for the
// process lifetime and is mutated only by the accounting service, under the
// account store's per-account lock.
type Account struct {
	ChatID       int64       `json:"chat_id"`
	Balance      float64     `json:"balance"`
	Positions    []*Position `json:"positions"`
	TradeHistory []Trade     `json:"trade_history"`
	Stats        Stats       `json:"stats"`
	Settings     Settings    `json:"settings"`
}

// NewAccount creates an account with the starting balance and default
// settings.
func NewAccount(chatID int64, initialBalance float64) *Account {
	return &Account{
		ChatID:  chatID,
		Balance: initialBalance,
		Settings: Settings{
			DefaultTP:     10,
			DefaultSL:     5,
			Notifications: true,
		},
	}
}

// FindPosition returns the open position with the given ID, or nil.
func (a *Account) FindPosition(id int64) *Position {
	for _, p := range a.Positions {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// RemovePosition removes the open position with the given ID, preserving
// order. It returns false if the position is not open.
func (a *Account) RemovePosition(id int64) bool {
	for i, p := range a.Positions {
		if p.ID == id {
			a.Positions = append(a.Positions[:i], a.Positions[i+1:]...)
			return true
		}
	}
	return false
}
