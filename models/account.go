package models

// OpenAccountCost is the amount moved from wallet to bank when an account is opened
const OpenAccountCost int64 = 400

// Account is a user's row in the economy table
type Account struct {
	UserID int64 `db:"user_id"`
	Wallet int64 `db:"wallet"`
	Bank   int64 `db:"bank"`
}

// Total returns wallet plus bank
func (a *Account) Total() int64 {
	return a.Wallet + a.Bank
}

// HasBankAccount reports whether the account has been opened.
// A positive bank balance is the only marker for an opened account.
func (a *Account) HasBankAccount() bool {
	return a.Bank > 0
}

// BalanceView is an account with its leaderboard position
type BalanceView struct {
	UserID       int64
	Wallet       int64
	Bank         int64
	Total        int64
	Rank         int64 // 1 + number of accounts with a strictly larger total
	TotalPlayers int64
	Ordinal      string // Rank with its English suffix, e.g. "2nd"
}

// LeaderboardEntry is one row of the top balances list
type LeaderboardEntry struct {
	Position int64
	UserID   int64
	Wallet   int64
	Bank     int64
	Total    int64
}
