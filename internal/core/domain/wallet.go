package domain

import "time"

// Wallet maps one owning identity (an external bank account) to a ledger wallet.
type Wallet struct {
	WalletID  string    `json:"walletId"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Account is the ledger-side record behind a wallet.
type Account struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	PublicKey string    `json:"publicKey,omitempty"` // base64
	Balance   int64     `json:"balance"`
	LastNonce uint64    `json:"lastNonce"`
	CreatedAt time.Time `json:"createdAt"`
}

// Wallet returns the client-facing view of the account.
func (a *Account) Wallet() Wallet {
	return Wallet{WalletID: a.ID, OwnerID: a.OwnerID, CreatedAt: a.CreatedAt}
}

// CanCover reports whether the balance covers amount.
func (a *Account) CanCover(amount int64) bool {
	return amount > 0 && a.Balance >= amount
}
