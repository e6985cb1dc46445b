package domain

import "time"

// LedgerEntryType captures the direction of a balance movement.
type LedgerEntryType string

const (
	LedgerCredit LedgerEntryType = "credit"
	LedgerDebit  LedgerEntryType = "debit"
)

// LedgerEntry records one balance movement caused by a settlement.
type LedgerEntry struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	JobID       string          `json:"jobId"`
	Amount      int64           `json:"amount"`
	Type        LedgerEntryType `json:"type"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Signed returns the amount with debits negative.
func (e LedgerEntry) Signed() int64 {
	if e.Type == LedgerDebit {
		return -e.Amount
	}
	return e.Amount
}
