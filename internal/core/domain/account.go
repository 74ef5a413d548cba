package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// NormalSide defines which side an account's balance is conventionally
// represented on.
type NormalSide string

const (
	DebitNormal  NormalSide = "DEBIT"
	CreditNormal NormalSide = "CREDIT"
)

// NormalSideFor returns the conventional normal balance side for an account type.
func NormalSideFor(t AccountType) (NormalSide, bool) {
	switch t {
	case Asset, Expense:
		return DebitNormal, true
	case Liability, Equity, Income:
		return CreditNormal, true
	}
	return "", false
}

// Account represents a ledger account within one tenant's partition.
// Balance is derived state: the system of record is the posting history, and
// the cached figure must always equal a full replay of it.
type Account struct {
	AccountID   string          `json:"accountID"` // Primary Key (UUID)
	TenantID    string          `json:"tenantID"`
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	NormalSide  NormalSide      `json:"normalSide"`
	Description string          `json:"description"`
	IsActive    bool            `json:"isActive"` // Soft-disable flag; accounts are never deleted
	IsFrozen    bool            `json:"isFrozen"` // Set when reconciliation detects corruption
	Balance     decimal.Decimal `json:"balance"`  // Derived running balance along NormalSide
	AuditFields
}
