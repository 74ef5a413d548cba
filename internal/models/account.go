package models

import "github.com/shopspring/decimal"

// Account is the persistence representation of a ledger account within a
// tenant partition schema.
type Account struct {
	AccountID   string
	TenantID    string
	Name        string
	AccountType string
	NormalSide  string
	Description string
	IsActive    bool
	IsFrozen    bool
	Balance     decimal.Decimal
	AuditFields
}
