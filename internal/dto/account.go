package dto

import (
	"time"

	"github.com/finledger/finledger_core/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest carries the payload for opening a ledger account.
type CreateAccountRequest struct {
	Name        string             `json:"name" validate:"required,max=255"`
	AccountType domain.AccountType `json:"accountType" validate:"required,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	NormalSide  domain.NormalSide  `json:"normalSide" validate:"required,oneof=DEBIT CREDIT"`
	Description string             `json:"description" validate:"max=1000"`
}

// AccountResponse is the outward representation of an account.
type AccountResponse struct {
	AccountID   string             `json:"accountID"`
	TenantID    string             `json:"tenantID"`
	Name        string             `json:"name"`
	AccountType domain.AccountType `json:"accountType"`
	NormalSide  domain.NormalSide  `json:"normalSide"`
	Description string             `json:"description"`
	IsActive    bool               `json:"isActive"`
	IsFrozen    bool               `json:"isFrozen"`
	Balance     decimal.Decimal    `json:"balance"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// ToAccountResponse maps a domain account to its response form.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:   a.AccountID,
		TenantID:    a.TenantID,
		Name:        a.Name,
		AccountType: a.AccountType,
		NormalSide:  a.NormalSide,
		Description: a.Description,
		IsActive:    a.IsActive,
		IsFrozen:    a.IsFrozen,
		Balance:     a.Balance,
		CreatedAt:   a.CreatedAt,
	}
}

// BalanceResponse reports an account balance, optionally as of a point in time.
type BalanceResponse struct {
	AccountID string          `json:"accountID"`
	Balance   decimal.Decimal `json:"balance"`
	AsOf      *time.Time      `json:"asOf,omitempty"`
}
