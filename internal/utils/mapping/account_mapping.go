package mapping

import (
	"github.com/finledger/finledger_core/internal/core/domain"
	"github.com/finledger/finledger_core/internal/models"
)

// ToModelAccount converts a domain Account to its persistence representation.
func ToModelAccount(a domain.Account) models.Account {
	return models.Account{
		AccountID:   a.AccountID,
		TenantID:    a.TenantID,
		Name:        a.Name,
		AccountType: string(a.AccountType),
		NormalSide:  string(a.NormalSide),
		Description: a.Description,
		IsActive:    a.IsActive,
		IsFrozen:    a.IsFrozen,
		Balance:     a.Balance,
		AuditFields: toModelAuditFields(a.AuditFields),
	}
}

// ToDomainAccount converts a persistence Account to its domain representation.
func ToDomainAccount(a models.Account) domain.Account {
	return domain.Account{
		AccountID:   a.AccountID,
		TenantID:    a.TenantID,
		Name:        a.Name,
		AccountType: domain.AccountType(a.AccountType),
		NormalSide:  domain.NormalSide(a.NormalSide),
		Description: a.Description,
		IsActive:    a.IsActive,
		IsFrozen:    a.IsFrozen,
		Balance:     a.Balance,
		AuditFields: toDomainAuditFields(a.AuditFields),
	}
}
