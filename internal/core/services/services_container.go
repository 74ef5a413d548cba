package services

import (
	"log/slog"

	portsrepo "github.com/finledger/finledger_core/internal/core/ports/repositories"
	portssvc "github.com/finledger/finledger_core/internal/core/ports/services"
)

// NewServiceContainer wires the domain services over the repository provider.
func NewServiceContainer(baseLogger *slog.Logger, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Tenant = NewTenantService(repos.TenantRepo)
	container.Authorization = NewAuthorizationService(repos.RBACRepo, container.Tenant, repos.AccountRepo)
	container.Account = NewAccountService(repos.AccountRepo, repos.JournalRepo)
	container.Journal = NewJournalService(repos.JournalRepo, container.Account)
	container.Audit = NewAuditService(repos.AuditRepo)
	container.Reconciliation = NewReconciliationService(repos.AccountRepo, repos.JournalRepo)

	container.Ledger = NewLedgerService(
		baseLogger,
		container.Tenant,
		container.Authorization,
		container.Account,
		container.Journal,
		container.Audit,
		container.Reconciliation,
	)

	return container
}
