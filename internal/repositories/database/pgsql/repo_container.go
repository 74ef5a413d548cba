package pgsql

import (
	"time"

	portsrepo "github.com/finledger/finledger_core/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool, lockTimeout time.Duration, listingPageSize, auditPageSize int) portsrepo.RepositoryProvider {
	tenantRepo := newPgxTenantRepository(dbPool, lockTimeout)
	accountRepo := newPgxAccountRepository(dbPool, lockTimeout, listingPageSize)
	journalRepo := newPgxJournalRepository(dbPool, lockTimeout, listingPageSize, accountRepo)
	rbacRepo := newPgxRBACRepository(dbPool, lockTimeout)
	auditRepo := newPgxAuditRepository(dbPool, lockTimeout, auditPageSize)

	return portsrepo.RepositoryProvider{
		TenantRepo:  tenantRepo,
		AccountRepo: accountRepo,
		JournalRepo: journalRepo,
		RBACRepo:    rbacRepo,
		AuditRepo:   auditRepo,
	}
}
