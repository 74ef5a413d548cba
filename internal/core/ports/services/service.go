package services

// ServiceContainer holds all service facades for dependency injection.
type ServiceContainer struct {
	Tenant         TenantSvcFacade
	Authorization  AuthorizationSvcFacade
	Account        AccountSvcFacade
	Journal        JournalSvcFacade
	Audit          AuditSvcFacade
	Reconciliation ReconciliationSvcFacade
	Ledger         LedgerSvcFacade
}
