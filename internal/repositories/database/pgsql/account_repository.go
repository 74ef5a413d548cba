package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finledger/finledger_core/internal/apperrors"
	"github.com/finledger/finledger_core/internal/core/domain"
	portsrepo "github.com/finledger/finledger_core/internal/core/ports/repositories"
	"github.com/finledger/finledger_core/internal/models"
	"github.com/finledger/finledger_core/internal/utils/mapping"
	"github.com/finledger/finledger_core/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, tenant_id, name, account_type, normal_side, description, is_active, is_frozen, balance, created_at, created_by, last_updated_at, last_updated_by`

// PgxAccountRepository manages ledger accounts within tenant partitions.
type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool, lockTimeout time.Duration, pageSize int) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool, LockTimeout: lockTimeout, PageSize: pageSize}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (*models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.TenantID,
		&m.Name,
		&m.AccountType,
		&m.NormalSide,
		&m.Description,
		&m.IsActive,
		&m.IsFrozen,
		&m.Balance,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SaveAccount persists a new account and its audit record atomically.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, p domain.PartitionHandle, account domain.Account, audit domain.AuditRecord) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelAccount(account)
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`, partitionTable(p, "accounts"), accountColumns)
	_, err = tx.Exec(ctx, query,
		m.AccountID,
		p.TenantID(),
		m.Name,
		m.AccountType,
		m.NormalSide,
		m.Description,
		m.IsActive,
		m.IsFrozen,
		m.Balance,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		mapped := mapPgError(err)
		if errors.Is(mapped, apperrors.ErrDuplicate) {
			return mapped
		}
		return apperrors.NewAppError(500, "failed to insert account "+m.AccountID, mapped)
	}

	if _, err := appendAuditInTx(ctx, tx, p, audit, m.CreatedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// FindAccountByID retrieves a single account from the tenant's partition.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, p domain.PartitionHandle, accountID string) (*domain.Account, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE account_id = $1 AND tenant_id = $2;
	`, accountColumns, partitionTable(p, "accounts"))

	m, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID, p.TenantID()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find account "+accountID, mapPgError(err))
	}

	domainAccount := mapping.ToDomainAccount(*m)
	return &domainAccount, nil
}

// FindAccountsByIDs retrieves multiple accounts keyed by ID.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, p domain.PartitionHandle, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE account_id = ANY($1) AND tenant_id = $2;
	`, accountColumns, partitionTable(p, "accounts"))

	rows, err := r.Pool.Query(ctx, query, accountIDs, p.TenantID())
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts by IDs", mapPgError(err))
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row", err)
		}
		accountsMap[m.AccountID] = mapping.ToDomainAccount(*m)
	}
	if rows.Err() != nil {
		return nil, apperrors.NewAppError(500, "failed reading account rows", rows.Err())
	}
	return accountsMap, nil
}

// ListAccounts retrieves a token-paginated account listing ordered by
// creation time.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, p domain.PartitionHandle, limit int, nextToken *string) ([]domain.Account, *string, error) {
	limit = r.defaultLimit(limit)

	afterTime := time.Time{}
	afterID := ""
	if nextToken != nil && *nextToken != "" {
		var err error
		afterTime, afterID, err = pagination.DecodeTimeIDToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE tenant_id = $1
		  AND ($2::timestamptz IS NULL OR (created_at, account_id) > ($2, $3))
		ORDER BY created_at, account_id
		LIMIT $4;
	`, accountColumns, partitionTable(p, "accounts"))

	var after *time.Time
	if !afterTime.IsZero() {
		after = &afterTime
	}

	rows, err := r.Pool.Query(ctx, query, p.TenantID(), after, afterID, limit+1)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list accounts", mapPgError(err))
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan account row", err)
		}
		accounts = append(accounts, *m)
	}
	if rows.Err() != nil {
		return nil, nil, apperrors.NewAppError(500, "failed reading account rows", rows.Err())
	}

	var token *string
	if len(accounts) > limit {
		accounts = accounts[:limit]
		last := accounts[len(accounts)-1]
		t := pagination.EncodeTimeIDToken(last.CreatedAt, last.AccountID)
		token = &t
	}

	out := make([]domain.Account, len(accounts))
	for i, m := range accounts {
		out[i] = mapping.ToDomainAccount(m)
	}
	return out, token, nil
}

// SetAccountActive flips the soft-disable flag and appends the audit record
// in the same transaction.
func (r *PgxAccountRepository) SetAccountActive(ctx context.Context, p domain.PartitionHandle, accountID string, active bool, audit domain.AuditRecord, updatedBy string, updatedAt time.Time) error {
	return r.setAccountFlag(ctx, p, accountID, "is_active", active, audit, updatedBy, updatedAt)
}

// SetAccountFrozen marks an account frozen (or unfrozen after manual repair)
// and appends the audit record in the same transaction.
func (r *PgxAccountRepository) SetAccountFrozen(ctx context.Context, p domain.PartitionHandle, accountID string, frozen bool, audit domain.AuditRecord, updatedBy string, updatedAt time.Time) error {
	return r.setAccountFlag(ctx, p, accountID, "is_frozen", frozen, audit, updatedBy, updatedAt)
}

func (r *PgxAccountRepository) setAccountFlag(ctx context.Context, p domain.PartitionHandle, accountID, column string, value bool, audit domain.AuditRecord, updatedBy string, updatedAt time.Time) error {
	tx, err := r.BeginWithLockTimeout(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3, last_updated_at = $4, last_updated_by = $5
		WHERE account_id = $1 AND tenant_id = $2;
	`, partitionTable(p, "accounts"), column)
	ct, err := tx.Exec(ctx, query, accountID, p.TenantID(), value, updatedAt, updatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update account flag "+column, mapPgError(err))
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if _, err := appendAuditInTx(ctx, tx, p, audit, updatedAt); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// findAccountsForUpdate retrieves and row-locks accounts inside the caller's
// transaction. Missing IDs fail with ErrNotFound; a lock wait beyond the
// transaction's lock_timeout surfaces as ErrConflictRetryable.
func (r *PgxAccountRepository) findAccountsForUpdate(ctx context.Context, tx pgx.Tx, p domain.PartitionHandle, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE account_id = ANY($1) AND tenant_id = $2
		FOR UPDATE;
	`, accountColumns, partitionTable(p, "accounts"))

	rows, err := tx.Query(ctx, query, accountIDs, p.TenantID())
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to lock accounts for update", mapPgError(err))
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan locked account row", err)
		}
		accountsMap[m.AccountID] = mapping.ToDomainAccount(*m)
	}
	if rows.Err() != nil {
		return nil, apperrors.NewAppError(500, "failed reading locked account rows", mapPgError(rows.Err()))
	}

	for _, id := range accountIDs {
		if _, ok := accountsMap[id]; !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}
	return accountsMap, nil
}

// updateBalancesInTx applies balance deltas to already-locked accounts inside
// the caller's transaction.
func (r *PgxAccountRepository) updateBalancesInTx(ctx context.Context, tx pgx.Tx, p domain.PartitionHandle, balanceChanges map[string]decimal.Decimal, updatedBy string, updatedAt time.Time) error {
	if len(balanceChanges) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET balance = balance + $3, last_updated_at = $4, last_updated_by = $5
		WHERE account_id = $1 AND tenant_id = $2;
	`, partitionTable(p, "accounts"))

	batch := &pgx.Batch{}
	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID, delta := range balanceChanges {
		if delta.IsZero() {
			continue
		}
		batch.Queue(query, accountID, p.TenantID(), delta, updatedAt, updatedBy)
		accountIDs = append(accountIDs, accountID)
	}
	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = apperrors.NewAppError(500, "failed to update balance for account "+accountIDs[i], mapPgError(err))
			}
		} else if ct.RowsAffected() == 0 && batchErr == nil {
			batchErr = fmt.Errorf("%w: account %s during balance update", apperrors.ErrNotFound, accountIDs[i])
		}
	}
	if closeErr := br.Close(); closeErr != nil && batchErr == nil {
		batchErr = apperrors.NewAppError(500, "failed to close balance update batch", mapPgError(closeErr))
	}
	return batchErr
}
