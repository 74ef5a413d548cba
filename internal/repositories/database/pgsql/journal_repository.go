package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
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

const journalColumns = `journal_id, tenant_id, journal_date, memo, status, original_journal_id, reversing_journal_id, idempotency_key, created_at, created_by, last_updated_at, last_updated_by`

const postingColumns = `posting_id, journal_id, account_id, amount, side, created_at, created_by, last_updated_at, last_updated_by`

// PgxJournalRepository persists journal entries and postings within tenant
// partitions. Mutations run as single transactions that lock every touched
// account row, apply balance deltas, and append one audit record.
type PgxJournalRepository struct {
	BaseRepository
	accountRepo *PgxAccountRepository
}

func newPgxJournalRepository(pool *pgxpool.Pool, lockTimeout time.Duration, pageSize int, accountRepo *PgxAccountRepository) *PgxJournalRepository {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool, LockTimeout: lockTimeout, PageSize: pageSize},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func scanJournal(row pgx.Row) (*models.Journal, error) {
	var m models.Journal
	err := row.Scan(
		&m.JournalID,
		&m.TenantID,
		&m.JournalDate,
		&m.Memo,
		&m.Status,
		&m.OriginalJournalID,
		&m.ReversingJournalID,
		&m.IdempotencyKey,
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

func scanPosting(row pgx.Row) (*models.Posting, error) {
	var m models.Posting
	err := row.Scan(
		&m.PostingID,
		&m.JournalID,
		&m.AccountID,
		&m.Amount,
		&m.Side,
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

// SaveJournal persists a journal entry with its postings, applies the balance
// deltas, and appends the audit record, all in one transaction. The touched
// accounts are locked FOR UPDATE first so concurrent entries against the same
// accounts serialize; a lock wait beyond the configured timeout fails the
// whole entry with ErrConflictRetryable. A reused idempotency key fails with
// ErrDuplicate before any balance is touched.
func (r *PgxJournalRepository) SaveJournal(ctx context.Context, p domain.PartitionHandle, journal domain.JournalEntry, postings []domain.Posting, balanceChanges map[string]decimal.Decimal, audit domain.AuditRecord) error {
	tx, err := r.BeginWithLockTimeout(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.saveJournalInTx(ctx, tx, p, journal, postings, balanceChanges, audit); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// SaveReversal persists a compensating journal entry and, in the same
// transaction, marks the original entry REVERSED and links the pair.
func (r *PgxJournalRepository) SaveReversal(ctx context.Context, p domain.PartitionHandle, reversal domain.JournalEntry, postings []domain.Posting, balanceChanges map[string]decimal.Decimal, originalJournalID string, audit domain.AuditRecord) error {
	tx, err := r.BeginWithLockTimeout(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Lock the original header first so two concurrent reversals of the same
	// entry serialize; the second sees status REVERSED.
	lockQuery := fmt.Sprintf(`
		SELECT status FROM %s
		WHERE journal_id = $1 AND tenant_id = $2
		FOR UPDATE;
	`, partitionTable(p, "journals"))
	var status string
	if err := tx.QueryRow(ctx, lockQuery, originalJournalID, p.TenantID()).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: journal %s", apperrors.ErrNotFound, originalJournalID)
		}
		return apperrors.NewAppError(500, "failed to lock original journal "+originalJournalID, mapPgError(err))
	}
	if status == string(domain.Reversed) {
		return fmt.Errorf("%w: journal %s already reversed", apperrors.ErrConflict, originalJournalID)
	}

	if err := r.saveJournalInTx(ctx, tx, p, reversal, postings, balanceChanges, audit); err != nil {
		return err
	}

	updateQuery := fmt.Sprintf(`
		UPDATE %s
		SET status = $3, reversing_journal_id = $4, last_updated_at = $5, last_updated_by = $6
		WHERE journal_id = $1 AND tenant_id = $2;
	`, partitionTable(p, "journals"))
	ct, err := tx.Exec(ctx, updateQuery,
		originalJournalID,
		p.TenantID(),
		string(domain.Reversed),
		reversal.JournalID,
		reversal.LastUpdatedAt,
		reversal.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark journal reversed "+originalJournalID, mapPgError(err))
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: journal %s", apperrors.ErrNotFound, originalJournalID)
	}

	return r.Commit(ctx, tx)
}

func (r *PgxJournalRepository) saveJournalInTx(ctx context.Context, tx pgx.Tx, p domain.PartitionHandle, journal domain.JournalEntry, postings []domain.Posting, balanceChanges map[string]decimal.Decimal, audit domain.AuditRecord) error {
	m := mapping.ToModelJournal(journal)
	insertJournal := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`, partitionTable(p, "journals"), journalColumns)
	_, err := tx.Exec(ctx, insertJournal,
		m.JournalID,
		p.TenantID(),
		m.JournalDate,
		m.Memo,
		m.Status,
		m.OriginalJournalID,
		m.ReversingJournalID,
		m.IdempotencyKey,
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
		return apperrors.NewAppError(500, "failed to insert journal "+m.JournalID, mapped)
	}

	// Sorted lock order keeps concurrent entries deadlock-free.
	accountIDs := sortedKeys(balanceChanges)
	if _, err := r.accountRepo.findAccountsForUpdate(ctx, tx, p, accountIDs); err != nil {
		return err
	}

	insertPosting := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`, partitionTable(p, "postings"), postingColumns)
	batch := &pgx.Batch{}
	for _, posting := range postings {
		pm := mapping.ToModelPosting(posting)
		batch.Queue(insertPosting,
			pm.PostingID,
			m.JournalID,
			pm.AccountID,
			pm.Amount,
			pm.Side,
			pm.CreatedAt,
			pm.CreatedBy,
			pm.LastUpdatedAt,
			pm.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = apperrors.NewAppError(500, "failed to insert posting for journal "+m.JournalID, mapPgError(err))
		}
	}
	if closeErr := br.Close(); closeErr != nil && batchErr == nil {
		batchErr = apperrors.NewAppError(500, "failed to close posting insert batch", mapPgError(closeErr))
	}
	if batchErr != nil {
		return batchErr
	}

	if err := r.accountRepo.updateBalancesInTx(ctx, tx, p, balanceChanges, m.CreatedBy, m.CreatedAt); err != nil {
		return err
	}

	if _, err := appendAuditInTx(ctx, tx, p, audit, m.CreatedAt); err != nil {
		return err
	}
	return nil
}

// FindJournalByID retrieves a journal entry header by its identifier.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, p domain.PartitionHandle, journalID string) (*domain.JournalEntry, error) {
	return r.findJournal(ctx, p, `journal_id = $1`, journalID)
}

// FindJournalByIdempotencyKey retrieves the entry previously posted with the
// given idempotency key, if any.
func (r *PgxJournalRepository) FindJournalByIdempotencyKey(ctx context.Context, p domain.PartitionHandle, key string) (*domain.JournalEntry, error) {
	return r.findJournal(ctx, p, `idempotency_key = $1`, key)
}

func (r *PgxJournalRepository) findJournal(ctx context.Context, p domain.PartitionHandle, where, arg string) (*domain.JournalEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s AND tenant_id = $2;
	`, journalColumns, partitionTable(p, "journals"), where)

	m, err := scanJournal(r.Pool.QueryRow(ctx, query, arg, p.TenantID()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find journal", mapPgError(err))
	}

	domainJournal := mapping.ToDomainJournal(*m)
	return &domainJournal, nil
}

// FindPostingsByJournalID retrieves all postings of one journal entry.
func (r *PgxJournalRepository) FindPostingsByJournalID(ctx context.Context, p domain.PartitionHandle, journalID string) ([]domain.Posting, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE journal_id = $1
		ORDER BY posting_id;
	`, postingColumns, partitionTable(p, "postings"))
	return r.queryPostings(ctx, query, journalID)
}

// FindPostingsByAccountID retrieves the full posting history of an account up
// to asOf, ordered by creation time. This is the replay source for balances;
// it is unpaginated on purpose.
func (r *PgxJournalRepository) FindPostingsByAccountID(ctx context.Context, p domain.PartitionHandle, accountID string, asOf *time.Time) ([]domain.Posting, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE account_id = $1
		  AND ($2::timestamptz IS NULL OR created_at <= $2)
		ORDER BY created_at, posting_id;
	`, postingColumns, partitionTable(p, "postings"))
	return r.queryPostings(ctx, query, accountID, asOf)
}

func (r *PgxJournalRepository) queryPostings(ctx context.Context, query string, args ...any) ([]domain.Posting, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query postings", mapPgError(err))
	}
	defer rows.Close()

	postings := []domain.Posting{}
	for rows.Next() {
		m, err := scanPosting(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan posting row", err)
		}
		postings = append(postings, mapping.ToDomainPosting(*m))
	}
	if rows.Err() != nil {
		return nil, apperrors.NewAppError(500, "failed reading posting rows", rows.Err())
	}
	return postings, nil
}

// ListJournals retrieves a token-paginated journal listing in creation order.
func (r *PgxJournalRepository) ListJournals(ctx context.Context, p domain.PartitionHandle, limit int, nextToken *string, includeReversals bool) ([]domain.JournalEntry, *string, error) {
	limit = r.defaultLimit(limit)

	after, afterID, err := decodeTimeIDCursor(nextToken)
	if err != nil {
		return nil, nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE tenant_id = $1
		  AND ($2::timestamptz IS NULL OR (created_at, journal_id) > ($2, $3))
		  AND ($4 OR original_journal_id IS NULL)
		ORDER BY created_at, journal_id
		LIMIT $5;
	`, journalColumns, partitionTable(p, "journals"))

	rows, err := r.Pool.Query(ctx, query, p.TenantID(), after, afterID, includeReversals, limit+1)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list journals", mapPgError(err))
	}
	defer rows.Close()

	journals := []models.Journal{}
	for rows.Next() {
		m, err := scanJournal(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan journal row", err)
		}
		journals = append(journals, *m)
	}
	if rows.Err() != nil {
		return nil, nil, apperrors.NewAppError(500, "failed reading journal rows", rows.Err())
	}

	var token *string
	if len(journals) > limit {
		journals = journals[:limit]
		last := journals[len(journals)-1]
		t := pagination.EncodeTimeIDToken(last.CreatedAt, last.JournalID)
		token = &t
	}

	out := make([]domain.JournalEntry, len(journals))
	for i, m := range journals {
		out[i] = mapping.ToDomainJournal(m)
	}
	return out, token, nil
}

// ListPostingsByAccountID retrieves a token-paginated posting listing for one
// account.
func (r *PgxJournalRepository) ListPostingsByAccountID(ctx context.Context, p domain.PartitionHandle, accountID string, limit int, nextToken *string) ([]domain.Posting, *string, error) {
	limit = r.defaultLimit(limit)

	after, afterID, err := decodeTimeIDCursor(nextToken)
	if err != nil {
		return nil, nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE account_id = $1
		  AND ($2::timestamptz IS NULL OR (created_at, posting_id) > ($2, $3))
		ORDER BY created_at, posting_id
		LIMIT $4;
	`, postingColumns, partitionTable(p, "postings"))

	rows, err := r.Pool.Query(ctx, query, accountID, after, afterID, limit+1)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list postings", mapPgError(err))
	}
	defer rows.Close()

	postings := []models.Posting{}
	for rows.Next() {
		m, err := scanPosting(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan posting row", err)
		}
		postings = append(postings, *m)
	}
	if rows.Err() != nil {
		return nil, nil, apperrors.NewAppError(500, "failed reading posting rows", rows.Err())
	}

	var token *string
	if len(postings) > limit {
		postings = postings[:limit]
		last := postings[len(postings)-1]
		t := pagination.EncodeTimeIDToken(last.CreatedAt, last.PostingID)
		token = &t
	}

	out := make([]domain.Posting, len(postings))
	for i, m := range postings {
		out[i] = mapping.ToDomainPosting(m)
	}
	return out, token, nil
}

func decodeTimeIDCursor(nextToken *string) (*time.Time, string, error) {
	if nextToken == nil || *nextToken == "" {
		return nil, "", nil
	}
	at, id, err := pagination.DecodeTimeIDToken(*nextToken)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return &at, id, nil
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
