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
)

// PgxAuditRepository reads a tenant's append-only audit trail. Appends happen
// exclusively through appendAuditInTx inside the mutating transactions of the
// other repositories; this type intentionally exposes no write methods.
type PgxAuditRepository struct {
	BaseRepository
}

func newPgxAuditRepository(pool *pgxpool.Pool, lockTimeout time.Duration, pageSize int) *PgxAuditRepository {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool, LockTimeout: lockTimeout, PageSize: pageSize}}
}

var _ portsrepo.AuditReader = (*PgxAuditRepository)(nil)

// appendAuditInTx claims the tenant's next audit sequence number and inserts
// the record within the caller's transaction. Readers can therefore never
// observe a sequence number whose mutation is not yet committed, and the
// sequence stays gap-free and strictly increasing per tenant.
func appendAuditInTx(ctx context.Context, tx pgx.Tx, p domain.PartitionHandle, record domain.AuditRecord, at time.Time) (int64, error) {
	var seq int64
	claimQuery := fmt.Sprintf(`UPDATE %s SET seq = seq + 1 RETURNING seq`, partitionTable(p, "audit_head"))
	if err := tx.QueryRow(ctx, claimQuery).Scan(&seq); err != nil {
		return 0, apperrors.NewAppError(500, "failed to claim audit sequence", mapPgError(err))
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (seq, tenant_id, actor_id, action, entity_type, entity_id, before_state, after_state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, partitionTable(p, "audit_records"))
	_, err := tx.Exec(ctx, insertQuery,
		seq,
		p.TenantID(),
		record.ActorID,
		string(record.Action),
		record.EntityType,
		record.EntityID,
		record.Before,
		record.After,
		at,
	)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to append audit record", mapPgError(err))
	}
	return seq, nil
}

// QueryAuditRecords returns matching records ordered by strictly increasing
// sequence number, token-paginated so long scans are restartable.
func (r *PgxAuditRepository) QueryAuditRecords(ctx context.Context, p domain.PartitionHandle, filter portsrepo.AuditQueryFilter, limit int, nextToken *string) ([]domain.AuditRecord, *string, error) {
	limit = r.defaultLimit(limit)

	afterSeq := int64(0)
	if nextToken != nil && *nextToken != "" {
		decoded, err := pagination.DecodeSeqToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		afterSeq = decoded
	}
	if filter.FromSeq > afterSeq+1 {
		afterSeq = filter.FromSeq - 1
	}

	query := fmt.Sprintf(`
		SELECT seq, tenant_id, actor_id, action, entity_type, entity_id, before_state, after_state, created_at
		FROM %s
		WHERE tenant_id = $1
		  AND seq > $2
		  AND ($3::bigint = 0 OR seq <= $3)
		  AND ($4::timestamptz IS NULL OR created_at >= $4)
		  AND ($5::timestamptz IS NULL OR created_at <= $5)
		  AND ($6::text = '' OR actor_id = $6)
		  AND ($7::text = '' OR action = $7)
		ORDER BY seq
		LIMIT $8
	`, partitionTable(p, "audit_records"))

	var from, to *time.Time
	if !filter.From.IsZero() {
		from = &filter.From
	}
	if !filter.To.IsZero() {
		to = &filter.To
	}

	rows, err := r.Pool.Query(ctx, query,
		p.TenantID(), afterSeq, filter.ToSeq, from, to, filter.ActorID, string(filter.Action), limit+1)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query audit records", mapPgError(err))
	}
	defer rows.Close()

	records := []models.AuditRecord{}
	for rows.Next() {
		var rec models.AuditRecord
		if err := rows.Scan(
			&rec.Sequence,
			&rec.TenantID,
			&rec.ActorID,
			&rec.Action,
			&rec.EntityType,
			&rec.EntityID,
			&rec.Before,
			&rec.After,
			&rec.CreatedAt,
		); err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan audit record row", err)
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, nil, apperrors.NewAppError(500, "failed reading audit record rows", rows.Err())
	}

	var token *string
	if len(records) > limit {
		records = records[:limit]
		t := pagination.EncodeSeqToken(records[len(records)-1].Sequence)
		token = &t
	}

	out := make([]domain.AuditRecord, len(records))
	for i, rec := range records {
		out[i] = mapping.ToDomainAuditRecord(rec)
	}
	return out, token, nil
}

// LatestSequence returns the highest appended sequence number, zero for an
// empty trail.
func (r *PgxAuditRepository) LatestSequence(ctx context.Context, p domain.PartitionHandle) (int64, error) {
	query := fmt.Sprintf(`SELECT seq FROM %s WHERE id = 1`, partitionTable(p, "audit_head"))
	var seq int64
	if err := r.Pool.QueryRow(ctx, query).Scan(&seq); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrNotFound
		}
		return 0, apperrors.NewAppError(500, "failed to read audit sequence head", mapPgError(err))
	}
	return seq, nil
}
