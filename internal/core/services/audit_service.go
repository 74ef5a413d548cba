package services

import (
	"context"

	"github.com/finledger/finledger_core/internal/core/domain"
	portsrepo "github.com/finledger/finledger_core/internal/core/ports/repositories"
	portssvc "github.com/finledger/finledger_core/internal/core/ports/services"
	"github.com/finledger/finledger_core/internal/dto"
)

// auditService exposes read access to a tenant's append-only audit trail.
type auditService struct {
	auditRepo portsrepo.AuditReader
}

// NewAuditService creates a new AuditService.
func NewAuditService(auditRepo portsrepo.AuditReader) portssvc.AuditSvcFacade {
	return &auditService{auditRepo: auditRepo}
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

// QueryAudit returns audit records matching the filter in sequence order.
func (s *auditService) QueryAudit(ctx context.Context, p domain.PartitionHandle, params dto.AuditQueryParams) (*dto.ListAuditResponse, error) {
	filter := portsrepo.AuditQueryFilter{
		FromSeq: params.FromSeq,
		ToSeq:   params.ToSeq,
		From:    params.From,
		To:      params.To,
		ActorID: params.ActorID,
		Action:  params.Action,
	}

	records, nextToken, err := s.auditRepo.QueryAuditRecords(ctx, p, filter, params.Limit, params.NextToken)
	if err != nil {
		return nil, err
	}

	return &dto.ListAuditResponse{
		Records:   dto.ToAuditRecordResponses(records),
		NextToken: nextToken,
	}, nil
}
