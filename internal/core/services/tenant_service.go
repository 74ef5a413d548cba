package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finledger/finledger_core/internal/apperrors"
	"github.com/finledger/finledger_core/internal/core/domain"
	portsrepo "github.com/finledger/finledger_core/internal/core/ports/repositories"
	portssvc "github.com/finledger/finledger_core/internal/core/ports/services"
	"github.com/finledger/finledger_core/internal/dto"
	"github.com/finledger/finledger_core/internal/platform/logging"
)

var (
	ErrTenantSuspended = errors.New("tenant is suspended, mutations are blocked")
	ErrTenantDisabled  = errors.New("tenant is disabled")
)

var partitionKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// tenantService owns the tenant lifecycle and is the single minting point for
// partition handles.
type tenantService struct {
	tenantRepo portsrepo.TenantRepositoryFacade
}

// NewTenantService creates a new TenantService.
func NewTenantService(tenantRepo portsrepo.TenantRepositoryFacade) portssvc.TenantSvcFacade {
	return &tenantService{tenantRepo: tenantRepo}
}

var _ portssvc.TenantSvcFacade = (*tenantService)(nil)

// derivePartitionKey turns a display name into a valid schema name: lowercase,
// non-alphanumerics collapsed to underscores, truncated to the identifier limit.
func derivePartitionKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	key := strings.Trim(b.String(), "_")
	if key == "" || key[0] >= '0' && key[0] <= '9' {
		key = "t_" + key
	}
	if len(key) > 63 {
		key = key[:63]
	}
	return strings.TrimRight(key, "_")
}

// CreateTenant provisions a tenant row and its partition schema atomically.
func (s *tenantService) CreateTenant(ctx context.Context, req dto.CreateTenantRequest, creatorID string) (*domain.Tenant, error) {
	logger := logging.FromContext(ctx)

	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	partitionKey := req.PartitionKey
	if partitionKey == "" {
		partitionKey = derivePartitionKey(req.Name)
	}
	if !partitionKeyPattern.MatchString(partitionKey) {
		return nil, fmt.Errorf("%w: invalid partition key %q", apperrors.ErrValidation, partitionKey)
	}

	now := time.Now()
	tenant := domain.Tenant{
		TenantID:     uuid.NewString(),
		Name:         req.Name,
		PartitionKey: partitionKey,
		Status:       domain.TenantActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	if err := s.tenantRepo.SaveTenant(ctx, tenant); err != nil {
		logger.Error("failed to create tenant", slog.String("tenant_name", req.Name), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("tenant created", slog.String("tenant_id", tenant.TenantID), slog.String("partition_key", tenant.PartitionKey))
	return &tenant, nil
}

// GetTenantByID retrieves a tenant.
func (s *tenantService) GetTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	return s.tenantRepo.FindTenantByID(ctx, tenantID)
}

// ResolvePartition maps a tenant ID to its partition handle. The handle is the
// only route to the tenant's data; suspension downgrades it to read-only, and
// a disabled tenant does not resolve at all. Handles already held by in-flight
// requests are unaffected by a later status change.
func (s *tenantService) ResolvePartition(ctx context.Context, tenantID string) (domain.PartitionHandle, error) {
	tenant, err := s.tenantRepo.FindTenantByID(ctx, tenantID)
	if err != nil {
		return domain.PartitionHandle{}, err
	}

	switch tenant.Status {
	case domain.TenantActive:
		return domain.NewPartitionHandle(tenant.TenantID, tenant.PartitionKey, false), nil
	case domain.TenantSuspended:
		return domain.NewPartitionHandle(tenant.TenantID, tenant.PartitionKey, true), nil
	case domain.TenantDisabled:
		return domain.PartitionHandle{}, fmt.Errorf("%w: tenant %s", apperrors.ErrNotFound, tenantID)
	}
	return domain.PartitionHandle{}, fmt.Errorf("%w: tenant %s has unknown status %q", apperrors.ErrInternal, tenantID, tenant.Status)
}

// SuspendTenant blocks new mutating operations for the tenant.
func (s *tenantService) SuspendTenant(ctx context.Context, tenantID string, actorID string) error {
	return s.setStatus(ctx, tenantID, domain.TenantSuspended, actorID)
}

// ReactivateTenant lifts a suspension.
func (s *tenantService) ReactivateTenant(ctx context.Context, tenantID string, actorID string) error {
	return s.setStatus(ctx, tenantID, domain.TenantActive, actorID)
}

func (s *tenantService) setStatus(ctx context.Context, tenantID string, status domain.TenantStatus, actorID string) error {
	logger := logging.FromContext(ctx)

	tenant, err := s.tenantRepo.FindTenantByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if tenant.Status == domain.TenantDisabled {
		return fmt.Errorf("%w: tenant %s is disabled", apperrors.ErrConflict, tenantID)
	}
	if tenant.Status == status {
		return nil
	}

	action := domain.AuditTenantSuspended
	if status == domain.TenantActive {
		action = domain.AuditTenantReactivated
	}
	audit := domain.AuditRecord{
		TenantID:   tenantID,
		ActorID:    actorID,
		Action:     action,
		EntityType: "tenant",
		EntityID:   tenantID,
		Before:     statusJSON(tenant.Status),
		After:      statusJSON(status),
	}

	p := domain.NewPartitionHandle(tenant.TenantID, tenant.PartitionKey, false)
	if err := s.tenantRepo.UpdateTenantStatus(ctx, p, status, audit, actorID, time.Now()); err != nil {
		return err
	}

	logger.Info("tenant status changed",
		slog.String("tenant_id", tenantID),
		slog.String("from", string(tenant.Status)),
		slog.String("to", string(status)))
	return nil
}

func statusJSON(status domain.TenantStatus) []byte {
	return []byte(fmt.Sprintf(`{"status":%q}`, string(status)))
}
